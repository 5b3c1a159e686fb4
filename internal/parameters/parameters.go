// Package parameters resolves solver parameters by version, applies
// layered overrides, and emits a solver-readable blob (C5).
//
// Layer precedence follows the teacher's engine/configx layering idiom
// (LayerGlobal < LayerEnvironment < LayerEphemeral), collapsed to the three
// layers this domain actually needs: a version-indexed default, an
// env-pointed override file, and a caller-supplied in-memory patch (e.g. a
// time-horizon-specific override).
package parameters

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Layer precedence, lowest to highest.
const (
	LayerGlobal = iota
	LayerEnvironment
	LayerEphemeral
)

var layerNames = map[int]string{
	LayerGlobal:      "global",
	LayerEnvironment: "environment",
	LayerEphemeral:   "ephemeral",
}

// LayerName returns the human-readable name for a layer constant.
func LayerName(layer int) string {
	if name, ok := layerNames[layer]; ok {
		return name
	}
	return "unknown"
}

// Config is the resolved, merged parameter blob, indexed by resolver
// version. It supports dotted-path access over its nested map.
type Config struct {
	mu      sync.RWMutex
	version string
	values  map[string]any
}

// Manager resolves a Config by deep-merging a version-indexed default with
// an optional env-pointed override file.
type Manager struct {
	// BasePath is a directory containing "<version>.yaml" default files.
	BasePath string
	// OverrideEnvVar names the environment variable pointing at an override
	// YAML file; empty disables override lookup.
	OverrideEnvVar string
}

// NewManager returns a Manager reading defaults from basePath and overrides
// from the file named by the OverrideEnvVar environment variable.
func NewManager(basePath, overrideEnvVar string) *Manager {
	return &Manager{BasePath: basePath, OverrideEnvVar: overrideEnvVar}
}

// Load resolves a Config for the given resolver version: the version-indexed
// default deep-merged with the override file, if one is configured and
// readable.
func (m *Manager) Load(version string) (*Config, error) {
	base, err := m.loadLayer(fmt.Sprintf("%s/%s.yaml", m.BasePath, version))
	if err != nil {
		return nil, fmt.Errorf("parameters: load base for version %s: %w", version, err)
	}

	merged := base
	if m.OverrideEnvVar != "" {
		if path := os.Getenv(m.OverrideEnvVar); path != "" {
			override, err := m.loadLayer(path)
			if err != nil {
				return nil, fmt.Errorf("parameters: load override %s: %w", path, err)
			}
			merged = deepMerge(merged, override)
		}
	}

	return &Config{version: version, values: merged}, nil
}

func (m *Manager) loadLayer(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// WithEphemeral returns a new Config with patch deep-merged on top as the
// highest-precedence layer (e.g. a time-horizon-specific override per
// original_source's handlers.py time_horizon == "ID" branch). The receiver
// is left untouched.
func (c *Config) WithEphemeral(patch map[string]any) *Config {
	c.mu.RLock()
	base := cloneMap(c.values)
	c.mu.RUnlock()
	return &Config{version: c.version, values: deepMerge(base, patch)}
}

// deepMerge merges override on top of base: maps recurse, scalars and
// lists replace at the highest populated layer (spec §4.4).
func deepMerge(base, override map[string]any) map[string]any {
	out := cloneMap(base)
	for k, v := range override {
		if overrideMap, ok := v.(map[string]any); ok {
			if baseMap, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(baseMap, overrideMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// Get returns the value at a dotted path ("solver.timeout_seconds"), or
// (nil, false) if any segment is absent.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cur := any(c.values)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Set writes a value at a dotted path, creating intermediate maps as
// needed.
func (c *Config) Set(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	segs := strings.Split(path, ".")
	m := c.values
	for _, seg := range segs[:len(segs)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[segs[len(segs)-1]] = value
}

// Emit serializes the current config to its solver-readable JSON blob.
func (c *Config) Emit() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return json.Marshal(c.values)
}

// Version reports the resolver version this Config was loaded for.
func (c *Config) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
