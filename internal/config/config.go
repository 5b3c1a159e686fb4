// Package config resolves worker-level connection settings from the
// environment, following the teacher's NewXConfig/ApplyDefaults/Validate
// per-section shape (engine/config/unified_config.go), with env-driven
// overrides grounded in original_source's config_parser.parse_app_properties.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// BrokerConfig holds AMQP connection settings.
type BrokerConfig struct {
	URL       string
	Queue     string
	PrefetchN int
}

// BlobStoreConfig holds S3-compatible endpoint settings.
type BlobStoreConfig struct {
	Endpoint         string
	UseSSL           bool
	AccessKey        string
	SecretKey        string
	Bucket           string
	TokenRenewMargin time.Duration
}

// MetadataIndexConfig holds Elasticsearch connection settings.
type MetadataIndexConfig struct {
	Addresses []string
	IndexName string
}

// ParametersConfig points at the solver parameter resolver's layers.
type ParametersConfig struct {
	BasePath        string
	OverrideEnvVar  string
	ResolverVersion string
}

// CnecFilterConfig drives the serialization-time CNEC exclusion of spec
// §4.3.7. The filter is disabled unless both fields are set.
type CnecFilterConfig struct {
	NamePattern string
	OperatorID  string
}

// WorkerConfig is the complete env-resolved configuration for one worker
// binary (optimizer, input-retriever, remedial-action-schedules).
type WorkerConfig struct {
	Broker                BrokerConfig
	BlobStore             BlobStoreConfig
	MetadataIndex         MetadataIndexConfig
	Parameters            ParametersConfig
	CnecFilter            CnecFilterConfig
	HealthAddr            string
	MetricsAddr           string
	SolverEndpoint        string
	CurrentViolationsOnly bool
}

// NewWorkerConfig returns a WorkerConfig populated with defaults, suitable
// for ApplyEnv to override.
func NewWorkerConfig() *WorkerConfig {
	cfg := &WorkerConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *WorkerConfig) ApplyDefaults() {
	if c.Broker.Queue == "" {
		c.Broker.Queue = "rao.sar"
	}
	if c.Broker.PrefetchN == 0 {
		c.Broker.PrefetchN = 1
	}
	if c.BlobStore.Bucket == "" {
		c.BlobStore.Bucket = "rao"
	}
	if c.BlobStore.TokenRenewMargin == 0 {
		c.BlobStore.TokenRenewMargin = 30 * time.Second
	}
	if c.MetadataIndex.IndexName == "" {
		c.MetadataIndex.IndexName = "rao-results"
	}
	if c.Parameters.ResolverVersion == "" {
		c.Parameters.ResolverVersion = "v1"
	}
	if c.HealthAddr == "" {
		c.HealthAddr = ":8080"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
}

// ApplyEnv overrides defaults from environment variables, following
// original_source's env-driven app-properties convention.
func (c *WorkerConfig) ApplyEnv() {
	setString(&c.Broker.URL, "RAO_BROKER_URL")
	setString(&c.Broker.Queue, "RAO_BROKER_QUEUE")
	setInt(&c.Broker.PrefetchN, "RAO_BROKER_PREFETCH")

	setString(&c.BlobStore.Endpoint, "RAO_BLOBSTORE_ENDPOINT")
	setBool(&c.BlobStore.UseSSL, "RAO_BLOBSTORE_USE_SSL")
	setString(&c.BlobStore.AccessKey, "RAO_BLOBSTORE_ACCESS_KEY")
	setString(&c.BlobStore.SecretKey, "RAO_BLOBSTORE_SECRET_KEY")
	setString(&c.BlobStore.Bucket, "RAO_BLOBSTORE_BUCKET")
	setDuration(&c.BlobStore.TokenRenewMargin, "RAO_BLOBSTORE_TOKEN_MARGIN")

	setStringSlice(&c.MetadataIndex.Addresses, "RAO_INDEX_ADDRESSES")
	setString(&c.MetadataIndex.IndexName, "RAO_INDEX_NAME")

	setString(&c.Parameters.BasePath, "RAO_CONFIG_BASE_PATH")
	setString(&c.Parameters.OverrideEnvVar, "RAO_CONFIG_OVERRIDE_ENV_VAR")
	setString(&c.Parameters.ResolverVersion, "RAO_CONFIG_RESOLVER_VERSION")

	setString(&c.CnecFilter.NamePattern, "RAO_CNEC_FILTER_NAME_PATTERN")
	setString(&c.CnecFilter.OperatorID, "RAO_CNEC_FILTER_OPERATOR")

	setBool(&c.CurrentViolationsOnly, "RAO_CURRENT_VIOLATIONS_ONLY")
	setString(&c.HealthAddr, "RAO_HEALTH_ADDR")
	setString(&c.MetricsAddr, "RAO_METRICS_ADDR")
	setString(&c.SolverEndpoint, "RAO_SOLVER_ENDPOINT")
}

// Validate checks that every required field for startup is populated.
func (c *WorkerConfig) Validate() error {
	if c.Broker.URL == "" {
		return fmt.Errorf("config: RAO_BROKER_URL is required")
	}
	if c.BlobStore.Endpoint == "" {
		return fmt.Errorf("config: RAO_BLOBSTORE_ENDPOINT is required")
	}
	if len(c.MetadataIndex.Addresses) == 0 {
		return fmt.Errorf("config: RAO_INDEX_ADDRESSES is required")
	}
	if c.Parameters.BasePath == "" {
		return fmt.Errorf("config: RAO_CONFIG_BASE_PATH is required")
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setStringSlice(dst *[]string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = splitCSV(v)
	}
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
