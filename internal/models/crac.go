package models

import "encoding/json"

// Crac is the Contingency and Remedial Action Constraints document: the
// optimization input built per (SAR message, contingency). It is mutated
// only during Builder.Build; once returned it is treated as immutable.
type Crac struct {
	Type                     string
	Version                  string
	Info                     string
	ID                       string
	Name                     string
	Instants                 []Instant
	RAUsageLimitsPerInstant  []any
	NetworkElementsNamePerID map[string]string
	Contingencies            []Contingency
	FlowCnecs                []FlowCnec
	NetworkActions           []NetworkAction
}

type Instant struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// DefaultInstants is the fixed instant sequence every Crac document carries.
func DefaultInstants() []Instant {
	return []Instant{
		{ID: InstantPreventive, Kind: "PREVENTIVE"},
		{ID: InstantOutage, Kind: "OUTAGE"},
		{ID: InstantCurative, Kind: "CURATIVE"},
	}
}

// NewCrac returns an empty document with the fixed metadata fields set.
func NewCrac(id, name string) *Crac {
	return &Crac{
		Type:                     "CRAC",
		Version:                  "2.7",
		Info:                     "RAO Virtual Operator CRAC",
		ID:                       id,
		Name:                     name,
		Instants:                 DefaultInstants(),
		RAUsageLimitsPerInstant:  []any{},
		NetworkElementsNamePerID: map[string]string{},
	}
}

// OperatorFilter decides whether a FlowCnec should be dropped at
// serialization time, keyed on its name and operator. It never mutates the
// in-memory document (spec §4.3.7).
type OperatorFilter func(name, operator string) bool

type cracWire struct {
	Type                     string            `json:"type"`
	Version                  string            `json:"version"`
	Info                     string            `json:"info"`
	ID                       string            `json:"id"`
	Name                     string            `json:"name"`
	Instants                 []Instant         `json:"instants"`
	RAUsageLimitsPerInstant  []any             `json:"ra-usage-limits-per-instant"`
	NetworkElementsNamePerID map[string]string `json:"networkElementsNamePerId"`
	Contingencies            []Contingency     `json:"contingencies"`
	FlowCnecs                []FlowCnec        `json:"flowCnecs"`
	NetworkActions           []NetworkAction   `json:"networkActions"`
}

// Serialize marshals the document to its solver-consumable JSON form. filter
// may be nil, in which case no FlowCnec is excluded.
func (c *Crac) Serialize(filter OperatorFilter) ([]byte, error) {
	cnecs := c.FlowCnecs
	if filter != nil {
		kept := make([]FlowCnec, 0, len(cnecs))
		for _, cnec := range cnecs {
			if filter(cnec.Name, cnec.Operator) {
				continue
			}
			kept = append(kept, cnec)
		}
		cnecs = kept
	}
	return json.Marshal(cracWire{
		Type:                     c.Type,
		Version:                  c.Version,
		Info:                     c.Info,
		ID:                       c.ID,
		Name:                     c.Name,
		Instants:                 c.Instants,
		RAUsageLimitsPerInstant:  c.RAUsageLimitsPerInstant,
		NetworkElementsNamePerID: c.NetworkElementsNamePerID,
		Contingencies:            c.Contingencies,
		FlowCnecs:                cnecs,
		NetworkActions:           c.NetworkActions,
	})
}

// MarshalJSON implements the unfiltered serialization, used by tests and any
// caller that doesn't need the operator filter.
func (c *Crac) MarshalJSON() ([]byte, error) {
	return c.Serialize(nil)
}
