package models

import "encoding/json"

// Instant values a constraint may be conditioned on.
const (
	InstantPreventive = "preventive"
	InstantOutage     = "outage"
	InstantCurative   = "curative"
)

// FlowCnec is a Critical Network Element (and Contingency): a monitored
// branch with thresholds, optionally conditioned on a contingency.
// Description is carried for logging but excluded from the wire form.
//
// Invariant: ContingencyID is non-nil iff Instant == InstantCurative (P1).
type FlowCnec struct {
	ID               string
	Name             string
	Description      string
	NetworkElementID string
	Operator         string
	Thresholds       []Threshold
	Instant          string
	Optimized        bool
	Monitored        bool
	NominalV         []float64
	ContingencyID    *string
}

// DefaultNominalV is the nominal voltage assumed until the limit update
// pass resolves an operational one from the state vector.
const DefaultNominalV = 330.0

type flowCnecWire struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	NetworkElementID string      `json:"networkElementId"`
	Operator         string      `json:"operator"`
	Thresholds       []Threshold `json:"thresholds"`
	Instant          string      `json:"instant"`
	Optimized        bool        `json:"optimized"`
	Monitored        bool        `json:"monitored"`
	NominalV         []float64   `json:"nominalV"`
	ContingencyID    *string     `json:"contingencyId,omitempty"`
}

func (c FlowCnec) MarshalJSON() ([]byte, error) {
	return json.Marshal(flowCnecWire{
		ID:               c.ID,
		Name:             c.Name,
		NetworkElementID: "_" + c.NetworkElementID,
		Operator:         c.Operator,
		Thresholds:       c.Thresholds,
		Instant:          c.Instant,
		Optimized:        c.Optimized,
		Monitored:        c.Monitored,
		NominalV:         c.NominalV,
		ContingencyID:    c.ContingencyID,
	})
}
