package models

import "encoding/json"

// TerminalsAction toggles a breaker/switch open or closed.
type TerminalsAction struct {
	NetworkElementID string
	ActionType       string // "open" or "close"
}

const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// ActionTypeFromNormalValue maps a numeric normalized value to an action
// type: zero closes, non-zero opens.
func ActionTypeFromNormalValue(v float64) string {
	if v == 0 {
		return ActionClose
	}
	return ActionOpen
}

// Opposite returns the inverse action (open<->close) for the same element.
func (t TerminalsAction) Opposite() TerminalsAction {
	opp := ActionOpen
	if t.ActionType == ActionOpen {
		opp = ActionClose
	}
	return TerminalsAction{NetworkElementID: t.NetworkElementID, ActionType: opp}
}

type terminalsActionWire struct {
	NetworkElementID string `json:"networkElementId"`
	ActionType       string `json:"actionType"`
}

func (t TerminalsAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(terminalsActionWire{
		NetworkElementID: "_" + t.NetworkElementID,
		ActionType:       t.ActionType,
	})
}

// ShuntCompensatorPositionAction sets a shunt compensator's section count.
type ShuntCompensatorPositionAction struct {
	NetworkElementID string
	SectionCount     int
}

type shuntCompensatorPositionActionWire struct {
	NetworkElementID string `json:"networkElementId"`
	SectionCount     int    `json:"sectionCount"`
}

func (s ShuntCompensatorPositionAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(shuntCompensatorPositionActionWire{
		NetworkElementID: "_" + s.NetworkElementID,
		SectionCount:     s.SectionCount,
	})
}

// UsageRule pairs a usage method with the instant it applies at.
type UsageRule struct {
	UsageMethod string `json:"usageMethod"`
	Instant     string `json:"instant"`
}

// NetworkAction is a remedial action available to the solver: a topology
// change or shunt-compensator switch, with an activation cost.
type NetworkAction struct {
	ID                              string
	Name                            string
	Operator                        string
	ActivationCost                  float64
	OnInstantUsageRules             []UsageRule
	TerminalsConnectionActions      []TerminalsAction
	ShuntCompensatorPositionActions []ShuntCompensatorPositionAction
}

type networkActionWire struct {
	ID                              string                           `json:"id"`
	Name                            string                           `json:"name"`
	Operator                        string                           `json:"operator"`
	ActivationCost                  float64                          `json:"activationCost"`
	OnInstantUsageRules             []UsageRule                      `json:"onInstantUsageRules"`
	TerminalsConnectionActions      []TerminalsAction                `json:"terminalsConnectionActions,omitempty"`
	ShuntCompensatorPositionActions []ShuntCompensatorPositionAction `json:"shuntCompensatorPositionActions,omitempty"`
}

// MarshalJSON collapses empty action lists to absent rather than `[]`,
// matching the consumer's expectation (spec §4.3.7).
func (n NetworkAction) MarshalJSON() ([]byte, error) {
	wire := networkActionWire{
		ID:                  n.ID,
		Name:                n.Name,
		Operator:            n.Operator,
		ActivationCost:      n.ActivationCost,
		OnInstantUsageRules: n.OnInstantUsageRules,
	}
	if len(n.TerminalsConnectionActions) > 0 {
		wire.TerminalsConnectionActions = n.TerminalsConnectionActions
	}
	if len(n.ShuntCompensatorPositionActions) > 0 {
		wire.ShuntCompensatorPositionActions = n.ShuntCompensatorPositionActions
	}
	return json.Marshal(wire)
}
