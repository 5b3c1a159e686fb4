package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every network element id is emitted with exactly one "_" prefix.
func TestSerializationPrefixesNetworkElementIDs(t *testing.T) {
	contingency := Contingency{ID: "C1", Name: "C1", NetworkElementsIDs: []string{"E1", "E2"}}
	payload, err := json.Marshal(contingency)
	require.NoError(t, err)

	var wire struct {
		NetworkElementsIDs []string `json:"networkElementsIds"`
	}
	require.NoError(t, json.Unmarshal(payload, &wire))
	assert.Equal(t, []string{"_E1", "_E2"}, wire.NetworkElementsIDs)

	cnec := FlowCnec{ID: "a", NetworkElementID: "E1", Instant: InstantPreventive}
	payload, err = json.Marshal(cnec)
	require.NoError(t, err)

	var cnecWire struct {
		NetworkElementID string  `json:"networkElementId"`
		ContingencyID    *string `json:"contingencyId"`
	}
	require.NoError(t, json.Unmarshal(payload, &cnecWire))
	assert.Equal(t, "_E1", cnecWire.NetworkElementID)
	assert.Nil(t, cnecWire.ContingencyID)
}

// Empty action lists collapse to absent keys, not empty arrays.
func TestNetworkActionOmitsEmptyActionLists(t *testing.T) {
	action := NetworkAction{
		ID:       "RA1",
		Name:     "RA1",
		Operator: "TSO",
		OnInstantUsageRules: []UsageRule{
			{UsageMethod: "available", Instant: InstantPreventive},
		},
		ShuntCompensatorPositionActions: []ShuntCompensatorPositionAction{
			{NetworkElementID: "SC1", SectionCount: 2},
		},
	}
	payload, err := json.Marshal(action)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(payload, &wire))
	_, hasTerminals := wire["terminalsConnectionActions"]
	assert.False(t, hasTerminals)
	require.Contains(t, wire, "shuntCompensatorPositionActions")
}

func TestActionTypeFromNormalValue(t *testing.T) {
	assert.Equal(t, ActionClose, ActionTypeFromNormalValue(0))
	assert.Equal(t, ActionOpen, ActionTypeFromNormalValue(1))
	assert.Equal(t, ActionOpen, ActionTypeFromNormalValue(-2))
}

func TestTerminalsActionOpposite(t *testing.T) {
	open := TerminalsAction{NetworkElementID: "E1", ActionType: ActionOpen}
	assert.Equal(t, ActionClose, open.Opposite().ActionType)
	assert.Equal(t, ActionOpen, open.Opposite().Opposite().ActionType)
}
