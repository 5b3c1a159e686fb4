package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baltic-RCC/RAO/internal/solver"
)

func TestPostProcessMeltsAndJoinsActivation(t *testing.T) {
	result := solver.Result{
		FlowCnecResults: []solver.FlowCnecResult{
			{FlowCnecID: "cnec-1", ContingencyID: "CO_1", Instant: "curative", Values: map[string]float64{"flow": 900}},
		},
		AngleCnecResults: []solver.AngleCnecResult{
			{AngleCnecID: "acnec-1", ContingencyID: "CO_1", Instant: "curative", Values: map[string]float64{"angle": 12.5}},
		},
		NetworkActionResults: []solver.NetworkActionResult{
			{NetworkActionID: "na-1", ContingencyID: "CO_1", Instant: "curative", Activated: true},
		},
		RangeActionResults: []solver.RangeActionResult{
			{RangeActionID: "ra-1", ContingencyID: "CO_1", Instant: "curative", SetPoint: 42.0},
		},
	}
	headers := map[string]string{"scenario_time": "2026-07-29T10:00:00Z"}

	rows := postProcess(result, headers)
	require.Len(t, rows, 2)

	for _, row := range rows {
		require.NotNil(t, row.Activated)
		assert.True(t, *row.Activated)
		require.NotNil(t, row.SetPoint)
		assert.Equal(t, 42.0, *row.SetPoint)
		assert.Equal(t, headers, row.RMQ)
	}
}

func TestPostProcessLeavesActivationUnsetWhenNoActionResults(t *testing.T) {
	result := solver.Result{
		FlowCnecResults: []solver.FlowCnecResult{
			{FlowCnecID: "cnec-1", ContingencyID: "CO_1", Instant: "preventive", Values: map[string]float64{"flow": 500}},
		},
	}

	rows := postProcess(result, map[string]string{})
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Activated)
	assert.Nil(t, rows[0].SetPoint)
	assert.Equal(t, "flowCnecResults", rows[0].CnecResultsType)
}
