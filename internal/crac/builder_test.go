package crac

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/telemetry/logging"
	"github.com/Baltic-RCC/RAO/internal/telemetry/metrics"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

func loadView(t *testing.T, rdf string) *triplestore.View {
	t.Helper()
	view, err := triplestore.Load([]triplestore.Source{{Name: "s1", Reader: strings.NewReader(rdf)}})
	require.NoError(t, err)
	return view
}

func newTestBuilder(t *testing.T, dataRDF, networkRDF string) *Builder {
	t.Helper()
	data := loadView(t, dataRDF)
	network := triplestore.ExcludeBoundary(loadView(t, networkRDF))
	return NewBuilder(data, network, logging.New(nil), nil)
}

func findCnec(doc *models.Crac, id string) *models.FlowCnec {
	for i := range doc.FlowCnecs {
		if doc.FlowCnecs[i].ID == id {
			return &doc.FlowCnecs[i]
		}
	}
	return nil
}

// Scenario 1: one preventive CNEC, no contingencies.
func TestScenario1_PreventiveCnec(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:inBaseCase>true</cim:inBaseCase>
    <cim:SecuredForRegion>R1</cim:SecuredForRegion>
  </cim:AssessedElement>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:OperationalLimitSet rdf:about="OLS1">
    <cim:Terminal rdf:resource="T1"/>
  </cim:OperationalLimitSet>
  <cim:CurrentLimit rdf:about="OL1">
    <cim:OperationalLimitSet rdf:resource="OLS1"/>
    <cim:OperationalLimitType rdf:resource="OLT1"/>
    <cim:value>1000</cim:value>
  </cim:CurrentLimit>
  <cim:OperationalLimitType rdf:about="OLT1">
    <cim:limitType>http://example.org/limitType.patl</cim:limitType>
  </cim:OperationalLimitType>
  <cim:Terminal rdf:about="T1">
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:TopologicalNode rdf:resource="TN1"/>
  </cim:Terminal>
  <cim:SvVoltage rdf:about="SV1">
    <cim:TopologicalNode rdf:resource="TN1"/>
    <cim:v>330</cim:v>
  </cim:SvVoltage>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, doc.FlowCnecs, 1)
	cnec := doc.FlowCnecs[0]
	assert.Equal(t, "AE1-preventive", cnec.ID)
	assert.True(t, cnec.Optimized)
	assert.False(t, cnec.Monitored)
	assert.Nil(t, cnec.ContingencyID)
	require.Len(t, cnec.Thresholds, 1)
	assert.Equal(t, models.Threshold{Unit: models.UnitAmpere, Min: -1000, Max: 1000, Side: 1}, cnec.Thresholds[0])
	assert.Equal(t, []float64{330.0}, cnec.NominalV)
}

// Scenario 2: curative CNEC with current winning over synthesized MW.
func TestScenario2_CurativeCnecCurrentWins(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
  </cim:AssessedElement>
  <cim:Contingency rdf:about="C1">
    <cim:normalMustStudy>true</cim:normalMustStudy>
  </cim:Contingency>
  <cim:ContingencyEquipment rdf:about="CE1">
    <cim:Contingency rdf:resource="C1"/>
    <cim:Equipment rdf:resource="E2"/>
  </cim:ContingencyEquipment>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E2"/>
  <cim:OperationalLimitSet rdf:about="OLS1">
    <cim:Terminal rdf:resource="T1"/>
  </cim:OperationalLimitSet>
  <cim:CurrentLimit rdf:about="OL1">
    <cim:OperationalLimitSet rdf:resource="OLS1"/>
    <cim:OperationalLimitType rdf:resource="OLT1"/>
    <cim:value>800</cim:value>
  </cim:CurrentLimit>
  <cim:OperationalLimitType rdf:about="OLT1">
    <cim:limitType>http://example.org/limitType.tatl</cim:limitType>
  </cim:OperationalLimitType>
  <cim:Terminal rdf:about="T1">
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:TopologicalNode rdf:resource="TN1"/>
  </cim:Terminal>
  <cim:SvVoltage rdf:about="SV1">
    <cim:TopologicalNode rdf:resource="TN1"/>
    <cim:v>335</cim:v>
  </cim:SvVoltage>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cnec := findCnec(doc, "AE1-curative")
	require.NotNil(t, cnec)
	require.NotNil(t, cnec.ContingencyID)
	assert.Equal(t, "C1", *cnec.ContingencyID)
	assert.Equal(t, []float64{335.0}, cnec.NominalV)
	require.Len(t, cnec.Thresholds, 1)
	assert.Equal(t, models.Threshold{Unit: models.UnitAmpere, Min: -800, Max: 800, Side: 1}, cnec.Thresholds[0])
}

// Scenario 3: apparent-power fallback with a 0.9 cos-phi assumption.
func TestScenario3_ApparentPowerFallback(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E3"/>
    <cim:inBaseCase>true</cim:inBaseCase>
  </cim:AssessedElement>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:OperationalLimitSet rdf:about="OLS1">
    <cim:Terminal rdf:resource="T1"/>
  </cim:OperationalLimitSet>
  <cim:ApparentPowerLimit rdf:about="OL1">
    <cim:OperationalLimitSet rdf:resource="OLS1"/>
    <cim:OperationalLimitType rdf:resource="OLT1"/>
    <cim:value>500</cim:value>
  </cim:ApparentPowerLimit>
  <cim:OperationalLimitType rdf:about="OLT1">
    <cim:limitType>http://example.org/limitType.patl</cim:limitType>
  </cim:OperationalLimitType>
  <cim:Terminal rdf:about="T1">
    <cim:ConductingEquipment rdf:resource="E3"/>
    <cim:TopologicalNode rdf:resource="TN1"/>
  </cim:Terminal>
  <cim:SvVoltage rdf:about="SV1">
    <cim:TopologicalNode rdf:resource="TN1"/>
    <cim:v>400</cim:v>
  </cim:SvVoltage>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cnec := findCnec(doc, "AE1-preventive")
	require.NotNil(t, cnec)
	require.Len(t, cnec.Thresholds, 1)
	assert.Equal(t, models.Threshold{Unit: models.UnitMegawatt, Min: -450, Max: 450, Side: 1}, cnec.Thresholds[0])
}

// Scenario 4: a CNEC whose element carries no limits of any kind is removed
// by the consistency pass.
func TestScenario4_UnconstrainedCnecRemoved(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E9"/>
    <cim:inBaseCase>true</cim:inBaseCase>
  </cim:AssessedElement>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E9"/>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	assert.Nil(t, findCnec(doc, "AE1-preventive"))
	assert.Empty(t, doc.FlowCnecs)
}

const raUpAndDownData = `<?xml version="1.0"?>
<rdf:RDF>
  <cim:GridStateAlterationRemedialAction rdf:about="RA1">
    <cim:kind>http://example.org/kind.PREVENTIVE</cim:kind>
  </cim:GridStateAlterationRemedialAction>
  <cim:GridStateAlteration rdf:about="GSA1">
    <cim:GridStateAlterationRemedialAction rdf:resource="RA1"/>
  </cim:GridStateAlteration>
  <cim:TopologyAction rdf:about="GSA1">
    <cim:Equipment rdf:resource="E4"/>
  </cim:TopologyAction>
  <cim:StaticPropertyRange rdf:about="SPR1">
    <cim:GridStateAlteration rdf:resource="GSA1"/>
    <cim:normalValue>0</cim:normalValue>
    <cim:direction>upAndDown</cim:direction>
  </cim:StaticPropertyRange>
  <cim:GridStateAlteration rdf:about="GSA2">
    <cim:GridStateAlterationRemedialAction rdf:resource="RA1"/>
  </cim:GridStateAlteration>
  <cim:TopologyAction rdf:about="GSA2">
    <cim:Equipment rdf:resource="E5"/>
  </cim:TopologyAction>
  <cim:StaticPropertyRange rdf:about="SPR2">
    <cim:GridStateAlteration rdf:resource="GSA2"/>
    <cim:normalValue>1</cim:normalValue>
    <cim:direction>upAndDown</cim:direction>
  </cim:StaticPropertyRange>
</rdf:RDF>`

const raNetworkRDF = `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E4"/>
  <cim:Breaker rdf:about="E5"/>
</rdf:RDF>`

// Scenario 5: upAndDown direction expands into two opposite NetworkActions.
func TestScenario5_UpAndDownExpansion(t *testing.T) {
	b := newTestBuilder(t, raUpAndDownData, raNetworkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, doc.NetworkActions, 2)
	original := doc.NetworkActions[0]
	opposite := doc.NetworkActions[1]

	assert.Equal(t, "RA1", original.ID)
	assert.Equal(t, "RA1-opposite-direction", opposite.ID)
	assert.Equal(t, 0.0, original.ActivationCost)

	require.Len(t, original.TerminalsConnectionActions, 2)
	assert.Equal(t, models.ActionClose, original.TerminalsConnectionActions[0].ActionType)
	assert.Equal(t, models.ActionOpen, original.TerminalsConnectionActions[1].ActionType)

	require.Len(t, opposite.TerminalsConnectionActions, 2)
	assert.Equal(t, models.ActionOpen, opposite.TerminalsConnectionActions[0].ActionType)
	assert.Equal(t, models.ActionClose, opposite.TerminalsConnectionActions[1].ActionType)
}

// Scenario 6: a single "none"-direction topology alteration incurs the
// non-reserve activation penalty.
func TestScenario6_NonReservePenalty(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:GridStateAlterationRemedialAction rdf:about="RA2">
    <cim:kind>http://example.org/kind.CURATIVE</cim:kind>
  </cim:GridStateAlterationRemedialAction>
  <cim:GridStateAlteration rdf:about="GSA3">
    <cim:GridStateAlterationRemedialAction rdf:resource="RA2"/>
  </cim:GridStateAlteration>
  <cim:TopologyAction rdf:about="GSA3">
    <cim:Equipment rdf:resource="E4"/>
  </cim:TopologyAction>
  <cim:StaticPropertyRange rdf:about="SPR3">
    <cim:GridStateAlteration rdf:resource="GSA3"/>
    <cim:normalValue>1</cim:normalValue>
    <cim:direction>none</cim:direction>
  </cim:StaticPropertyRange>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, raNetworkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, doc.NetworkActions, 1)
	assert.Equal(t, 50.0, doc.NetworkActions[0].ActivationCost)
	assert.Equal(t, "CURATIVE", doc.NetworkActions[0].OnInstantUsageRules[0].Instant)
}

// Mixed-direction alterations on the same RA cause the whole RA to be
// skipped (spec §8 boundary behavior).
func TestMixedDirectionSkipsRA(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:GridStateAlterationRemedialAction rdf:about="RA3">
    <cim:kind>http://example.org/kind.PREVENTIVE</cim:kind>
  </cim:GridStateAlterationRemedialAction>
  <cim:GridStateAlteration rdf:about="GSA4">
    <cim:GridStateAlterationRemedialAction rdf:resource="RA3"/>
  </cim:GridStateAlteration>
  <cim:TopologyAction rdf:about="GSA4">
    <cim:Equipment rdf:resource="E4"/>
  </cim:TopologyAction>
  <cim:StaticPropertyRange rdf:about="SPR4">
    <cim:GridStateAlteration rdf:resource="GSA4"/>
    <cim:normalValue>0</cim:normalValue>
    <cim:direction>none</cim:direction>
  </cim:StaticPropertyRange>
  <cim:GridStateAlteration rdf:about="GSA5">
    <cim:GridStateAlterationRemedialAction rdf:resource="RA3"/>
  </cim:GridStateAlteration>
  <cim:TopologyAction rdf:about="GSA5">
    <cim:Equipment rdf:resource="E5"/>
  </cim:TopologyAction>
  <cim:StaticPropertyRange rdf:about="SPR5">
    <cim:GridStateAlteration rdf:resource="GSA5"/>
    <cim:normalValue>1</cim:normalValue>
    <cim:direction>up</cim:direction>
  </cim:StaticPropertyRange>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, raNetworkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, doc.NetworkActions)
}

// Empty contingency set: no curative CNECs, preventive CNECs still present.
func TestEmptyContingencySetStillEmitsPreventive(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:inBaseCase>true</cim:inBaseCase>
  </cim:AssessedElement>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E1"/>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), map[string]struct{}{"NONEXISTENT": {}})
	require.NoError(t, err)

	for _, c := range doc.FlowCnecs {
		assert.NotEqual(t, models.InstantCurative, c.Instant)
	}
	assert.Empty(t, doc.Contingencies)
}

// P1: every curative FlowCnec has a ContingencyID set.
func TestInvariant_CurativeHasContingencyID(t *testing.T) {
	b := newTestBuilder(t, `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
  </cim:AssessedElement>
  <cim:Contingency rdf:about="C1">
    <cim:normalMustStudy>true</cim:normalMustStudy>
  </cim:Contingency>
  <cim:ContingencyEquipment rdf:about="CE1">
    <cim:Contingency rdf:resource="C1"/>
    <cim:Equipment rdf:resource="E2"/>
  </cim:ContingencyEquipment>
</rdf:RDF>`, `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E1"/>
  <cim:Breaker rdf:about="E2"/>
</rdf:RDF>`)

	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	for _, c := range doc.FlowCnecs {
		if c.Instant == models.InstantCurative {
			assert.NotNil(t, c.ContingencyID)
		} else {
			assert.Nil(t, c.ContingencyID)
		}
	}
}

// Name, operator and description come off the AssessedElement row; an "_AT"
// name selects the max operational voltage instead of the mean.
func TestCnecNameOperatorAndMaxVoltageSelection(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:name>L1_AT_L2</cim:name>
    <cim:AssessedSystemOperator rdf:resource="10X1001A1001A39W"/>
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:inBaseCase>true</cim:inBaseCase>
  </cim:AssessedElement>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:OperationalLimitSet rdf:about="OLS1">
    <cim:Terminal rdf:resource="T1"/>
  </cim:OperationalLimitSet>
  <cim:OperationalLimitSet rdf:about="OLS2">
    <cim:Terminal rdf:resource="T2"/>
  </cim:OperationalLimitSet>
  <cim:CurrentLimit rdf:about="OL1">
    <cim:OperationalLimitSet rdf:resource="OLS1"/>
    <cim:OperationalLimitType rdf:resource="OLT1"/>
    <cim:value>1000</cim:value>
  </cim:CurrentLimit>
  <cim:CurrentLimit rdf:about="OL2">
    <cim:OperationalLimitSet rdf:resource="OLS2"/>
    <cim:OperationalLimitType rdf:resource="OLT1"/>
    <cim:value>1100</cim:value>
  </cim:CurrentLimit>
  <cim:OperationalLimitType rdf:about="OLT1">
    <cim:limitType>http://example.org/limitType.patl</cim:limitType>
  </cim:OperationalLimitType>
  <cim:Terminal rdf:about="T1">
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:TopologicalNode rdf:resource="TN1"/>
  </cim:Terminal>
  <cim:Terminal rdf:about="T2">
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:TopologicalNode rdf:resource="TN2"/>
  </cim:Terminal>
  <cim:SvVoltage rdf:about="SV1">
    <cim:TopologicalNode rdf:resource="TN1"/>
    <cim:v>330</cim:v>
  </cim:SvVoltage>
  <cim:SvVoltage rdf:about="SV2">
    <cim:TopologicalNode rdf:resource="TN2"/>
    <cim:v>340</cim:v>
  </cim:SvVoltage>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cnec := findCnec(doc, "AE1-preventive")
	require.NotNil(t, cnec)
	assert.Equal(t, "L1_AT_L2", cnec.Name)
	assert.Equal(t, "10X1001A1001A39W", cnec.Operator)
	assert.Equal(t, []float64{340.0}, cnec.NominalV)
	require.Len(t, cnec.Thresholds, 1)
	assert.Equal(t, 1000.0, cnec.Thresholds[0].Max)
}

// A curative CNEC whose element only carries a PATL limit falls back to it.
func TestCurativeFallsBackToPATL(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
  </cim:AssessedElement>
  <cim:Contingency rdf:about="C1">
    <cim:normalMustStudy>true</cim:normalMustStudy>
  </cim:Contingency>
  <cim:ContingencyEquipment rdf:about="CE1">
    <cim:Contingency rdf:resource="C1"/>
    <cim:Equipment rdf:resource="E2"/>
  </cim:ContingencyEquipment>
</rdf:RDF>`

	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E2"/>
  <cim:OperationalLimitSet rdf:about="OLS1">
    <cim:Terminal rdf:resource="T1"/>
  </cim:OperationalLimitSet>
  <cim:CurrentLimit rdf:about="OL1">
    <cim:OperationalLimitSet rdf:resource="OLS1"/>
    <cim:OperationalLimitType rdf:resource="OLT1"/>
    <cim:value>1200</cim:value>
  </cim:CurrentLimit>
  <cim:OperationalLimitType rdf:about="OLT1">
    <cim:limitType>http://example.org/limitType.patl</cim:limitType>
  </cim:OperationalLimitType>
  <cim:Terminal rdf:about="T1">
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:TopologicalNode rdf:resource="TN1"/>
  </cim:Terminal>
  <cim:SvVoltage rdf:about="SV1">
    <cim:TopologicalNode rdf:resource="TN1"/>
    <cim:v>330</cim:v>
  </cim:SvVoltage>
</rdf:RDF>`

	b := newTestBuilder(t, dataRDF, networkRDF)
	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	cnec := findCnec(doc, "AE1-curative")
	require.NotNil(t, cnec)
	require.Len(t, cnec.Thresholds, 1)
	assert.Equal(t, models.Threshold{Unit: models.UnitAmpere, Min: -1200, Max: 1200, Side: 1}, cnec.Thresholds[0])
}

// A multi-valued predicate collision in the data view surfaces as an
// ambiguous-predicate warning on the metrics registry.
func TestCollisionIncrementsWarningCounter(t *testing.T) {
	dataRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:name>first</cim:name>
    <cim:name>second</cim:name>
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
    <cim:inBaseCase>true</cim:inBaseCase>
  </cim:AssessedElement>
</rdf:RDF>`
	networkRDF := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:Breaker rdf:about="E1"/>
</rdf:RDF>`

	data := loadView(t, dataRDF)
	network := triplestore.ExcludeBoundary(loadView(t, networkRDF))
	m := metrics.New(prometheus.NewRegistry())
	b := NewBuilder(data, network, logging.New(nil), m)

	doc, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Warnings.WithLabelValues("ambiguous_predicate")))
	assert.Empty(t, doc.FlowCnecs)
}

// R1: build() is deterministic across repeated calls against the same view.
func TestDeterministicBuild(t *testing.T) {
	b := newTestBuilder(t, raUpAndDownData, raNetworkRDF)

	doc1, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	doc2, err := b.Build(context.Background(), nil)
	require.NoError(t, err)

	bytes1, err := doc1.Serialize(nil)
	require.NoError(t, err)
	bytes2, err := doc2.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, string(bytes1), string(bytes2))
}
