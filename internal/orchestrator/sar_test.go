package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

const sarRDF = `<?xml version="1.0"?>
<rdf:RDF>
  <cim:ContingencyPowerFlowResult rdf:about="pfr1">
    <cim:PowerFlowResult.isViolation>true</cim:PowerFlowResult.isViolation>
    <cim:PowerFlowResult.valueA>1234.5</cim:PowerFlowResult.valueA>
    <cim:ContingencyPowerFlowResult.Contingency rdf:resource="CO_1"/>
  </cim:ContingencyPowerFlowResult>
  <cim:ContingencyPowerFlowResult rdf:about="pfr2">
    <cim:PowerFlowResult.isViolation>false</cim:PowerFlowResult.isViolation>
    <cim:ContingencyPowerFlowResult.Contingency rdf:resource="CO_2"/>
  </cim:ContingencyPowerFlowResult>
  <cim:ContingencyPowerFlowResult rdf:about="pfr3">
    <cim:PowerFlowResult.isViolation>true</cim:PowerFlowResult.isViolation>
    <cim:ContingencyPowerFlowResult.Contingency rdf:resource="CO_3"/>
  </cim:ContingencyPowerFlowResult>
  <cim:ContingencyPowerFlowResult rdf:about="pfr4">
    <cim:PowerFlowResult.isViolation>true</cim:PowerFlowResult.isViolation>
    <cim:PowerFlowResult.valueA>999.0</cim:PowerFlowResult.valueA>
    <cim:ContingencyPowerFlowResult.Contingency rdf:resource="CO_1"/>
  </cim:ContingencyPowerFlowResult>
</rdf:RDF>`

func loadSARFixture(t *testing.T, rdf string) *triplestore.View {
	t.Helper()
	view, err := triplestore.Load([]triplestore.Source{{Name: "sar", Reader: strings.NewReader(rdf)}})
	require.NoError(t, err)
	return view
}

func TestFilterViolationsSkipsNonViolatedAndDeduplicates(t *testing.T) {
	view := loadSARFixture(t, sarRDF)
	got := filterViolations(view, false)

	var ids []string
	for _, v := range got {
		ids = append(ids, v.ContingencyID)
	}
	assert.ElementsMatch(t, []string{"CO_1", "CO_3"}, ids)
}

func TestFilterViolationsCurrentOnlyRequiresValueA(t *testing.T) {
	view := loadSARFixture(t, sarRDF)
	got := filterViolations(view, true)

	var ids []string
	for _, v := range got {
		ids = append(ids, v.ContingencyID)
	}
	assert.ElementsMatch(t, []string{"CO_1"}, ids)
}

func TestFilterViolationsEmptyWhenNoneViolated(t *testing.T) {
	rdf := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:ContingencyPowerFlowResult rdf:about="pfr1">
    <cim:PowerFlowResult.isViolation>false</cim:PowerFlowResult.isViolation>
    <cim:ContingencyPowerFlowResult.Contingency rdf:resource="CO_1"/>
  </cim:ContingencyPowerFlowResult>
</rdf:RDF>`
	view := loadSARFixture(t, rdf)
	got := filterViolations(view, false)
	assert.Empty(t, got)
}
