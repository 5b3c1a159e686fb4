package triplestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRDF = `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:normalEnabled>true</cim:normalEnabled>
    <cim:ConductingEquipment rdf:resource="E1"/>
  </cim:AssessedElement>
  <cim:AssessedElement rdf:about="AE2">
    <cim:normalEnabled>false</cim:normalEnabled>
  </cim:AssessedElement>
  <cim:TopologicalNode rdf:about="TN1">
    <cim:label>ENTSOE boundary node</cim:label>
  </cim:TopologicalNode>
</rdf:RDF>`

func TestLoadAndTypeView(t *testing.T) {
	view, err := Load([]Source{{Name: "s1", Reader: strings.NewReader(sampleRDF)}})
	require.NoError(t, err)

	table, collisions := TypeView(view, "AssessedElement", false)
	assert.Empty(t, collisions)
	require.Len(t, table.Rows, 2)

	row := table.Rows[0]
	assert.Equal(t, "AE1", row.Subject)
	assert.True(t, row.GetBool("normalEnabled"))
	eq, ok := row.Get("ConductingEquipment")
	assert.True(t, ok)
	assert.Equal(t, "E1", eq)
}

func TestLoadDedupesWithinSource(t *testing.T) {
	dup := sampleRDF + sampleRDF
	view, err := Load([]Source{{Name: "s1", Reader: strings.NewReader(dup)}})
	require.NoError(t, err)

	table, _ := TypeView(view, "AssessedElement", false)
	assert.Len(t, table.Rows, 2)
}

func TestExcludeBoundary(t *testing.T) {
	view, err := Load([]Source{{Name: "s1", Reader: strings.NewReader(sampleRDF)}})
	require.NoError(t, err)

	trimmed := ExcludeBoundary(view)
	for _, tr := range trimmed.Triples() {
		assert.NotEqual(t, "TN1", tr.Subject)
	}
}

// A predicate carrying two distinct values for one subject is flattened to
// the first observed value, and the collision is reported.
func TestTypeViewRecordsCollisions(t *testing.T) {
	rdf := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE1">
    <cim:name>first</cim:name>
    <cim:name>second</cim:name>
  </cim:AssessedElement>
</rdf:RDF>`
	view, err := Load([]Source{{Name: "s1", Reader: strings.NewReader(rdf)}})
	require.NoError(t, err)

	table, collisions := TypeView(view, "AssessedElement", false)
	require.Len(t, collisions, 1)
	assert.Equal(t, Collision{Subject: "AE1", Predicate: "name"}, collisions[0])

	require.Len(t, table.Rows, 1)
	v, _ := table.Rows[0].Get("name")
	assert.Equal(t, "first", v)
	assert.Equal(t, []string{"first", "second"}, table.Rows[0].Multi["name"])
}

// CIM payloads qualify predicates with the owning class; views expose the
// bare property name.
func TestLoadStripsClassQualifierFromPredicates(t *testing.T) {
	rdf := `<?xml version="1.0"?>
<rdf:RDF>
  <cim:AssessedElement rdf:about="AE9">
    <cim:AssessedElement.normalEnabled>true</cim:AssessedElement.normalEnabled>
    <cim:AssessedElement.ConductingEquipment rdf:resource="#E7"/>
  </cim:AssessedElement>
</rdf:RDF>`
	view, err := Load([]Source{{Name: "s1", Reader: strings.NewReader(rdf)}})
	require.NoError(t, err)

	table, _ := TypeView(view, "AssessedElement", false)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.True(t, row.GetBool("normalEnabled"))
	eq, ok := row.Get("ConductingEquipment")
	require.True(t, ok)
	assert.Equal(t, "E7", eq)
}

func TestLoadBadSource(t *testing.T) {
	_, err := Load([]Source{{Name: "broken", Reader: strings.NewReader("<not-xml")}})
	require.Error(t, err)
}
