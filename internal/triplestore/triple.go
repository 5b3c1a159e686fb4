// Package triplestore exposes an in-memory RDF triple store as queryable
// tabular views over a type or predicate (C1).
package triplestore

// Triple is the base datum: subject/predicate/object, grouped by the
// instance-id (source file) it was parsed from.
type Triple struct {
	Subject    string
	Predicate  string
	Object     string
	InstanceID string
	RowIndex   int
}

// rdfTypePredicate is the well-known predicate used to discriminate a
// subject's class. encoding/xml strips namespace prefixes to local names, so
// this is the bare local name, not the qualified "rdf:type".
const rdfTypePredicate = "type"

// labelPredicate carries a human-readable label; boundary profiles are
// identified by this predicate containing "ENTSOE".
const labelPredicate = "label"
