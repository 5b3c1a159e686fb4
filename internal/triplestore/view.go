package triplestore

import (
	"sort"
	"strconv"
	"strings"
)

// Row is one subject's predicate→value projection. Values holds the
// single-valued ("first observed") cell per predicate; Multi holds every
// observed value, for callers that need explicit multi-value explosion.
type Row struct {
	Subject    string
	InstanceID string
	RowIndex   int
	Values     map[string]string
	Multi      map[string][]string
}

// Table is an ordered set of rows, stable-sorted by (instance-id, subject).
type Table struct {
	Rows []Row
}

// Get returns the single-valued cell for predicate p, or ("", false) if the
// row has no such predicate.
func (r Row) Get(p string) (string, bool) {
	v, ok := r.Values[p]
	return v, ok
}

// GetNumeric parses the single-valued cell for p as float64.
func (r Row) GetNumeric(p string) (float64, bool) {
	v, ok := r.Get(p)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetBool interprets the single-valued cell for p the way the source system
// does: the literal string "true" is true, anything else (including
// missing) is false.
func (r Row) GetBool(p string) bool {
	v, ok := r.Get(p)
	return ok && v == "true"
}

// Collision records a predicate that carried more than one distinct value
// for a single subject within a type view.
type Collision struct {
	Subject   string
	Predicate string
}

// TypeView projects every subject whose rdf:type equals className into a
// Table. numericCoercion is accepted for interface parity with the source
// system; numeric parsing is performed lazily via Row.GetNumeric regardless.
func TypeView(v *View, className string, numericCoercion bool) (Table, []Collision) {
	subjects := map[string]struct{}{}
	for _, t := range v.triples {
		if t.Predicate == rdfTypePredicate && t.Object == className {
			subjects[t.Subject] = struct{}{}
		}
	}
	return projectSubjects(v, subjects)
}

func projectSubjects(v *View, subjects map[string]struct{}) (Table, []Collision) {
	type rowBuild struct {
		row       Row
		firstSeen bool
	}
	rows := map[string]*rowBuild{}
	var collisions []Collision

	for _, t := range v.triples {
		if _, ok := subjects[t.Subject]; !ok {
			continue
		}
		rb, ok := rows[t.Subject]
		if !ok {
			rb = &rowBuild{row: Row{
				Subject:    t.Subject,
				InstanceID: t.InstanceID,
				RowIndex:   t.RowIndex,
				Values:     map[string]string{},
				Multi:      map[string][]string{},
			}}
			rows[t.Subject] = rb
		}
		if existing, seen := rb.row.Values[t.Predicate]; seen {
			if existing != t.Object {
				collisions = append(collisions, Collision{Subject: t.Subject, Predicate: t.Predicate})
			}
		} else {
			rb.row.Values[t.Predicate] = t.Object
		}
		rb.row.Multi[t.Predicate] = append(rb.row.Multi[t.Predicate], t.Object)
	}

	out := make([]Row, 0, len(rows))
	for _, rb := range rows {
		out = append(out, rb.row)
	}
	sortRows(out)
	return Table{Rows: out}, collisions
}

// Pair is one (subject, object) projection row from PredicateView.
type Pair struct {
	Subject    string
	Object     string
	InstanceID string
	RowIndex   int
}

// PredicateView projects every triple with the given predicate as
// (subject, object) pairs, stable-ordered by (instance-id, row-index).
func PredicateView(v *View, predicate string) []Pair {
	var out []Pair
	for _, t := range v.triples {
		if t.Predicate == predicate {
			out = append(out, Pair{Subject: t.Subject, Object: t.Object, InstanceID: t.InstanceID, RowIndex: t.RowIndex})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InstanceID != out[j].InstanceID {
			return out[i].InstanceID < out[j].InstanceID
		}
		return out[i].RowIndex < out[j].RowIndex
	})
	return out
}

// FilterFunc decides whether a triple is kept.
type FilterFunc func(t Triple) bool

// Filter returns a new View containing only triples for which keep returns
// true. Pure: the receiver is untouched.
func Filter(v *View, keep FilterFunc) *View {
	out := &View{}
	for _, t := range v.triples {
		if keep(t) {
			out.triples = append(out.triples, t)
		}
	}
	return out
}

// ExcludeBoundary drops every subject whose label predicate contains
// "ENTSOE" (boundary profile), along with all of that subject's triples.
// Network-model views must have this applied before limits extraction.
func ExcludeBoundary(v *View) *View {
	boundary := map[string]struct{}{}
	for _, t := range v.triples {
		if t.Predicate == labelPredicate && strings.Contains(t.Object, "ENTSOE") {
			boundary[t.Subject] = struct{}{}
		}
	}
	return Filter(v, func(t Triple) bool {
		_, excluded := boundary[t.Subject]
		return !excluded
	})
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].InstanceID != rows[j].InstanceID {
			return rows[i].InstanceID < rows[j].InstanceID
		}
		return rows[i].Subject < rows[j].Subject
	})
}
