package triplestore

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Baltic-RCC/RAO/internal/models"
)

// Source is one RDF/XML payload to load, paired with a caller-chosen name
// used to derive its instance-id.
type Source struct {
	Name   string
	Reader io.Reader
}

// View is an immutable snapshot of triples loaded from one or more sources.
type View struct {
	triples []Triple
}

// Triples returns the underlying triple slice. Callers must not mutate it.
func (v *View) Triples() []Triple { return v.triples }

// Load parses each source's RDF/XML payload into triples. Every top-level
// rdf:Description (or any element carrying an rdf:about/rdf:ID attribute)
// becomes a subject; its child elements become predicate/object triples.
// Triples are deduplicated within a single source. Malformed XML fails the
// whole load with ErrBadSource.
func Load(sources []Source) (*View, error) {
	view := &View{}
	for i, src := range sources {
		instanceID := src.Name
		if instanceID == "" {
			instanceID = fmt.Sprintf("source-%d", i)
		}
		triples, err := parseSource(src.Reader, instanceID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrBadSource, instanceID, err)
		}
		view.triples = append(view.triples, dedup(triples)...)
	}
	return view, nil
}

func parseSource(r io.Reader, instanceID string) ([]Triple, error) {
	dec := xml.NewDecoder(r)
	var triples []Triple
	var currentSubject string
	var subjectDepth = -1
	var depth int
	var pendingPredicate string
	var pendingText strings.Builder
	var rowIndex int

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if about, ok := attr(t, "about"); ok {
				currentSubject = strings.TrimPrefix(about, "#")
				subjectDepth = depth
				triples = append(triples, Triple{
					Subject: currentSubject, Predicate: rdfTypePredicate,
					Object: localName(t.Name), InstanceID: instanceID, RowIndex: rowIndex,
				})
				rowIndex++
			} else if id, ok := attr(t, "ID"); ok {
				currentSubject = id
				subjectDepth = depth
				triples = append(triples, Triple{
					Subject: currentSubject, Predicate: rdfTypePredicate,
					Object: localName(t.Name), InstanceID: instanceID, RowIndex: rowIndex,
				})
				rowIndex++
			} else if currentSubject != "" && depth == subjectDepth+1 {
				pendingPredicate = predicateName(t.Name)
				pendingText.Reset()
				if resource, ok := attr(t, "resource"); ok {
					obj := strings.TrimPrefix(resource, "#")
					triples = append(triples, Triple{
						Subject: currentSubject, Predicate: pendingPredicate,
						Object: obj, InstanceID: instanceID, RowIndex: rowIndex,
					})
					rowIndex++
					pendingPredicate = ""
				}
			}
		case xml.CharData:
			if pendingPredicate != "" {
				pendingText.Write(t)
			}
		case xml.EndElement:
			if pendingPredicate != "" && predicateName(t.Name) == pendingPredicate {
				text := strings.TrimSpace(pendingText.String())
				if text != "" {
					triples = append(triples, Triple{
						Subject: currentSubject, Predicate: pendingPredicate,
						Object: text, InstanceID: instanceID, RowIndex: rowIndex,
					})
					rowIndex++
				}
				pendingPredicate = ""
			}
			if depth == subjectDepth {
				currentSubject = ""
				subjectDepth = -1
			}
			depth--
		}
	}
	return triples, nil
}

func attr(t xml.StartElement, localName string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local == localName {
			return a.Value, true
		}
	}
	return "", false
}

func localName(n xml.Name) string {
	return n.Local
}

// predicateName strips the CIM class qualifier from a predicate element
// name: "AssessedElement.normalEnabled" becomes "normalEnabled". Class
// element names carry no dot and pass through unchanged.
func predicateName(n xml.Name) string {
	local := n.Local
	if i := strings.LastIndex(local, "."); i != -1 {
		return local[i+1:]
	}
	return local
}

func dedup(triples []Triple) []Triple {
	seen := make(map[Triple]struct{}, len(triples))
	out := make([]Triple, 0, len(triples))
	for _, t := range triples {
		key := Triple{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object, InstanceID: t.InstanceID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
