package models

import "encoding/json"

// Contingency is a postulated outage defined by a set of equipment ids.
type Contingency struct {
	ID                 string
	Name               string
	NetworkElementsIDs []string
}

// contingencyWire mirrors Contingency for serialization: every network
// element id gets a leading underscore to match the downstream consumer
// convention (spec §4.3.7 / P4).
type contingencyWire struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	NetworkElementsIDs []string `json:"networkElementsIds"`
}

func (c Contingency) MarshalJSON() ([]byte, error) {
	return json.Marshal(contingencyWire{
		ID:                 c.ID,
		Name:               c.Name,
		NetworkElementsIDs: prefixAll(c.NetworkElementsIDs),
	})
}

func prefixAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "_" + id
	}
	return out
}
