package crac

import (
	"context"

	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// contingencyGroup accumulates one contingency's equipment list during the
// ContingencyEquipment join, keyed by contingency mRID.
type contingencyGroup struct {
	id         string
	name       string
	equipment  []string
	instanceID string
	rowIndex   int
}

// processContingencies implements spec §4.3.2: join ContingencyEquipment
// with the Contingency.normalMustStudy predicate view, optionally restrict
// to contingencyIDs, and append one models.Contingency per group, in the
// order each group's first ContingencyEquipment row appears in the type
// view's (instance-id, subject) row order.
func (b *Builder) processContingencies(ctx context.Context, doc *models.Crac, contingencyIDs map[string]struct{}) {
	mustStudy := map[string]struct{}{}
	for _, pair := range triplestore.PredicateView(b.data, "normalMustStudy") {
		if pair.Object == "true" {
			mustStudy[pair.Subject] = struct{}{}
		}
	}

	equipmentRows := b.typeView(ctx, b.data, "ContingencyEquipment")
	names := nameIndex(b.data)

	groups := map[string]*contingencyGroup{}
	var order []string
	for _, row := range equipmentRows.Rows {
		contingencyID, ok := row.Get("Contingency")
		if !ok {
			continue
		}
		if _, studied := mustStudy[contingencyID]; !studied {
			continue
		}
		if len(contingencyIDs) > 0 {
			if _, want := contingencyIDs[contingencyID]; !want {
				continue
			}
		}
		equipmentID, ok := row.Get("Equipment")
		if !ok {
			continue
		}
		g, seen := groups[contingencyID]
		if !seen {
			name := contingencyID
			if n, ok := names[contingencyID]; ok {
				name = n
			}
			g = &contingencyGroup{id: contingencyID, name: name, instanceID: row.InstanceID, rowIndex: row.RowIndex}
			groups[contingencyID] = g
			order = append(order, contingencyID)
		}
		g.equipment = append(g.equipment, equipmentID)
	}

	if len(order) == 0 && len(contingencyIDs) > 0 {
		b.warn(ctx, "", models.ErrMissingEquipment, "no contingencies found for the requested contingency ids")
	}

	for _, id := range order {
		g := groups[id]
		contingency := models.Contingency{
			ID:                 g.id,
			Name:               g.name,
			NetworkElementsIDs: g.equipment,
		}
		for _, elementID := range g.equipment {
			if _, known := b.netSubj[elementID]; !known {
				b.warn(ctx, elementID, models.ErrMissingEquipment, "contingency "+g.id+" references unknown network element")
			}
		}
		doc.Contingencies = append(doc.Contingencies, contingency)
	}
}

// nameIndex maps every subject to its first-observed name predicate value.
func nameIndex(v *triplestore.View) map[string]string {
	out := map[string]string{}
	for _, pair := range triplestore.PredicateView(v, "name") {
		if _, seen := out[pair.Subject]; !seen {
			out[pair.Subject] = pair.Object
		}
	}
	return out
}
