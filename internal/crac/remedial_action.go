package crac

import (
	"context"

	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// raAlteration is one GridStateAlteration resolved against its concrete
// type row and first StaticPropertyRange.
type raAlteration struct {
	id             string // GridStateAlteration subject
	alterationType string // concrete rdf:type of the alteration
	direction      string // RangeConstraint.direction suffix, "" when no range
	normalValue    float64
	elementID      string
}

type raGroup struct {
	id          string
	name        string
	operator    string
	kindSuffix  string
	alterations []raAlteration
}

// processRemedialActions implements spec §4.3.4.
func (b *Builder) processRemedialActions(ctx context.Context, doc *models.Crac) {
	raRows := b.typeView(ctx, b.data, "GridStateAlterationRemedialAction")

	// PredicateView returns pairs in stable (instance-id, row-index) order;
	// iterating it directly (rather than building a map first) keeps
	// alteration processing order deterministic, which Build()'s
	// byte-identical-repeat-build contract depends on.
	alterationLinks := triplestore.PredicateView(b.data, "GridStateAlterationRemedialAction")

	ranges := b.typeView(ctx, b.data, "StaticPropertyRange")
	rangeByAlteration := map[string]triplestore.Row{}
	for _, r := range ranges.Rows {
		alterationID, ok := r.Get("GridStateAlteration")
		if !ok {
			continue
		}
		// First StaticPropertyRange wins when multiple exist: first-observed
		// in the stable (instance-id, subject) row order, documented
		// limitation.
		if _, seen := rangeByAlteration[alterationID]; !seen {
			rangeByAlteration[alterationID] = r
		}
	}

	topology := b.typeView(ctx, b.data, "TopologyAction")
	topologyByID := map[string]triplestore.Row{}
	for _, r := range topology.Rows {
		topologyByID[r.Subject] = r
	}
	shunts := b.typeView(ctx, b.data, "ShuntCompensatorModification")
	shuntByID := map[string]triplestore.Row{}
	for _, r := range shunts.Rows {
		shuntByID[r.Subject] = r
	}

	groups := map[string]*raGroup{}
	var order []string
	for _, ra := range raRows.Rows {
		groups[ra.Subject] = &raGroup{
			id:         ra.Subject,
			name:       stringOr(ra, "name", ra.Subject),
			operator:   stringOr(ra, "RemedialActionSystemOperator", ""),
			kindSuffix: kindSuffix(ra),
		}
		order = append(order, ra.Subject)
	}

	for _, link := range alterationLinks {
		alterationSubject, raID := link.Subject, link.Object
		g, ok := groups[raID]
		if !ok {
			continue
		}
		alterationType, elementID := b.classifyAlteration(alterationSubject, topologyByID, shuntByID)
		if alterationType == "" {
			b.warn(ctx, alterationSubject, models.ErrUnsupportedAction, "grid state alteration type is unknown or not supported")
			continue
		}
		normalValue := 0.0
		direction := ""
		if rangeRow, ok := rangeByAlteration[alterationSubject]; ok {
			if v, ok := rangeRow.GetNumeric("normalValue"); ok {
				normalValue = v
			}
			if d, ok := rangeRow.Get("direction"); ok {
				direction = lastSegment(d)
			}
		} else {
			b.warn(ctx, alterationSubject, models.ErrMissingEquipment, "no property range for alteration; using default normal value 0")
		}
		g.alterations = append(g.alterations, raAlteration{
			id:             alterationSubject,
			alterationType: alterationType,
			direction:      direction,
			normalValue:    normalValue,
			elementID:      elementID,
		})
	}

	for _, id := range order {
		b.buildNetworkAction(ctx, doc, groups[id])
	}
}

func kindSuffix(ra triplestore.Row) string {
	if kind, ok := ra.Get("kind"); ok {
		return lastSegment(kind)
	}
	return models.InstantPreventive
}

// lastSegment returns the suffix of a CIM enumeration URI: the part after
// the final '#', '/' or '.'.
func lastSegment(uri string) string {
	last := uri
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '#' || uri[i] == '/' || uri[i] == '.' {
			last = uri[i+1:]
			break
		}
	}
	return last
}

// classifyAlteration resolves the concrete dispatch target (element id) and
// type name for one GridStateAlteration subject.
func (b *Builder) classifyAlteration(subject string, topologyByID, shuntByID map[string]triplestore.Row) (alterationType, elementID string) {
	if row, ok := topologyByID[subject]; ok {
		elementID, _ = row.Get("Equipment")
		return "TopologyAction", elementID
	}
	if row, ok := shuntByID[subject]; ok {
		elementID, _ = row.Get("ShuntCompensator")
		return "ShuntCompensatorModification", elementID
	}
	return "", ""
}

// buildNetworkAction implements steps 1-6 of spec §4.3.4 for one RA group.
func (b *Builder) buildNetworkAction(ctx context.Context, doc *models.Crac, g *raGroup) {
	if len(g.alterations) == 0 {
		return
	}

	directions := map[string]struct{}{}
	for _, a := range g.alterations {
		if a.direction != "" {
			directions[a.direction] = struct{}{}
		}
	}
	if len(directions) > 1 {
		b.warn(ctx, g.id, models.ErrUnsupportedAction, "remedial action mixes distinct property range directions, ignoring remedial action")
		return
	}
	var direction string
	for d := range directions {
		direction = d
	}

	activationCost := 0.0
	var terminalsActions []models.TerminalsAction
	var shuntActions []models.ShuntCompensatorPositionAction

	for _, a := range g.alterations {
		if _, known := b.netSubj[a.elementID]; !known {
			b.warn(ctx, a.elementID, models.ErrMissingEquipment, "alteration equipment of remedial action "+g.id+" does not exist in network model")
			continue
		}
		switch a.alterationType {
		case "TopologyAction":
			terminalsActions = append(terminalsActions, models.TerminalsAction{
				NetworkElementID: a.elementID,
				ActionType:       models.ActionTypeFromNormalValue(a.normalValue),
			})
			// Non-reserve topology actions cost more than reserve ones;
			// direction "up" is treated like "none" until RA directions are
			// semantically aligned upstream.
			if direction == "none" || direction == "up" {
				activationCost = 50
			}
		case "ShuntCompensatorModification":
			shuntActions = append(shuntActions, models.ShuntCompensatorPositionAction{
				NetworkElementID: a.elementID,
				SectionCount:     int(a.normalValue),
			})
		default:
			b.warn(ctx, a.id, models.ErrUnsupportedAction, "grid state alteration type is not supported: "+a.alterationType)
		}
	}

	if len(terminalsActions) == 0 && len(shuntActions) == 0 {
		b.warn(ctx, g.id, models.ErrUnsupportedAction, "no actions available for remedial action")
		return
	}

	doc.NetworkActions = append(doc.NetworkActions, models.NetworkAction{
		ID:             g.id,
		Name:           g.name,
		Operator:       g.operator,
		ActivationCost: activationCost,
		OnInstantUsageRules: []models.UsageRule{
			{UsageMethod: "available", Instant: g.kindSuffix},
		},
		TerminalsConnectionActions:      terminalsActions,
		ShuntCompensatorPositionActions: shuntActions,
	})

	if direction == "upAndDown" && len(terminalsActions) > 0 {
		inverted := make([]models.TerminalsAction, len(terminalsActions))
		for i, t := range terminalsActions {
			inverted[i] = t.Opposite()
		}
		doc.NetworkActions = append(doc.NetworkActions, models.NetworkAction{
			ID:             g.id + "-opposite-direction",
			Name:           g.name,
			Operator:       g.operator,
			ActivationCost: activationCost,
			OnInstantUsageRules: []models.UsageRule{
				{UsageMethod: "available", Instant: g.kindSuffix},
			},
			TerminalsConnectionActions: inverted,
		})
	}
}
