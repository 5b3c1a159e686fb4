package crac

import (
	"context"

	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// processCnecs implements spec §4.3.3. It must run after processContingencies:
// every contingency already present in doc gets one curative CNEC per
// AssessedElement that survives the preventive/curative eligibility checks.
func (b *Builder) processCnecs(ctx context.Context, doc *models.Crac) {
	elements := b.typeView(ctx, b.data, "AssessedElement")

	for _, row := range elements.Rows {
		mrid := row.Subject
		name := stringOr(row, "name", mrid)

		equipmentID, ok := row.Get("ConductingEquipment")
		if !ok {
			continue
		}
		if _, known := b.netSubj[equipmentID]; !known {
			b.warn(ctx, mrid, models.ErrMissingEquipment, "assessed element "+name+" does not exist in network model")
			continue
		}
		if !row.GetBool("normalEnabled") {
			b.warn(ctx, mrid, models.ErrMissingEquipment, "assessed element "+name+" excluded: normalEnabled is false or missing")
			continue
		}

		description, _ := row.Get("description")
		operator, _ := row.Get("AssessedSystemOperator")
		optimized := truthy(row, "SecuredForRegion")
		monitored := truthy(row, "ScannedForRegion")
		inBaseCase := row.GetBool("inBaseCase")

		cnec := models.FlowCnec{
			Name:             name,
			Description:      description,
			NetworkElementID: equipmentID,
			Operator:         operator,
			Optimized:        optimized,
			Monitored:        monitored,
			NominalV:         []float64{models.DefaultNominalV},
		}

		if inBaseCase {
			preventive := cnec
			preventive.ID = mrid + "-preventive"
			preventive.Instant = models.InstantPreventive
			preventive.Thresholds = []models.Threshold{models.DefaultThreshold()}
			doc.FlowCnecs = append(doc.FlowCnecs, preventive)
		}

		for _, contingency := range doc.Contingencies {
			contingencyID := contingency.ID
			curative := cnec
			curative.ID = mrid + "-curative"
			curative.Instant = models.InstantCurative
			curative.ContingencyID = &contingencyID
			curative.Thresholds = []models.Threshold{models.DefaultThreshold()}
			doc.FlowCnecs = append(doc.FlowCnecs, curative)
		}
	}
}

// truthy interprets a cell the way the source system treats its "secured
// for region" / "scanned for region" flags: present and non-empty, not
// specifically the literal "true" (those predicates carry a region id, not
// a boolean).
func truthy(row triplestore.Row, predicate string) bool {
	v, ok := row.Get(predicate)
	return ok && v != "" && v != "false"
}

func stringOr(row triplestore.Row, predicate, fallback string) string {
	if v, ok := row.Get(predicate); ok && v != "" {
		return v
	}
	return fallback
}
