// Package crac assembles a Contingency and Remedial Action Constraints
// document from a CO+AE+RA triplestore view and a grid-model view (C4).
package crac

import (
	"context"
	"errors"

	"github.com/Baltic-RCC/RAO/internal/limits"
	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/telemetry/logging"
	"github.com/Baltic-RCC/RAO/internal/telemetry/metrics"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// Builder orchestrates contingency/CNEC/remedial-action assembly and limit
// updates against a fixed pair of views, held for the lifetime of one build.
type Builder struct {
	data    *triplestore.View
	network *triplestore.View
	limits  map[limits.Key]limits.Record
	netSubj map[string]struct{}
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewBuilder extracts limits from network eagerly: every Build call against
// the same Builder reuses the same join result. m may be nil to disable
// warning instrumentation.
func NewBuilder(data, network *triplestore.View, logger logging.Logger, m *metrics.Metrics) *Builder {
	if logger == nil {
		logger = logging.New(nil)
	}
	return &Builder{
		data:    data,
		network: network,
		limits:  limits.Extract(network),
		netSubj: allSubjects(network),
		logger:  logger,
		metrics: m,
	}
}

func allSubjects(v *triplestore.View) map[string]struct{} {
	out := map[string]struct{}{}
	for _, t := range v.Triples() {
		out[t.Subject] = struct{}{}
	}
	return out
}

// Build constructs one Crac document, restricted to contingencyIDs when
// non-empty. Nothing here raises on data defects; every data-quality issue
// becomes a warning tied to the offending entity, logged and discarded. The
// only errors returned are structural (ErrBadSource / ErrSchemaError),
// neither of which this function itself produces — they originate upstream
// in triplestore.Load and are expected to have already surfaced there.
func (b *Builder) Build(ctx context.Context, contingencyIDs map[string]struct{}) (*models.Crac, error) {
	doc := models.NewCrac("LS_unsecure", "LS_unsecure")

	b.processContingencies(ctx, doc, contingencyIDs)
	b.processCnecs(ctx, doc)
	b.processRemedialActions(ctx, doc)
	b.updateLimits(ctx, doc)
	consistencyPass(doc)

	return doc, nil
}

// typeView projects className from view, reporting every multi-valued
// predicate collision as a warning against the offending subject; the
// first-observed value is the one the returned table keeps.
func (b *Builder) typeView(ctx context.Context, view *triplestore.View, className string) triplestore.Table {
	table, collisions := triplestore.TypeView(view, className, false)
	for _, c := range collisions {
		b.warn(ctx, c.Subject, models.ErrAmbiguousPredicate, "multiple values for "+c.Predicate+" on "+className+", keeping first observed")
	}
	return table
}

func (b *Builder) warn(ctx context.Context, entityID string, kind error, detail string) {
	w := models.NewBuildWarning(entityID, kind, detail)
	b.logger.WarnCtx(ctx, w.Error())
	if b.metrics != nil {
		b.metrics.Warnings.WithLabelValues(warnLabel(kind)).Inc()
	}
}

func warnLabel(kind error) string {
	switch {
	case errors.Is(kind, models.ErrMissingEquipment):
		return "missing_equipment"
	case errors.Is(kind, models.ErrLimitNotFound):
		return "limit_not_found"
	case errors.Is(kind, models.ErrUnsupportedAction):
		return "unsupported_action"
	case errors.Is(kind, models.ErrAmbiguousPredicate):
		return "ambiguous_predicate"
	default:
		return "other"
	}
}
