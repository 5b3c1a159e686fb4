// Package orchestrator runs the per-message pipeline (C6): parse headers,
// filter SAR violations, fetch CO/AE/RA profiles and the network model,
// build+upload+solve+post-process per contingency, acknowledge.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Baltic-RCC/RAO/internal/blobstore"
	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/crac"
	"github.com/Baltic-RCC/RAO/internal/metadataindex"
	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/parameters"
	"github.com/Baltic-RCC/RAO/internal/solver"
	"github.com/Baltic-RCC/RAO/internal/telemetry/logging"
	"github.com/Baltic-RCC/RAO/internal/telemetry/metrics"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// resultsNamespace seeds the UUIDv5 document ids bulk-indexed per result row.
var resultsNamespace = uuid.MustParse("5c1f9e0a-6b7c-4e1b-9b3a-8f2a6c0d1e2f")

// Orchestrator wires the broker, blob store, metadata index, solver,
// parameter resolver and builder construction into the six-step loop of
// spec §4.5. One instance serves one worker process.
type Orchestrator struct {
	Broker          broker.Broker
	Blobs           blobstore.Store
	Index           metadataindex.Index
	Solver          solver.Solver
	Parameters      *parameters.Manager
	ResolverVersion string
	ResultsIndex    string
	Bucket          string
	Filter          models.OperatorFilter

	CurrentViolationsOnly bool

	Logger  logging.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer

	cfgMu sync.RWMutex
	cfg   *parameters.Config
}

// New returns an Orchestrator with a default tracer drawn from the global
// otel provider, matching the teacher's habit of pulling a named tracer at
// construction rather than threading a provider through every call.
func New(b broker.Broker, blobs blobstore.Store, index metadataindex.Index, sv solver.Solver, params *parameters.Manager, logger logging.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		Broker:          b,
		Blobs:           blobs,
		Index:           index,
		Solver:          sv,
		Parameters:      params,
		ResolverVersion: "v1",
		ResultsIndex:    "rao-results",
		Bucket:          "rao",
		Logger:          logger,
		Metrics:         m,
		Tracer:          otel.Tracer("github.com/Baltic-RCC/RAO/internal/orchestrator"),
	}
}

// Run consumes messages until ctx is cancelled, processing each to
// completion before pulling the next (spec §5's single-threaded cooperative
// scheduling model). It also starts a background watch on the parameter
// override file so a resolver-config edit takes effect without restarting
// the worker.
func (o *Orchestrator) Run(ctx context.Context) error {
	if cfg, err := o.Parameters.Load(o.ResolverVersion); err == nil {
		o.setConfig(cfg)
	} else {
		o.Logger.WarnCtx(ctx, "initial parameter load failed", "error", err.Error())
	}
	go o.watchParameters(ctx)

	deliveries, err := o.Broker.Consume(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			o.handle(ctx, msg)
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, msg broker.Message) {
	ctx, span := o.Tracer.Start(ctx, "orchestrator.handle")
	defer span.End()

	outcome := "ack"
	defer func() {
		if o.Metrics != nil {
			o.Metrics.MessagesProcessed.WithLabelValues(outcome).Inc()
		}
	}()

	sar, err := o.loadSAR(ctx, msg)
	if err != nil {
		o.terminal(ctx, msg, err, &outcome)
		return
	}

	violations := filterViolations(sar, o.CurrentViolationsOnly)
	if len(violations) == 0 {
		o.ack(ctx, msg, &outcome)
		return
	}

	inputs, err := o.fetchInputs(ctx, msg)
	if err != nil {
		o.terminal(ctx, msg, err, &outcome)
		return
	}

	builder := crac.NewBuilder(inputs.data, inputs.network, o.Logger, o.Metrics)
	params := o.resolveParameters(ctx, msg)

	for _, v := range violations {
		if err := o.processContingency(ctx, msg, builder, params, inputs.networkBody, v); err != nil {
			o.Logger.WarnCtx(ctx, "contingency processing failed", "contingency", v.ContingencyID, "error", err.Error())
			o.terminal(ctx, msg, err, &outcome)
			return
		}
	}

	o.ack(ctx, msg, &outcome)
}

func (o *Orchestrator) processContingency(ctx context.Context, msg broker.Message, builder *crac.Builder, params, networkBody []byte, v violatedContingency) error {
	ctx, span := o.Tracer.Start(ctx, "orchestrator.build_contingency")
	defer span.End()

	doc, err := builder.Build(ctx, map[string]struct{}{v.ContingencyID: {}})
	if err != nil {
		if o.Metrics != nil {
			o.Metrics.CracBuilds.WithLabelValues("error").Inc()
		}
		return err
	}
	if o.Metrics != nil {
		o.Metrics.CracBuilds.WithLabelValues("success").Inc()
	}

	payload, err := doc.Serialize(o.Filter)
	if err != nil {
		return fmt.Errorf("%w: serialize crac: %v", models.ErrSchemaError, err)
	}

	scenarioTime, err := time.Parse(time.RFC3339, msg.ScenarioTime)
	if err != nil {
		scenarioTime = time.Now().UTC()
	}
	key := blobstore.CracObjectKey(msg.TimeHorizon, scenarioTime, v.ContingencyID)
	if err := o.Blobs.Upload(ctx, o.Bucket, key, payload, map[string]string{"content_reference": msg.ContentReference}); err != nil {
		return err
	}

	result, err := o.invokeSolver(ctx, networkBody, payload, params, msg.TimeHorizon)
	if err != nil {
		return err
	}
	if o.Metrics != nil {
		o.Metrics.ContingenciesSeen.Inc()
	}

	if len(result.FlowCnecResults) == 0 && len(result.AngleCnecResults) == 0 && len(result.VoltageCnecResults) == 0 {
		o.Logger.WarnCtx(ctx, "solver returned no results", "contingency", v.ContingencyID)
		return nil
	}

	rows := postProcess(result, headerMap(msg))
	return o.indexResults(ctx, v.ContingencyID, rows)
}

func (o *Orchestrator) invokeSolver(ctx context.Context, network, cracPayload, params []byte, timeHorizon string) (solver.Result, error) {
	start := time.Now()
	result, err := o.Solver.Invoke(ctx, network, cracPayload, params)
	if o.Metrics != nil {
		o.Metrics.SolverLatency.WithLabelValues(timeHorizon).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return solver.Result{}, fmt.Errorf("%w: solver invoke: %v", models.ErrTransientIO, err)
	}
	return result, nil
}

func (o *Orchestrator) indexResults(ctx context.Context, contingencyID string, rows []resultRow) error {
	docs := make([]metadataindex.Document, 0, len(rows))
	for i, r := range rows {
		id := metadataindex.DocID(resultsNamespace, contingencyID, r.CnecResultsType, r.CnecID, r.Instant, fmt.Sprint(i))
		docs = append(docs, metadataindex.Document{ID: id, Source: resultSource(r)})
	}
	return o.Index.Bulk(ctx, o.ResultsIndex, docs)
}

func resultSource(r resultRow) map[string]any {
	return map[string]any{
		"cnecResultsType": r.CnecResultsType,
		"cnecId":          r.CnecID,
		"contingencyId":   r.ContingencyID,
		"instant":         r.Instant,
		"values":          r.Values,
		"activated":       r.Activated,
		"setPoint":        r.SetPoint,
		"rmq":             r.RMQ,
	}
}

func headerMap(msg broker.Message) map[string]string {
	return map[string]string{
		broker.HeaderScenarioTime:     msg.ScenarioTime,
		broker.HeaderContentReference: msg.ContentReference,
		broker.HeaderTimeHorizon:      msg.TimeHorizon,
		broker.HeaderProjectName:      msg.ProjectName,
		broker.HeaderMessageID:        msg.MessageID,
	}
}

func (o *Orchestrator) loadSAR(ctx context.Context, msg broker.Message) (*triplestore.View, error) {
	return triplestore.Load([]triplestore.Source{{Name: "sar-" + msg.ContentReference, Reader: bytes.NewReader(msg.Body)}})
}

// messageInputs bundles everything fetched once per message: the CO/AE/RA
// profile view, the boundary-stripped network view, and the raw network
// bytes handed to the solver.
type messageInputs struct {
	data        *triplestore.View
	network     *triplestore.View
	networkBody []byte
}

// fetchInputs retrieves the latest CO/AE/RA profiles for the message's
// scenario-time from the metadata index + blob store, and the network model
// by content-reference, then parses them into triplestore views (spec §4.5
// steps 3-4).
func (o *Orchestrator) fetchInputs(ctx context.Context, msg broker.Message) (*messageInputs, error) {
	ctx, span := o.Tracer.Start(ctx, "orchestrator.fetch_inputs")
	defer span.End()

	profileKeys, err := o.latestProfileKeys(ctx, msg.ScenarioTime)
	if err != nil {
		return nil, err
	}

	var dataSources []triplestore.Source
	for _, key := range profileKeys {
		body, err := o.Blobs.Download(ctx, o.Bucket, key)
		if err != nil {
			return nil, err
		}
		dataSources = append(dataSources, triplestore.Source{Name: key, Reader: bytes.NewReader(body)})
	}
	data, err := triplestore.Load(dataSources)
	if err != nil {
		return nil, err
	}

	networkBody, err := o.Blobs.Download(ctx, o.Bucket, networkModelKey(msg.ContentReference))
	if err != nil {
		return nil, err
	}
	rawNetwork, err := triplestore.Load([]triplestore.Source{{Name: networkModelKey(msg.ContentReference), Reader: bytes.NewReader(networkBody)}})
	if err != nil {
		return nil, err
	}
	return &messageInputs{
		data:        data,
		network:     triplestore.ExcludeBoundary(rawNetwork),
		networkBody: networkBody,
	}, nil
}

// latestProfileKeys queries the metadata index, once per CO/AE/RA profile
// type, for a profile document whose scenarioTime equals scenarioTime
// exactly (a term match) and returns the object keys found. Profiles
// indexed under any other scenario time are not found.
func (o *Orchestrator) latestProfileKeys(ctx context.Context, scenarioTime string) ([]string, error) {
	var keys []string
	for _, profileType := range []string{"CO", "AE", "RA"} {
		docs, err := o.Index.Search(ctx, "rao-profiles", []metadataindex.Clause{
			{Field: "profileType", Value: profileType},
			{Field: "scenarioTime", Value: scenarioTime},
		}, 1, []metadataindex.Sort{{Field: "scenarioTime", Desc: true}})
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			continue
		}
		if key, ok := docs[0].Source["objectKey"].(string); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (o *Orchestrator) resolveParameters(ctx context.Context, msg broker.Message) []byte {
	cfg := o.currentConfig()
	if cfg == nil {
		loaded, err := o.Parameters.Load(o.ResolverVersion)
		if err != nil {
			o.Logger.WarnCtx(ctx, "parameter load failed, proceeding with empty parameters", "error", err.Error())
			return nil
		}
		cfg = loaded
		o.setConfig(cfg)
	}
	if msg.TimeHorizon == "ID" {
		cfg = cfg.WithEphemeral(map[string]any{"timeHorizon": "ID"})
	}
	emitted, err := cfg.Emit()
	if err != nil {
		o.Logger.WarnCtx(ctx, "parameter emit failed, proceeding with empty parameters", "error", err.Error())
		return nil
	}
	return emitted
}

func (o *Orchestrator) currentConfig() *parameters.Config {
	o.cfgMu.RLock()
	defer o.cfgMu.RUnlock()
	return o.cfg
}

func (o *Orchestrator) setConfig(cfg *parameters.Config) {
	o.cfgMu.Lock()
	defer o.cfgMu.Unlock()
	o.cfg = cfg
}

// watchParameters applies every hot-reloaded Config the Manager observes on
// the override file until ctx is cancelled.
func (o *Orchestrator) watchParameters(ctx context.Context) {
	changes, errs := o.Parameters.Watch(ctx, o.ResolverVersion)
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-changes:
			if !ok {
				changes = nil
				if errs == nil {
					return
				}
				continue
			}
			o.setConfig(cfg)
			o.Logger.InfoCtx(ctx, "parameter override reloaded", "version", cfg.Version())
		case err, ok := <-errs:
			if !ok {
				errs = nil
				if changes == nil {
					return
				}
				continue
			}
			o.Logger.WarnCtx(ctx, "parameter watch error", "error", err.Error())
		}
	}
}

func networkModelKey(contentReference string) string {
	return fmt.Sprintf("RAO/NETWORK_%s.xml", contentReference)
}

func isTransient(err error) bool {
	return errors.Is(err, models.ErrTransientIO) || errors.Is(err, models.ErrTokenExpired)
}

func (o *Orchestrator) terminal(ctx context.Context, msg broker.Message, err error, outcome *string) {
	if isTransient(err) {
		o.requeue(ctx, msg, outcome)
		return
	}
	*outcome = "dead_letter"
	o.Logger.ErrorCtx(ctx, "message dead-lettered", "error", err.Error())
	if nackErr := o.Broker.NackDiscard(msg); nackErr != nil {
		o.Logger.ErrorCtx(ctx, "nack-discard failed", "error", nackErr.Error())
	}
}

func (o *Orchestrator) requeue(ctx context.Context, msg broker.Message, outcome *string) {
	*outcome = "requeue"
	if err := o.Broker.NackRequeue(msg); err != nil {
		o.Logger.ErrorCtx(ctx, "nack-requeue failed", "error", err.Error())
	}
}

func (o *Orchestrator) ack(ctx context.Context, msg broker.Message, outcome *string) {
	*outcome = "ack"
	if err := o.Broker.Ack(msg); err != nil {
		o.Logger.ErrorCtx(ctx, "ack failed", "error", err.Error())
	}
}
