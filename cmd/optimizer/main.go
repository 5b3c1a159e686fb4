// Command optimizer runs the per-message CRAC build / solve / index loop
// (C6, spec §4.5) as a standalone worker binary, wired the way the
// teacher's cli/cmd/ariadne/main.go wires its engine: flag/env config,
// double-signal shutdown, /healthz and /metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Baltic-RCC/RAO/internal/blobstore"
	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/config"
	"github.com/Baltic-RCC/RAO/internal/crac"
	"github.com/Baltic-RCC/RAO/internal/metadataindex"
	"github.com/Baltic-RCC/RAO/internal/orchestrator"
	"github.com/Baltic-RCC/RAO/internal/parameters"
	"github.com/Baltic-RCC/RAO/internal/solver"
	"github.com/Baltic-RCC/RAO/internal/telemetry/logging"
	"github.com/Baltic-RCC/RAO/internal/telemetry/metrics"
	"github.com/Baltic-RCC/RAO/internal/workercmd"
)

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("optimizer – RAO virtual operator")
		return
	}

	cfg := config.NewWorkerConfig()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(slog.Default())

	brokerClient, err := broker.Dial(cfg.Broker.URL, cfg.Broker.Queue)
	if err != nil {
		log.Fatalf("broker dial: %v", err)
	}
	defer brokerClient.Close()

	tokens := blobstore.StaticTokenSource{AccessKey: cfg.BlobStore.AccessKey, SecretKey: cfg.BlobStore.SecretKey}
	blobs := blobstore.NewClient(cfg.BlobStore.Endpoint, cfg.BlobStore.UseSSL, tokens, cfg.BlobStore.TokenRenewMargin)

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.MetadataIndex.Addresses})
	if err != nil {
		log.Fatalf("elasticsearch client: %v", err)
	}
	index := metadataindex.NewClient(esClient)

	paramMgr := parameters.NewManager(cfg.Parameters.BasePath, cfg.Parameters.OverrideEnvVar)

	sv := solver.NewHTTPClient(cfg.SolverEndpoint)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	orch := orchestrator.New(brokerClient, blobs, index, sv, paramMgr, logger, m)
	orch.ResolverVersion = cfg.Parameters.ResolverVersion
	orch.ResultsIndex = cfg.MetadataIndex.IndexName
	orch.Bucket = cfg.BlobStore.Bucket
	orch.CurrentViolationsOnly = cfg.CurrentViolationsOnly
	if cfg.CnecFilter.NamePattern != "" && cfg.CnecFilter.OperatorID != "" {
		orch.Filter = crac.CnecNameOperatorFilter(cfg.CnecFilter.NamePattern, cfg.CnecFilter.OperatorID)
	}

	ctx, cancel := workercmd.WithSignalCancel(context.Background())
	defer cancel()

	healthy := true
	workercmd.ServeHealthAndMetrics(ctx, cfg.HealthAddr, func() (bool, map[string]any) {
		return healthy, map[string]any{"queue": cfg.Broker.Queue}
	}, cfg.MetricsAddr, reg)

	if err := orch.Run(ctx); err != nil && ctx.Err() == nil {
		healthy = false
		log.Printf("orchestrator stopped: %v", err)
		os.Exit(1)
	}
}
