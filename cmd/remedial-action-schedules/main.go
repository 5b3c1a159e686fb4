// Command remedial-action-schedules indexes RemedialActionSchedule rows so
// operators can query RA availability windows independently of the
// optimizer's per-contingency CRAC build (spec §4.5, original_source's
// remedial_action_schedules worker).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/config"
	"github.com/Baltic-RCC/RAO/internal/ingest"
	"github.com/Baltic-RCC/RAO/internal/metadataindex"
	"github.com/Baltic-RCC/RAO/internal/telemetry/logging"
	"github.com/Baltic-RCC/RAO/internal/workercmd"
)

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("remedial-action-schedules – RAO virtual operator")
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

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.MetadataIndex.Addresses})
	if err != nil {
		log.Fatalf("elasticsearch client: %v", err)
	}
	index := metadataindex.NewClient(esClient)

	reg := prometheus.NewRegistry()

	ctx, cancel := workercmd.WithSignalCancel(context.Background())
	defer cancel()

	workercmd.ServeHealthAndMetrics(ctx, cfg.HealthAddr, func() (bool, map[string]any) {
		return true, map[string]any{"queue": cfg.Broker.Queue}
	}, cfg.MetricsAddr, reg)

	err = ingest.Run(ctx, brokerClient, logger, func(ctx context.Context, msg broker.Message) error {
		return ingest.HandleSchedule(ctx, msg, index)
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("remedial-action-schedules stopped: %v", err)
	}
}
