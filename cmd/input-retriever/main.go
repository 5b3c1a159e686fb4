// Command input-retriever archives and indexes incoming CO/AE/RA profile
// messages so the optimizer can later discover and fetch the latest one per
// scenario time (spec §4.5 step 3), wired the same way as the optimizer
// binary: flag/env config, double-signal shutdown, /healthz and /metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Baltic-RCC/RAO/internal/blobstore"
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
		fmt.Println("input-retriever – RAO virtual operator")
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

	reg := prometheus.NewRegistry()

	ctx, cancel := workercmd.WithSignalCancel(context.Background())
	defer cancel()

	workercmd.ServeHealthAndMetrics(ctx, cfg.HealthAddr, func() (bool, map[string]any) {
		return true, map[string]any{"queue": cfg.Broker.Queue}
	}, cfg.MetricsAddr, reg)

	err = ingest.Run(ctx, brokerClient, logger, func(ctx context.Context, msg broker.Message) error {
		return ingest.HandleProfile(ctx, msg, blobs, index)
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("input-retriever stopped: %v", err)
	}
}
