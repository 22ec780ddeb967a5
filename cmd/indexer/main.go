package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mBrond/chat-medicamentos/internal/adapters/dataset"
	"github.com/mBrond/chat-medicamentos/internal/adapters/search"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/typesense"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	"github.com/mBrond/chat-medicamentos/pkg/config"
)

func main() {
	var intervalFlag string
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogger("medications-indexer", cfg.Logging.Environment, cfg.Logging.Level)
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg); err != nil {
			logger.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		logger.Info().Dur("next_run_in", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			logger.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// indexOnce reads the dataset fresh from its source and rebuilds the
// medications collection.
func indexOnce(ctx context.Context, cfg *config.Config) error {
	src, err := dataset.NewSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	ds, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	return search.NewTypesenseAdapter(tsClient).Index(ctx, ds)
}
