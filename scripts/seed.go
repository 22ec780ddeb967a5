package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lib/pq"

	"github.com/mBrond/chat-medicamentos/internal/adapters/database"
	"github.com/mBrond/chat-medicamentos/internal/adapters/dataset"
	"github.com/mBrond/chat-medicamentos/internal/adapters/events"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/postgres"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/redis"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	"github.com/mBrond/chat-medicamentos/pkg/config"
)

// seed copies a CSV or XLSX medication table into Postgres so the API can
// run with DATASET_URI=postgres.
func main() {
	from := flag.String("from", "data/medicamentos.csv", "dataset file or URL to copy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	observability.InitLogger("medications-seed", cfg.Logging.Environment, cfg.Logging.Level)
	logger := observability.GetLogger()

	ctx := context.Background()

	fileCfg := *cfg
	fileCfg.Dataset = config.DatasetConfig{URI: *from, Sheet: cfg.Dataset.Sheet}
	kind, err := dataset.DetectKind(*from)
	if err != nil {
		log.Fatalf("Invalid source: %v", err)
	}
	if kind == dataset.KindPostgres {
		log.Fatalf("Source must be a file or URL, got %q", *from)
	}

	src, err := dataset.NewSource(&fileCfg)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *from, err)
	}
	ds, err := src.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *from, err)
	}

	pgClient, err := connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	adapter := database.NewMedicationAdapter(pgClient, cfg.Dataset.Table)
	table := cfg.Dataset.Table
	if strings.TrimSpace(table) == "" {
		table = database.DefaultMedicationTable
	}

	if os.Getenv("RESET_DB") == "true" {
		logger.Warn().Str("table", table).Msg("RESET_DB=true detected, dropping table before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, "DROP TABLE IF EXISTS "+pq.QuoteIdentifier(table)); err != nil {
			log.Fatalf("Failed to reset table: %v", err)
		}
	}

	if err := adapter.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}
	if err := adapter.Replace(ctx, ds); err != nil {
		log.Fatalf("Failed to seed medications: %v", err)
	}
	logger.Info().
		Str("source", ds.Source).
		Str("table", table).
		Int("records", ds.Len()).
		Str("version", ds.Version).
		Msg("medications seeded")

	if cfg.Dataset.Events && cfg.Redis.Enabled {
		if err := announce(ctx, cfg, ds); err != nil {
			logger.Warn().Err(err).Msg("seeded, but replicas were not notified")
		}
	}
}

func connect(cfg *config.Config) (*postgres.Client, error) {
	uri := strings.TrimSpace(cfg.Dataset.URI)
	if kind, err := dataset.DetectKind(uri); err == nil && kind == dataset.KindPostgres && !strings.EqualFold(uri, "postgres") {
		return postgres.NewClientFromDSN(uri)
	}
	return postgres.NewClient(&cfg.Database)
}

// announce tells running replicas that the table changed. Their Postgres
// source reads the new rows on the next refresh.
func announce(ctx context.Context, cfg *config.Config, ds *entities.Dataset) error {
	client, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	bus := events.NewRedisEventBus(client)
	defer bus.Close()

	if err := bus.Publish(ctx, entities.DatasetChannel, entities.NewDatasetEvent(ds, "seed")); err != nil {
		return fmt.Errorf("failed to announce seed: %w", err)
	}
	return nil
}
