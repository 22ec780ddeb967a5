package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	"github.com/mBrond/chat-medicamentos/pkg/config"
	"github.com/mBrond/chat-medicamentos/pkg/retry"
)

const (
	MedicationsCollection = "medications"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	logger := observability.GetLogger()
	err := retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Typesense connection attempt failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	logger.Info().Str("url", cfg.URL).Msg("Successfully connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// MedicationsSchema is the collection layout used for suggestions
func MedicationsSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: MedicationsCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name: "name",
				Type: "string",
			},
			{
				Name: "name_plain",
				Type: "string",
			},
			{
				Name:     "codes",
				Type:     "string[]",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:     "locations",
				Type:     "string[]",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name: "row",
				Type: "int32",
			},
		},
		DefaultSortingField: pointer.String("row"),
	}
}

// InitSchema ensures the medications collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	logger := observability.LoggerFromContext(ctx)

	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}
	for _, col := range collections {
		if col.Name == MedicationsCollection {
			logger.Debug().Str("collection", MedicationsCollection).Msg("Typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, MedicationsSchema()); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	logger.Info().Str("collection", MedicationsCollection).Msg("Created Typesense collection")
	return nil
}

// Recreate drops the medications collection, if present, and creates it empty
func (c *Client) Recreate(ctx context.Context) error {
	if _, err := c.client.Collection(MedicationsCollection).Delete(ctx); err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("Typesense collection not dropped")
	}
	return c.InitSchema(ctx)
}

// Upsert indexes one medication document
func (c *Client) Upsert(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(MedicationsCollection).Documents().Upsert(ctx, document)
	return err
}
