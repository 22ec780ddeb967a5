package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	tsclient "github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/typesense"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// TypesenseAdapter implements medication suggestions using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements MedicationSearchRepository
var _ repositories.MedicationSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index rebuilds the collection from the dataset
func (a *TypesenseAdapter) Index(ctx context.Context, dataset *entities.Dataset) error {
	ctx, span := observability.StartSpan(ctx, "search.Index")
	defer span.End()

	if err := a.client.Recreate(ctx); err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("failed to recreate medications collection: %w", err)
	}

	docs := BuildDocuments(dataset)
	for _, doc := range docs {
		if err := a.client.Upsert(ctx, doc); err != nil {
			observability.RecordError(span, err)
			return fmt.Errorf("failed to index medication %v: %w", doc["name"], err)
		}
	}

	observability.LoggerFromContext(ctx).Info().
		Int("documents", len(docs)).
		Str("version", dataset.Version).
		Msg("medications indexed")
	return nil
}

// Suggest searches medication names with typo tolerance
func (a *TypesenseAdapter) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	ctx, span := observability.StartSpan(ctx, "search.Suggest")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,name_plain"),
		Page:    pointer.Int(1),
		PerPage: pointer.Int(limit * 2),
	}

	result, err := a.client.Client().Collection(tsclient.MedicationsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to search medications: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	docs := make([]map[string]interface{}, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		docs = append(docs, *hit.Document)
	}
	names := distinctNames(docs, limit)
	if names == nil {
		names = []string{}
	}
	return names, nil
}
