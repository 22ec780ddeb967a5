package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// ResolutionService loads a dataset snapshot and runs a resolution policy on it
type ResolutionService struct {
	source   repositories.DatasetSource
	resolver *Resolver
	metrics  *observability.Metrics
}

// NewResolutionService creates a new resolution service
func NewResolutionService(
	source repositories.DatasetSource,
	resolver *Resolver,
	metrics *observability.Metrics,
) *ResolutionService {
	return &ResolutionService{
		source:   source,
		resolver: resolver,
		metrics:  metrics,
	}
}

// Resolve runs the policy for intent. The error is non-nil only when the
// dataset could not be loaded; NotFound is returned as a Resolution.
func (s *ResolutionService) Resolve(ctx context.Context, intent entities.Intent, query string) (entities.Resolution, error) {
	ctx, span := observability.StartSpan(ctx, "ResolutionService.Resolve")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("resolution.intent", string(intent)),
		attribute.String("resolution.query", query),
	)

	dataset, err := s.Load(ctx)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordResolution(ctx, s.metrics, string(intent), "error")
		return nil, err
	}

	result := s.resolver.Resolve(dataset, intent, query)
	outcome := Outcome(result)
	observability.SetSpanAttributes(span, attribute.String("resolution.outcome", outcome))
	observability.RecordResolution(ctx, s.metrics, string(intent), outcome)

	observability.LoggerFromContext(ctx).Debug().
		Str("intent", string(intent)).
		Str("query", query).
		Str("outcome", outcome).
		Str("dataset_version", dataset.Version).
		Msg("resolved query")

	return result, nil
}

// Load reads a dataset snapshot from the configured source
func (s *ResolutionService) Load(ctx context.Context) (*entities.Dataset, error) {
	start := time.Now()
	dataset, err := s.source.Load(ctx)
	observability.RecordDatasetLoad(ctx, s.metrics, sourceName(dataset), time.Since(start), err)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("dataset load failed")
		return nil, err
	}
	return dataset, nil
}

// DatasetVersion returns the version of the snapshot currently served when the
// source can report it without reloading.
func (s *ResolutionService) DatasetVersion() (string, bool) {
	versioned, ok := s.source.(repositories.VersionedSource)
	if !ok {
		return "", false
	}
	v := versioned.Version()
	return v, v != ""
}

// Outcome labels a resolution for metrics and logs
func Outcome(result entities.Resolution) string {
	switch r := result.(type) {
	case entities.CodeAnswer:
		return string(entities.MatchTypeExact)
	case entities.ResolvedAnswer:
		return string(r.MatchType)
	case entities.LocationAnswer:
		return string(r.MatchType)
	default:
		return "not_found"
	}
}

func sourceName(dataset *entities.Dataset) string {
	if dataset == nil {
		return "unknown"
	}
	return dataset.Source
}
