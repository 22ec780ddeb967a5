package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// SnapshotRefresher reloads and atomically swaps a cached dataset snapshot
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*entities.Dataset, error)
	Version() string
}

// DatasetRefreshService keeps the cached snapshot and the search index in
// step with the dataset source.
type DatasetRefreshService struct {
	store     SnapshotRefresher
	index     repositories.MedicationSearchRepository
	bus       providers.EventBus
	publisher string
}

// NewDatasetRefreshService creates a refresh service. index may be nil.
func NewDatasetRefreshService(store SnapshotRefresher, index repositories.MedicationSearchRepository) *DatasetRefreshService {
	return &DatasetRefreshService{store: store, index: index}
}

// WithEventBus announces every version change on bus and lets Follow pick up
// other replicas' announcements. publisher identifies this replica.
func (s *DatasetRefreshService) WithEventBus(bus providers.EventBus, publisher string) *DatasetRefreshService {
	s.bus = bus
	s.publisher = publisher
	return s
}

// Refresh reloads the snapshot and reindexes it. On failure the previous
// snapshot keeps serving.
func (s *DatasetRefreshService) Refresh(ctx context.Context) error {
	return s.refresh(ctx, true)
}

func (s *DatasetRefreshService) refresh(ctx context.Context, announce bool) error {
	logger := observability.LoggerFromContext(ctx)

	previous := s.store.Version()
	dataset, err := s.store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh dataset: %w", err)
	}
	logger.Info().
		Int("records", dataset.Len()).
		Str("version", dataset.Version).
		Str("source", dataset.Source).
		Msg("dataset refreshed")

	if s.index != nil {
		if err := s.index.Index(ctx, dataset); err != nil {
			return fmt.Errorf("failed to reindex medications: %w", err)
		}
		logger.Info().Int("records", dataset.Len()).Msg("medication index updated")
	}

	if announce && s.bus != nil && dataset.Version != previous {
		event := entities.NewDatasetEvent(dataset, s.publisher)
		if err := s.bus.Publish(ctx, entities.DatasetChannel, event); err != nil {
			logger.Warn().Err(err).Msg("failed to announce dataset refresh")
		}
	}
	return nil
}

// Follow refreshes whenever another replica announces a version this one
// does not serve yet. It returns once the subscription is established.
func (s *DatasetRefreshService) Follow(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	events, err := s.bus.Subscribe(ctx, entities.DatasetChannel)
	if err != nil {
		return fmt.Errorf("failed to follow dataset events: %w", err)
	}

	go func() {
		logger := observability.GetLogger()
		for event := range events {
			if event.Publisher == s.publisher || event.Version == s.store.Version() {
				continue
			}
			logger.Info().
				Str("version", event.Version).
				Str("publisher", event.Publisher).
				Msg("dataset changed on another replica")
			if err := s.refresh(ctx, false); err != nil {
				logger.Error().Err(err).Msg("dataset refresh after event failed")
			}
		}
	}()
	return nil
}

// StartPeriodicRefresh refreshes every interval until ctx is done
func (s *DatasetRefreshService) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	logger := observability.GetLogger()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("Stopping dataset refresh service")
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					logger.Error().Err(err).Msg("Periodic dataset refresh failed")
				}
			}
		}
	}()
	logger.Info().Dur("interval", interval).Msg("Started periodic dataset refresh")
}

// OnSourceChanged is the callback for the file watcher
func (s *DatasetRefreshService) OnSourceChanged(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("dataset reload after change failed")
	}
}
