// Package app wires configuration into the adapters and services shared by
// the HTTP server, the indexer and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/mBrond/chat-medicamentos/internal/adapters/cache"
	"github.com/mBrond/chat-medicamentos/internal/adapters/dataset"
	"github.com/mBrond/chat-medicamentos/internal/adapters/directory"
	"github.com/mBrond/chat-medicamentos/internal/adapters/events"
	"github.com/mBrond/chat-medicamentos/internal/adapters/providers/geolocation"
	"github.com/mBrond/chat-medicamentos/internal/adapters/search"
	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/redis"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/typesense"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
	"github.com/mBrond/chat-medicamentos/pkg/config"
)

// CacheKeyPrefix namespaces every key this service writes to redis
const CacheKeyPrefix = "medlookup:"

// App holds the wired components. Optional backends are nil when disabled
// or unreachable.
type App struct {
	Config  *config.Config
	Metrics *observability.Metrics

	Source    *dataset.Source
	Directory *directory.JSONDirectory // nil when Options.SkipDirectory is set
	Cache     providers.CacheProvider
	Index     repositories.MedicationSearchRepository
	Events    providers.EventBus

	Matcher     *services.RecordMatcher
	Resolution  *services.ResolutionService
	Chat        *services.ChatService
	Suggestions *services.SuggestionService
	Refresh     *services.DatasetRefreshService // set when the dataset is served from a snapshot

	closers []func() error
}

// Options selects which optional backends New connects to
type Options struct {
	// SkipDirectory leaves Directory unset; location queries then find no
	// facility on the map.
	SkipDirectory bool
}

// New opens the dataset source and connects the optional backends. Redis
// and Typesense failures are logged and the service runs without them.
func New(cfg *config.Config, metrics *observability.Metrics, opts Options) (*App, error) {
	logger := observability.GetLogger()

	src, err := dataset.NewSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset source: %w", err)
	}

	a := &App{
		Config:  cfg,
		Metrics: metrics,
		Source:  src,
	}
	a.closers = append(a.closers, src.Close)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, running without cache")
			redisClient = nil
		} else {
			a.Cache = cache.NewRedisAdapter(redisClient, CacheKeyPrefix)
			a.closers = append(a.closers, redisClient.Close)
		}
	}

	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			logger.Warn().Err(err).Msg("Typesense unavailable, suggestions served locally")
		} else {
			a.Index = search.NewTypesenseAdapter(tsClient)
		}
	}

	translator := directory.NewStaticTranslator(directory.DefaultVocabulary())
	a.Matcher = services.NewRecordMatcher(cfg.Matching.Threshold)
	a.Resolution = services.NewResolutionService(src, services.NewResolver(a.Matcher, translator), metrics)
	a.Suggestions = services.NewSuggestionService(a.Resolution, a.Matcher, a.Index)

	if src.Store != nil {
		a.Refresh = services.NewDatasetRefreshService(src.Store, a.Index)
		if cfg.Dataset.Events {
			if redisClient == nil {
				logger.Warn().Msg("DATASET_EVENTS needs Redis; replicas will not be notified")
			} else {
				bus := events.NewRedisEventBus(redisClient)
				a.Events = bus
				a.closers = append(a.closers, bus.Close)
				a.Refresh.WithEventBus(bus, replicaID())
			}
		}
	}

	dir := directory.EmptyDirectory()
	if !opts.SkipDirectory {
		dir, err = directory.LoadJSONDirectory(cfg.Directory.Path, a.geocoder())
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Directory = dir
		logger.Info().Int("facilities", dir.Len()).Str("path", cfg.Directory.Path).Msg("facility directory loaded")
	}
	a.Chat = services.NewChatService(a.Resolution, services.NewMapBuilder(dir), a.Cache, cfg.Cache.AnswerTTL, metrics)

	return a, nil
}

func replicaID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "medlookup"
	}
	return host + "-" + uuid.NewString()[:8]
}

func (a *App) geocoder() providers.GeolocationProvider {
	if !a.Config.Directory.Geocode {
		return nil
	}
	if a.Config.Geolocation.Provider == "google" {
		if a.Config.Geolocation.APIKey != "" {
			return geolocation.NewGoogleGeolocationProvider(a.Config.Geolocation.APIKey, a.Cache)
		}
		observability.GetLogger().Warn().Msg("GEOLOCATION_API_KEY is not set; using mock geolocation provider")
	}
	return geolocation.NewMockGeolocationProvider()
}

// CodeBounds returns the configured diagnosis code length bounds
func (a *App) CodeBounds() services.CodeBounds {
	return services.CodeBounds{Min: a.Config.Matching.CodeMinLength, Max: a.Config.Matching.CodeMaxLength}
}

// Version reports the dataset version currently served, empty when the
// source is re-read on every query.
func (a *App) Version() string {
	v, _ := a.Resolution.DatasetVersion()
	return v
}

// StartReload starts the periodic refresh, the event follower and the file
// watcher requested by the configuration. The returned function stops the
// watcher.
func (a *App) StartReload(ctx context.Context) (func(), error) {
	if a.Refresh == nil {
		return func() {}, nil
	}
	logger := observability.GetLogger()

	a.Refresh.StartPeriodicRefresh(ctx, a.Config.Dataset.ReloadInterval)
	if err := a.Refresh.Follow(ctx); err != nil {
		logger.Warn().Err(err).Msg("not following dataset events")
	}

	if !a.Config.Dataset.Watch {
		return func() {}, nil
	}
	if a.Source.LocalPath == "" {
		logger.Warn().Str("kind", string(a.Source.Kind)).Msg("DATASET_WATCH only applies to local files")
		return func() {}, nil
	}

	watcher, err := dataset.NewFileWatcher(a.Source.LocalPath, dataset.DefaultDebounce)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset watcher: %w", err)
	}
	if err := watcher.Watch(func() { a.Refresh.OnSourceChanged(ctx) }); err != nil {
		_ = watcher.Stop()
		return nil, fmt.Errorf("failed to watch %s: %w", a.Source.LocalPath, err)
	}
	logger.Info().Str("path", a.Source.LocalPath).Msg("watching dataset for changes")

	return func() { _ = watcher.Stop() }, nil
}

// Close releases every backend connection
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
