package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

const answerCacheName = "answer"

// ChatReply is the payload returned to the chat frontend. Exactly one of
// Answer, MapData or Error is set.
type ChatReply struct {
	Answer     string             `json:"answer,omitempty"`
	MapData    *entities.MapData  `json:"map_data,omitempty"`
	Medication string             `json:"medication,omitempty"`
	MatchType  entities.MatchType `json:"match_type,omitempty"`
	Error      string             `json:"erro,omitempty"`

	// Latency is the server-side handling time in seconds, set by the handler.
	Latency float64 `json:"latency,omitempty"`
}

// ChatService answers one validated chat message
type ChatService struct {
	resolution *ResolutionService
	maps       *MapBuilder
	cache      providers.CacheProvider
	ttl        time.Duration
	metrics    *observability.Metrics
}

// NewChatService creates a chat service. cache may be nil.
func NewChatService(
	resolution *ResolutionService,
	maps *MapBuilder,
	cache providers.CacheProvider,
	ttl time.Duration,
	metrics *observability.Metrics,
) *ChatService {
	return &ChatService{
		resolution: resolution,
		maps:       maps,
		cache:      cache,
		ttl:        ttl,
		metrics:    metrics,
	}
}

// Reply resolves text for intent and renders the reply. Only dataset load
// failures are returned as errors.
func (s *ChatService) Reply(ctx context.Context, text string, intent entities.Intent) (*ChatReply, error) {
	key, cacheable := s.cacheKey(intent, text)
	if cacheable {
		if reply, ok := s.getCached(ctx, key); ok {
			return reply, nil
		}
	}

	result, err := s.resolution.Resolve(ctx, intent, text)
	if err != nil {
		return nil, err
	}

	reply := s.render(ctx, result)
	if cacheable {
		s.setCached(ctx, key, reply)
	}
	return reply, nil
}

func (s *ChatService) render(ctx context.Context, result entities.Resolution) *ChatReply {
	switch r := result.(type) {
	case entities.CodeAnswer:
		return &ChatReply{
			Answer:    FormatCodeAnswer(r.Records),
			MatchType: entities.MatchTypeExact,
		}
	case entities.ResolvedAnswer:
		return &ChatReply{
			Answer:     FormatMedicationAnswer(r.Related),
			Medication: r.Primary.MedicationName,
			MatchType:  r.MatchType,
		}
	case entities.LocationAnswer:
		switch m := s.maps.Build(ctx, r.Facilities).(type) {
		case entities.MapData:
			return &ChatReply{
				MapData:    &m,
				Medication: r.Record.MedicationName,
				MatchType:  r.MatchType,
			}
		default:
			return &ChatReply{Error: MessageNoLocatedFacilities, Medication: r.Record.MedicationName}
		}
	case entities.NotFound:
		return &ChatReply{Error: r.Message}
	default:
		return &ChatReply{Error: MessageMedicationNotFound}
	}
}

// cacheKey is only available when the source can report its version, so a
// dataset change never serves a stale answer.
func (s *ChatService) cacheKey(intent entities.Intent, text string) (string, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return "", false
	}
	version, ok := s.resolution.DatasetVersion()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("chat:%s:%s:%s", version, intent, NormalizeQuery(text)), true
}

func (s *ChatService) getCached(ctx context.Context, key string) (*ChatReply, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("answer cache read failed")
		}
		observability.RecordCacheMiss(ctx, s.metrics, answerCacheName)
		return nil, false
	}

	var reply ChatReply
	if err := json.Unmarshal(data, &reply); err != nil {
		observability.RecordCacheMiss(ctx, s.metrics, answerCacheName)
		return nil, false
	}
	observability.RecordCacheHit(ctx, s.metrics, answerCacheName)
	return &reply, true
}

func (s *ChatService) setCached(ctx context.Context, key string, reply *ChatReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("answer cache write failed")
	}
}
