package services

import (
	"context"
	"sort"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// SuggestionService proposes medication names for autocomplete
type SuggestionService struct {
	resolution *ResolutionService
	matcher    *RecordMatcher
	index      repositories.MedicationSearchRepository
}

// NewSuggestionService creates a suggestion service. index may be nil, in
// which case suggestions come from the dataset itself.
func NewSuggestionService(
	resolution *ResolutionService,
	matcher *RecordMatcher,
	index repositories.MedicationSearchRepository,
) *SuggestionService {
	return &SuggestionService{
		resolution: resolution,
		matcher:    matcher,
		index:      index,
	}
}

// Suggest returns up to limit distinct medication names. The external index
// is tried first; on failure the local matcher answers.
func (s *SuggestionService) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []string{}, nil
	}

	if s.index != nil {
		names, err := s.index.Suggest(ctx, query, limit)
		if err == nil {
			return names, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("search index unavailable, using local suggestions")
	}

	dataset, err := s.resolution.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.SuggestLocal(dataset, query, limit), nil
}

// SuggestLocal lists exact name matches in dataset order, then similar names
// by descending score.
func (s *SuggestionService) SuggestLocal(dataset *entities.Dataset, query string, limit int) []string {
	rows := records(dataset)

	candidates := s.matcher.MatchExact(rows, query, entities.FieldMedicationName)
	similar := s.matcher.AboveThreshold(rows, query, entities.FieldMedicationName)
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Score > similar[j].Score
	})
	for _, sr := range similar {
		candidates = append(candidates, sr.Record)
	}

	names := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, r := range candidates {
		if _, ok := seen[r.MedicationName]; ok {
			continue
		}
		seen[r.MedicationName] = struct{}{}
		names = append(names, r.MedicationName)
		if len(names) == limit {
			break
		}
	}
	return names
}
