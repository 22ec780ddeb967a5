package services

import (
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/pkg/fuzzy"
	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

// DefaultMatchThreshold is the minimum partial-ratio score for an approximate match
const DefaultMatchThreshold = 60

// ScoredRecord pairs a record with its similarity to a query
type ScoredRecord struct {
	Record entities.MedicationRecord
	Score  int
}

// RecordMatcher finds dataset rows by exact containment or partial-ratio
// similarity. Every entry point strips all whitespace from the query and
// lowercases both sides before comparing.
type RecordMatcher struct {
	threshold int
}

// NewRecordMatcher creates a matcher accepting approximate scores >= threshold
func NewRecordMatcher(threshold int) *RecordMatcher {
	return &RecordMatcher{threshold: threshold}
}

// Threshold returns the configured minimum similarity
func (m *RecordMatcher) Threshold() int {
	return m.threshold
}

// NormalizeQuery applies the query normalization used by every match mode
func NormalizeQuery(query string) string {
	return utils.Lower(utils.StripWhitespace(query))
}

// MatchExact returns, in dataset order, every record whose field contains the
// query case-insensitively. Blank fields never match and neither does a
// query that is empty after normalization.
func (m *RecordMatcher) MatchExact(records []entities.MedicationRecord, query string, field entities.Field) []entities.MedicationRecord {
	q := NormalizeQuery(query)
	if q == "" {
		return nil
	}

	var matches []entities.MedicationRecord
	for _, r := range records {
		value, ok := candidateValue(r, field)
		if !ok {
			continue
		}
		if strings.Contains(value, q) {
			matches = append(matches, r)
		}
	}
	return matches
}

// Match prefers exact containment matches and falls back to the best
// approximate set. Kind tells which one was used.
func (m *RecordMatcher) Match(records []entities.MedicationRecord, query string, field entities.Field) entities.MatchResult {
	if exact := m.MatchExact(records, query, field); len(exact) > 0 {
		return entities.MatchResult{Kind: entities.MatchKindExact, Candidates: exact}
	}
	return m.MatchBestSimilar(records, query, field)
}

// MatchBestSimilar returns every record sharing the maximum partial-ratio
// score, provided that score reaches the threshold. Ties are all kept in
// dataset order.
func (m *RecordMatcher) MatchBestSimilar(records []entities.MedicationRecord, query string, field entities.Field) entities.MatchResult {
	return m.best(m.Score(records, query, field))
}

// Score computes the partial-ratio score of every matchable record, in
// dataset order.
func (m *RecordMatcher) Score(records []entities.MedicationRecord, query string, field entities.Field) []ScoredRecord {
	q := NormalizeQuery(query)
	if q == "" {
		return nil
	}

	scored := make([]ScoredRecord, 0, len(records))
	for _, r := range records {
		value, ok := candidateValue(r, field)
		if !ok {
			continue
		}
		scored = append(scored, ScoredRecord{Record: r, Score: fuzzy.PartialRatio(value, q)})
	}
	return scored
}

// AboveThreshold is the similar variant used for suggestions: every scored
// record that reaches the threshold, excluding values equal to the query so
// exact hits do not leak into the similar bucket, in dataset order.
func (m *RecordMatcher) AboveThreshold(records []entities.MedicationRecord, query string, field entities.Field) []ScoredRecord {
	q := NormalizeQuery(query)

	var out []ScoredRecord
	for _, s := range m.Score(records, query, field) {
		value, _ := candidateValue(s.Record, field)
		if s.Score >= m.threshold && value != q {
			out = append(out, s)
		}
	}
	return out
}

func (m *RecordMatcher) best(scored []ScoredRecord) entities.MatchResult {
	maxScore := -1
	for _, s := range scored {
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}
	if maxScore < m.threshold {
		return entities.MatchResult{Kind: entities.MatchKindNone}
	}

	var candidates []entities.MedicationRecord
	for _, s := range scored {
		if s.Score == maxScore {
			candidates = append(candidates, s.Record)
		}
	}
	score := maxScore
	return entities.MatchResult{
		Kind:       entities.MatchKindApproximate,
		Candidates: candidates,
		Score:      &score,
	}
}

// candidateValue returns the lowercased field value, or false when it is blank
func candidateValue(r entities.MedicationRecord, field entities.Field) (string, bool) {
	value := r.Field(field)
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return utils.Lower(value), true
}
