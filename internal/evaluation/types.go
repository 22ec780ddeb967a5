package evaluation

import (
	"time"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// GoldenQuery is a labeled chat query with its expected resolution. An empty
// ExpectedMedications means the query must resolve to NotFound.
type GoldenQuery struct {
	ID                  string             `json:"id"`
	Query               string             `json:"query"`
	Intent              string             `json:"intent"`
	ExpectedMedications []string           `json:"expected_medications"`
	ExpectedMatchType   entities.MatchType `json:"expected_match_type,omitempty"`
	Difficulty          string             `json:"difficulty"` // easy, medium, hard
}

// ExpectsNotFound reports whether the query is a negative example
func (q GoldenQuery) ExpectsNotFound() bool {
	return len(q.ExpectedMedications) == 0
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID        string             `json:"query_id"`
	Query          string             `json:"query"`
	Intent         entities.Intent    `json:"intent"`
	Retrieved      []string           `json:"retrieved"`
	MatchType      entities.MatchType `json:"match_type,omitempty"`
	NotFound       bool               `json:"not_found"`
	Recall         float64            `json:"recall"`
	ReciprocalRank float64            `json:"reciprocal_rank"`
	// MatchTypeOK is nil when the query has no expected match type
	MatchTypeOK *bool         `json:"match_type_ok,omitempty"`
	Passed      bool          `json:"passed"`
	Err         string        `json:"error,omitempty"`
	Latency     time.Duration `json:"latency"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries      int                                `json:"total_queries"`
	Passed            int                                `json:"passed"`
	Errors            int                                `json:"errors"`
	AvgRecall         float64                            `json:"avg_recall"`
	MRR               float64                            `json:"mrr"`
	MatchTypeAccuracy float64                            `json:"match_type_accuracy"`
	NotFound          int                                `json:"not_found"`
	FalseNotFound     int                                `json:"false_not_found"`
	MissedNotFound    int                                `json:"missed_not_found"`
	AvgLatency        time.Duration                      `json:"avg_latency"`
	ByIntent          map[entities.Intent]*IntentSummary `json:"by_intent"`
	Results           []EvalResult                       `json:"results"`

	matchTypeChecked int
	matchTypeCorrect int
	positives        int
}

// IntentSummary holds metrics grouped by intent.
type IntentSummary struct {
	Count     int     `json:"count"`
	Passed    int     `json:"passed"`
	AvgRecall float64 `json:"avg_recall"`
	MRR       float64 `json:"mrr"`
	NotFound  int     `json:"not_found"`

	positives int
}
