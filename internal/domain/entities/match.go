package entities

// MatchKind classifies a matcher invocation
type MatchKind string

const (
	MatchKindNone        MatchKind = "none"
	MatchKindExact       MatchKind = "exact"
	MatchKindApproximate MatchKind = "approximate"
)

// MatchResult is the output of the record matcher. Kind is None iff
// Candidates is empty. Score is only set for Approximate results and every
// candidate shares it.
type MatchResult struct {
	Kind       MatchKind
	Candidates []MedicationRecord
	Score      *int
}

// Empty reports whether nothing matched
func (m MatchResult) Empty() bool {
	return len(m.Candidates) == 0
}

// MatchType tells the caller how a resolved answer was found
type MatchType string

const (
	MatchTypeExact       MatchType = "exact"
	MatchTypeApproximate MatchType = "approximate"
)
