package evaluation

import (
	"context"
	"time"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// DefaultK is how many retrieved names count towards recall and rank
const DefaultK = 10

// Resolver runs a resolution policy; *services.ResolutionService implements it
type Resolver interface {
	Resolve(ctx context.Context, intent entities.Intent, query string) (entities.Resolution, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	resolver Resolver
	k        int
}

// NewRunner creates a runner scoring the top DefaultK names
func NewRunner(resolver Resolver) *Runner {
	return &Runner{resolver: resolver, k: DefaultK}
}

// Run resolves every query. A resolver error is recorded on the query's
// result and counted, not returned; Run only fails on an invalid query set.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	if err := ValidateGoldenQueries(queries); err != nil {
		return nil, err
	}

	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByIntent:     make(map[entities.Intent]*IntentSummary),
		Results:      make([]EvalResult, 0, len(queries)),
	}

	for _, gq := range queries {
		intent, _ := entities.ParseIntent(gq.Intent)

		start := time.Now()
		resolution, err := r.resolver.Resolve(ctx, intent, gq.Query)
		res := EvalResult{
			QueryID: gq.ID,
			Query:   gq.Query,
			Intent:  intent,
			Latency: time.Since(start),
		}
		if err != nil {
			res.Err = err.Error()
		} else {
			r.score(&res, gq, resolution)
		}

		r.updateSummary(summary, gq, res)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) score(res *EvalResult, gq GoldenQuery, resolution entities.Resolution) {
	res.Retrieved, res.MatchType, res.NotFound = retrievedNames(resolution)

	if gq.ExpectsNotFound() {
		res.Passed = res.NotFound
		return
	}

	res.Recall = RecallAtK(gq.ExpectedMedications, res.Retrieved, r.k)
	res.ReciprocalRank = ReciprocalRankAtK(gq.ExpectedMedications, res.Retrieved, r.k)
	res.Passed = res.Recall == 1.0

	if gq.ExpectedMatchType != "" {
		ok := res.MatchType == gq.ExpectedMatchType
		res.MatchTypeOK = &ok
		res.Passed = res.Passed && ok
	}
}

// retrievedNames lists the medication names a resolution answers with, in
// answer order and without duplicates.
func retrievedNames(resolution entities.Resolution) ([]string, entities.MatchType, bool) {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	switch v := resolution.(type) {
	case entities.CodeAnswer:
		for _, rec := range v.Records {
			add(rec.MedicationName)
		}
		return names, entities.MatchTypeExact, false
	case entities.ResolvedAnswer:
		add(v.Primary.MedicationName)
		for _, rec := range v.Related {
			add(rec.MedicationName)
		}
		return names, v.MatchType, false
	case entities.LocationAnswer:
		add(v.Record.MedicationName)
		return names, v.MatchType, false
	default:
		return nil, "", true
	}
}

func (r *Runner) updateSummary(s *EvalSummary, gq GoldenQuery, res EvalResult) {
	s.Results = append(s.Results, res)
	s.AvgLatency += res.Latency

	is, ok := s.ByIntent[res.Intent]
	if !ok {
		is = &IntentSummary{}
		s.ByIntent[res.Intent] = is
	}
	is.Count++

	if res.Err != "" {
		s.Errors++
		return
	}

	if res.Passed {
		s.Passed++
		is.Passed++
	}
	if res.NotFound {
		s.NotFound++
		is.NotFound++
	}

	if gq.ExpectsNotFound() {
		if !res.NotFound {
			s.MissedNotFound++
		}
		return
	}

	if res.NotFound {
		s.FalseNotFound++
	}
	s.positives++
	is.positives++
	s.AvgRecall += res.Recall
	s.MRR += res.ReciprocalRank
	is.AvgRecall += res.Recall
	is.MRR += res.ReciprocalRank

	if res.MatchTypeOK != nil {
		s.matchTypeChecked++
		if *res.MatchTypeOK {
			s.matchTypeCorrect++
		}
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}
	if s.positives > 0 {
		n := float64(s.positives)
		s.AvgRecall /= n
		s.MRR /= n
	}
	if s.matchTypeChecked > 0 {
		s.MatchTypeAccuracy = float64(s.matchTypeCorrect) / float64(s.matchTypeChecked)
	}

	for _, is := range s.ByIntent {
		if is.positives > 0 {
			n := float64(is.positives)
			is.AvgRecall /= n
			is.MRR /= n
		}
	}
}
