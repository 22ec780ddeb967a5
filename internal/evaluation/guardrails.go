package evaluation

import "fmt"

// GuardrailConfig holds the minimum quality an evaluation run must reach.
// Zero values disable a check.
type GuardrailConfig struct {
	MinRecall            float64
	MinMRR               float64
	MinMatchTypeAccuracy float64
	MaxErrors            int
	MaxFalseNotFound     int
}

// Guardrails turns an evaluation summary into pass/fail for CI
type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxErrors < 0 {
		config.MaxErrors = 0
	}
	if config.MaxFalseNotFound < 0 {
		config.MaxFalseNotFound = 0
	}
	return &Guardrails{config: config}
}

// Violations lists every threshold the summary misses. Error and false
// not-found limits always apply; a run with errors never passes by default.
func (g *Guardrails) Violations(s *EvalSummary) []string {
	var out []string
	if s.Errors > g.config.MaxErrors {
		out = append(out, fmt.Sprintf("%d queries failed to resolve (max %d)", s.Errors, g.config.MaxErrors))
	}
	if s.FalseNotFound > g.config.MaxFalseNotFound {
		out = append(out, fmt.Sprintf("%d answerable queries returned not found (max %d)", s.FalseNotFound, g.config.MaxFalseNotFound))
	}
	if g.config.MinRecall > 0 && s.AvgRecall < g.config.MinRecall {
		out = append(out, fmt.Sprintf("recall %.3f below %.3f", s.AvgRecall, g.config.MinRecall))
	}
	if g.config.MinMRR > 0 && s.MRR < g.config.MinMRR {
		out = append(out, fmt.Sprintf("MRR %.3f below %.3f", s.MRR, g.config.MinMRR))
	}
	if g.config.MinMatchTypeAccuracy > 0 && s.MatchTypeAccuracy < g.config.MinMatchTypeAccuracy {
		out = append(out, fmt.Sprintf("match type accuracy %.3f below %.3f", s.MatchTypeAccuracy, g.config.MinMatchTypeAccuracy))
	}
	return out
}

// Pass reports whether the summary meets every threshold
func (g *Guardrails) Pass(s *EvalSummary) bool {
	return len(g.Violations(s)) == 0
}
