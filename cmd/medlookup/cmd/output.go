package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/evaluation"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatReply renders a chat reply for a terminal
func formatReply(reply *services.ChatReply) string {
	var b strings.Builder
	switch {
	case reply.Error != "":
		fmt.Fprintf(&b, "✗ %s\n", reply.Error)
	case reply.MapData != nil:
		fmt.Fprintf(&b, "%s (%s)\n", reply.Medication, reply.MatchType)
		for _, m := range reply.MapData.Markers {
			fmt.Fprintf(&b, "  • %s\n    %s [%.5f, %.5f]\n", m.Name, m.Address, m.Latitude, m.Longitude)
		}
	default:
		if reply.Medication != "" {
			fmt.Fprintf(&b, "%s (%s)\n\n", reply.Medication, reply.MatchType)
		}
		b.WriteString(strings.ReplaceAll(reply.Answer, "**", ""))
		b.WriteString("\n")
	}
	return b.String()
}

// formatSummary renders an evaluation summary as a small table
func formatSummary(s *evaluation.EvalSummary, verbose bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "queries: %d  passed: %d  errors: %d\n", s.TotalQueries, s.Passed, s.Errors)
	fmt.Fprintf(&b, "recall: %.3f  mrr: %.3f  match type accuracy: %.3f\n", s.AvgRecall, s.MRR, s.MatchTypeAccuracy)
	fmt.Fprintf(&b, "not found: %d  (false: %d, missed: %d)  avg latency: %s\n", s.NotFound, s.FalseNotFound, s.MissedNotFound, s.AvgLatency)

	intents := make([]string, 0, len(s.ByIntent))
	for intent := range s.ByIntent {
		intents = append(intents, string(intent))
	}
	sort.Strings(intents)

	b.WriteString("\nintent       count  passed  recall   mrr\n")
	for _, name := range intents {
		is := s.ByIntent[entities.Intent(name)]
		fmt.Fprintf(&b, "%-12s %5d  %6d  %6.3f  %5.3f\n", name, is.Count, is.Passed, is.AvgRecall, is.MRR)
	}

	if verbose {
		b.WriteString("\n")
		for _, r := range s.Results {
			if r.Passed {
				continue
			}
			reason := r.Err
			if reason == "" {
				reason = fmt.Sprintf("got %v", r.Retrieved)
				if r.NotFound {
					reason = "not found"
				}
			}
			fmt.Fprintf(&b, "FAIL %-10s %-30q %s\n", r.QueryID, r.Query, reason)
		}
	}
	return b.String()
}
