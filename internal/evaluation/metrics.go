package evaluation

import "github.com/mBrond/chat-medicamentos/pkg/utils"

// RecallAtK computes Recall@K: the fraction of relevant names found in the
// top-K retrieved names. Names compare case- and accent-insensitively.
// Returns 0.0 if relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	relevantSet := nameSet(relevant)
	found := 0
	for _, r := range topK(retrieved, k) {
		key := nameKey(r)
		if _, ok := relevantSet[key]; ok {
			found++
			delete(relevantSet, key)
		}
	}

	return float64(found) / float64(len(relevant))
}

// ReciprocalRankAtK is the reciprocal of the rank of the first relevant name
// in the top-K retrieved names, or 0.0 if none is there.
func ReciprocalRankAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	relevantSet := nameSet(relevant)
	for i, r := range topK(retrieved, k) {
		if _, ok := relevantSet[nameKey(r)]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

func topK(retrieved []string, k int) []string {
	if k > 0 && k < len(retrieved) {
		return retrieved[:k]
	}
	return retrieved
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[nameKey(n)] = struct{}{}
	}
	return set
}

func nameKey(name string) string {
	return utils.HeaderKey(name)
}
