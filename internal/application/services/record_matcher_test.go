package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mBrond/chat-medicamentos/internal/application/services"
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

func TestRecordMatcher_MatchExact(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	testCases := []struct {
		name     string
		query    string
		field    entities.Field
		expected []int
	}{
		{"name substring", "dipi", entities.FieldMedicationName, []int{1, 2, 3}},
		{"case insensitive", "DIPIRONA", entities.FieldMedicationName, []int{1, 2, 3}},
		{"internal whitespace stripped", "dipi rona", entities.FieldMedicationName, []int{1, 2, 3}},
		{"code", "r50", entities.FieldDiagnosisCode, []int{1, 3, 7}},
		{"code prefix", "E1", entities.FieldDiagnosisCode, []int{4, 5, 6}},
		{"row with blank name still matches on code", "z00", entities.FieldDiagnosisCode, []int{8}},
		{"no match", "xyz", entities.FieldMedicationName, []int{}},
		{"blank query", "   ", entities.FieldMedicationName, []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rows(matcher.MatchExact(records, tc.query, tc.field)))
		})
	}
}

func TestRecordMatcher_MatchExact_ContainmentProperty(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	for _, r := range records {
		if r.MedicationName == "" {
			continue
		}
		got := rows(matcher.MatchExact(records, r.MedicationName[1:4], entities.FieldMedicationName))
		assert.Contains(t, got, r.Row, "record %d must contain its own substring", r.Row)
	}
}

func TestRecordMatcher_MatchBestSimilar(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	result := matcher.MatchBestSimilar(records, "dipirna", entities.FieldMedicationName)

	assert.Equal(t, entities.MatchKindApproximate, result.Kind)
	assert.Equal(t, []int{1, 2, 3}, rows(result.Candidates))
	require.NotNil(t, result.Score)
	assert.Equal(t, 86, *result.Score)
}

func TestRecordMatcher_MatchBestSimilar_AllCandidatesShareMaxAboveThreshold(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	for _, query := range []string{"insulina nph", "metfor", "paracetamal", "dipirona", "e10"} {
		for _, field := range []entities.Field{entities.FieldMedicationName, entities.FieldDiagnosisCode} {
			result := matcher.MatchBestSimilar(records, query, field)
			if result.Kind == entities.MatchKindNone {
				assert.Empty(t, result.Candidates)
				continue
			}

			require.NotNil(t, result.Score)
			assert.GreaterOrEqual(t, *result.Score, matcher.Threshold())

			scores := make(map[int]int)
			for _, s := range matcher.Score(records, query, field) {
				scores[s.Record.Row] = s.Score
				assert.LessOrEqual(t, s.Score, *result.Score)
			}
			for _, c := range result.Candidates {
				assert.Equal(t, *result.Score, scores[c.Row])
			}
		}
	}
}

func TestRecordMatcher_MatchBestSimilar_BelowThreshold(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)

	result := matcher.MatchBestSimilar(testDataset().Records, "zzzzqqq", entities.FieldMedicationName)

	assert.Equal(t, entities.MatchKindNone, result.Kind)
	assert.Empty(t, result.Candidates)
	assert.Nil(t, result.Score)
}

func TestRecordMatcher_WhitespaceStrippedBeforeMatching(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	spaced := matcher.MatchBestSimilar(records, "insulina nph", entities.FieldMedicationName)
	joined := matcher.MatchBestSimilar(records, "insulinanph", entities.FieldMedicationName)

	assert.Equal(t, joined, spaced)
	assert.Equal(t, []int{4}, rows(spaced.Candidates))
	assert.Equal(t,
		rows(matcher.MatchExact(records, "insulinanph", entities.FieldMedicationName)),
		rows(matcher.MatchExact(records, "insulina nph", entities.FieldMedicationName)))
}

func TestRecordMatcher_LowercasesOnly(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	// decomposed accent: "A" followed by a combining acute
	records := []entities.MedicationRecord{{Row: 1, MedicationName: "A\u0301cido Fólico", DiagnosisCode: "D52"}}

	assert.Empty(t, matcher.MatchExact(records, "ácido", entities.FieldMedicationName))
	assert.Equal(t, []int{1}, rows(matcher.MatchExact(records, "a\u0301cido", entities.FieldMedicationName)))

	best := matcher.MatchBestSimilar(records, "ácido", entities.FieldMedicationName)
	assert.Equal(t, entities.MatchKindApproximate, best.Kind)
	assert.Equal(t, []int{1}, rows(best.Candidates))
}

func TestRecordMatcher_BlankFieldsExcluded(t *testing.T) {
	matcher := services.NewRecordMatcher(0)
	records := testDataset().Records

	byName := matcher.Score(records, "x", entities.FieldMedicationName)
	byCode := matcher.Score(records, "x", entities.FieldDiagnosisCode)

	assert.Len(t, byName, 8)
	assert.Len(t, byCode, 8)
	assert.NotContains(t, rows(matcher.MatchBestSimilar(records, "x", entities.FieldMedicationName).Candidates), 8)
}

func TestRecordMatcher_AboveThreshold_ExcludesEqualValues(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	best := matcher.MatchBestSimilar(records, "Paracetamol", entities.FieldMedicationName)
	similar := matcher.AboveThreshold(records, "Paracetamol", entities.FieldMedicationName)

	assert.Equal(t, []int{7}, rows(best.Candidates))
	for _, s := range similar {
		assert.NotEqual(t, "Paracetamol", s.Record.MedicationName)
		assert.GreaterOrEqual(t, s.Score, services.DefaultMatchThreshold)
	}
}

func TestRecordMatcher_Match(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)
	records := testDataset().Records

	exact := matcher.Match(records, "dipirona", entities.FieldMedicationName)
	assert.Equal(t, entities.MatchKindExact, exact.Kind)
	assert.Equal(t, []int{1, 2, 3}, rows(exact.Candidates))
	assert.Nil(t, exact.Score)

	approx := matcher.Match(records, "dipirna", entities.FieldMedicationName)
	assert.Equal(t, entities.MatchKindApproximate, approx.Kind)
	require.NotNil(t, approx.Score)

	none := matcher.Match(records, "zzzzqqq", entities.FieldMedicationName)
	assert.Equal(t, entities.MatchKindNone, none.Kind)
	assert.True(t, none.Empty())
}

func TestRecordMatcher_EmptyRecords(t *testing.T) {
	matcher := services.NewRecordMatcher(services.DefaultMatchThreshold)

	assert.Empty(t, matcher.MatchExact(nil, "dipirona", entities.FieldMedicationName))
	result := matcher.MatchBestSimilar(nil, "dipirona", entities.FieldMedicationName)
	assert.Equal(t, entities.MatchKindNone, result.Kind)
	assert.Empty(t, matcher.AboveThreshold(nil, "dipirona", entities.FieldMedicationName))
}

func TestDedup(t *testing.T) {
	records := testDataset().Records[:3]

	identical := services.DedupIdentical(records)
	assert.Equal(t, []int{1, 2}, rows(identical))
	assert.Equal(t, identical, services.DedupIdentical(identical))

	byName := services.DedupByField(records, entities.FieldMedicationName)
	assert.Equal(t, []int{1}, rows(byName))
	assert.Equal(t, byName, services.DedupByField(byName, entities.FieldMedicationName))

	byCode := services.DedupByField(records, entities.FieldDiagnosisCode)
	assert.Equal(t, []int{1, 2}, rows(byCode))
	assert.Equal(t, byCode, services.DedupByField(byCode, entities.FieldDiagnosisCode))

	assert.Empty(t, services.DedupIdentical(nil))
}
