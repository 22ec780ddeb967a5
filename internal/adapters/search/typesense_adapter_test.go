package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

func TestBuildDocuments(t *testing.T) {
	ds := entities.NewDataset("mem", []entities.MedicationRecord{
		{Row: 1, MedicationName: "Dipirona", DiagnosisCode: "R50", DispensingFlags: map[entities.LocationCode]bool{entities.LocationDistrict: true}},
		{Row: 2, MedicationName: "Ácido Fólico", DiagnosisCode: "D52"},
		{Row: 3, MedicationName: "dipirona", DiagnosisCode: "R51", DispensingMode: entities.LocationSpecial},
		{Row: 4, MedicationName: "  ", DiagnosisCode: "Z00"},
	})

	docs := BuildDocuments(ds)
	require.Len(t, docs, 2)

	assert.Equal(t, "Dipirona", docs[0]["name"])
	assert.Equal(t, 1, docs[0]["row"])
	assert.Equal(t, []string{"R50", "R51"}, docs[0]["codes"])
	assert.Equal(t, []string{"district", "special"}, docs[0]["locations"])

	assert.Equal(t, "acido folico", docs[1]["name_plain"])
	assert.NotEqual(t, docs[0]["id"], docs[1]["id"])
}

func TestBuildDocuments_Empty(t *testing.T) {
	assert.Nil(t, BuildDocuments(nil))
}

func TestDocumentIDStable(t *testing.T) {
	assert.Equal(t, documentID("Insulina NPH"), documentID("INSULINA NPH"))
	assert.Len(t, documentID("Insulina NPH"), 20)
}

func TestDistinctNames(t *testing.T) {
	docs := []map[string]interface{}{
		{"name": "Insulina NPH"},
		{"name": "insulina nph"},
		{"name": 42},
		{"name": "Insulina Regular"},
		{"name": "Insulina Glargina"},
	}

	assert.Equal(t, []string{"Insulina NPH", "Insulina Regular"}, distinctNames(docs, 2))
	assert.Len(t, distinctNames(docs, 0), 3)
}
