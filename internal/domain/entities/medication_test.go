package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocationCode(t *testing.T) {
	testCases := []struct {
		input    string
		expected LocationCode
		ok       bool
	}{
		{"ESPECIAIS", LocationSpecial, true},
		{"Distritais", LocationDistrict, true},
		{" municipal ", LocationMunicipal, true},
		{"special", LocationSpecial, true},
		{"hospital", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			code, ok := ParseLocationCode(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, code)
		})
	}
}

func TestApplicableLocations(t *testing.T) {
	flagged := MedicationRecord{
		DispensingFlags: map[LocationCode]bool{LocationMunicipal: true, LocationDistrict: true, LocationSpecial: false},
	}
	assert.Equal(t, []LocationCode{LocationDistrict, LocationMunicipal}, flagged.ApplicableLocations())

	overridden := flagged
	overridden.DispensingMode = LocationSpecial
	assert.Equal(t, []LocationCode{LocationSpecial}, overridden.ApplicableLocations())

	assert.Empty(t, MedicationRecord{}.ApplicableLocations())
}

func TestContentKey_IgnoresRow(t *testing.T) {
	a := MedicationRecord{Row: 1, MedicationName: "Dipirona", DiagnosisCode: "R50"}
	b := a
	b.Row = 7
	c := a
	c.DiagnosisCode = "R51"

	assert.Equal(t, a.ContentKey(), b.ContentKey())
	assert.NotEqual(t, a.ContentKey(), c.ContentKey())
}

func TestNewDataset_Version(t *testing.T) {
	records := []MedicationRecord{{Row: 1, MedicationName: "Dipirona", DiagnosisCode: "R50"}}

	first := NewDataset("a.csv", records)
	second := NewDataset("b.csv", records)
	changed := NewDataset("a.csv", append(records, MedicationRecord{Row: 2, MedicationName: "Insulina"}))

	assert.Len(t, first.Version, 16)
	assert.Equal(t, first.Version, second.Version)
	assert.NotEqual(t, first.Version, changed.Version)
	assert.Equal(t, 0, (*Dataset)(nil).Len())
}

func TestParseIntent(t *testing.T) {
	testCases := []struct {
		input    string
		expected Intent
		ok       bool
	}{
		{"cid", IntentCode, true},
		{"code", IntentCode, true},
		{"Medicamento", IntentMedication, true},
		{"onde  retirar medicamento", IntentLocation, true},
		{"location", IntentLocation, true},
		{"preço", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			intent, ok := ParseIntent(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, intent)
		})
	}

	assert.Equal(t, FieldDiagnosisCode, IntentCode.Field())
	assert.Equal(t, FieldMedicationName, IntentLocation.Field())
}
