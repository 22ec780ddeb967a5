package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/mBrond/chat-medicamentos/pkg/utils"
)

// LocationCode is one of the closed set of facility classes a medication can
// be dispensed from.
type LocationCode string

const (
	LocationDistrict  LocationCode = "district"
	LocationMunicipal LocationCode = "municipal"
	LocationSpecial   LocationCode = "special"
)

var locationAliases = map[string]LocationCode{
	"district":   LocationDistrict,
	"distrital":  LocationDistrict,
	"distritais": LocationDistrict,
	"municipal":  LocationMunicipal,
	"municipais": LocationMunicipal,
	"special":    LocationSpecial,
	"especial":   LocationSpecial,
	"especiais":  LocationSpecial,
}

// AllLocationCodes returns the location classes in their canonical order
func AllLocationCodes() []LocationCode {
	return []LocationCode{LocationDistrict, LocationMunicipal, LocationSpecial}
}

// ParseLocationCode maps a dataset label such as "ESPECIAIS" or "Distritais"
// to its LocationCode. Accents and case are ignored.
func ParseLocationCode(raw string) (LocationCode, bool) {
	code, ok := locationAliases[utils.HeaderKey(raw)]
	return code, ok
}

// Field names a matchable text column of the dataset
type Field string

const (
	FieldMedicationName Field = "medication_name"
	FieldDiagnosisCode  Field = "diagnosis_code"
)

// MedicationRecord is one row of the medication dataset
type MedicationRecord struct {
	// Row is the 1-based data row in the source, used as the tie-break order.
	Row             int                   `json:"row" db:"row_number"`
	MedicationName  string                `json:"medication_name" db:"medication_name"`
	DiagnosisCode   string                `json:"diagnosis_code" db:"diagnosis_code"`
	Notes           string                `json:"notes" db:"notes"`
	DispensingFlags map[LocationCode]bool `json:"dispensing_flags,omitempty" db:"-"`
	// DispensingMode is the override column. When set it replaces the flags.
	DispensingMode LocationCode `json:"dispensing_mode,omitempty" db:"dispensing_mode"`
}

// Field returns the value of a matchable column
func (r MedicationRecord) Field(f Field) string {
	switch f {
	case FieldMedicationName:
		return r.MedicationName
	case FieldDiagnosisCode:
		return r.DiagnosisCode
	default:
		return ""
	}
}

// Flag reports whether the record may be dispensed from the given class.
// Absent flags are false.
func (r MedicationRecord) Flag(code LocationCode) bool {
	return r.DispensingFlags[code]
}

// ApplicableLocations is the override class when one is set, otherwise every
// flagged class in canonical order.
func (r MedicationRecord) ApplicableLocations() []LocationCode {
	if r.DispensingMode != "" {
		return []LocationCode{r.DispensingMode}
	}
	var codes []LocationCode
	for _, code := range AllLocationCodes() {
		if r.Flag(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// ContentKey identifies a record by its content, ignoring Row. Two rows with
// the same key are duplicates.
func (r MedicationRecord) ContentKey() string {
	var b strings.Builder
	for _, part := range []string{r.MedicationName, r.DiagnosisCode, r.Notes, string(r.DispensingMode)} {
		b.WriteString(strconv.Quote(part))
		b.WriteByte('|')
	}
	for _, code := range AllLocationCodes() {
		if r.Flag(code) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Dataset is an immutable snapshot of the medication table
type Dataset struct {
	Records  []MedicationRecord `json:"records"`
	Source   string             `json:"source"`
	LoadedAt time.Time          `json:"loaded_at"`
	// Version is a content hash; equal versions mean equal records.
	Version string `json:"version"`
}

// NewDataset builds a snapshot and stamps it with a content version
func NewDataset(source string, records []MedicationRecord) *Dataset {
	h := sha256.New()
	for _, r := range records {
		h.Write([]byte(r.ContentKey()))
		h.Write([]byte{'\n'})
	}
	return &Dataset{
		Records:  records,
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Version:  hex.EncodeToString(h.Sum(nil))[:16],
	}
}

// Len returns the number of records, zero for a nil dataset
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
