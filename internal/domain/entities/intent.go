package entities

import "strings"

// Intent is what the user wants to look up
type Intent string

const (
	// IntentCode looks up medications by diagnosis (CID) code
	IntentCode Intent = "code"
	// IntentMedication looks up diagnosis codes and notes by medication name
	IntentMedication Intent = "medication"
	// IntentLocation looks up where a medication is dispensed
	IntentLocation Intent = "location"
)

var intentAliases = map[string]Intent{
	"code":                     IntentCode,
	"cid":                      IntentCode,
	"medication":               IntentMedication,
	"medicamento":              IntentMedication,
	"location":                 IntentLocation,
	"onde retirar medicamento": IntentLocation,
}

// ParseIntent accepts the canonical names and the labels sent by the chat
// frontend ("cid", "medicamento", "onde retirar medicamento").
func ParseIntent(raw string) (Intent, bool) {
	intent, ok := intentAliases[strings.ToLower(strings.Join(strings.Fields(raw), " "))]
	return intent, ok
}

// Field is the dataset column an intent matches against
func (i Intent) Field() Field {
	if i == IntentCode {
		return FieldDiagnosisCode
	}
	return FieldMedicationName
}
