package services

import (
	"fmt"
	"strings"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// AnswerIntro opens every text answer
const AnswerIntro = "Encontrei as seguintes informações:\n\n"

// FormatCodeAnswer renders the medications found for a diagnosis code
func FormatCodeAnswer(records []entities.MedicationRecord) string {
	return formatBlocks(records, func(r entities.MedicationRecord) string {
		return fmt.Sprintf(" **Medicamento: %s**\n %s", r.MedicationName, r.Notes)
	})
}

// FormatMedicationAnswer renders the diagnosis codes found for a medication
func FormatMedicationAnswer(records []entities.MedicationRecord) string {
	return formatBlocks(records, func(r entities.MedicationRecord) string {
		return fmt.Sprintf(" **CID: %s**\n %s", r.DiagnosisCode, r.Notes)
	})
}

func formatBlocks(records []entities.MedicationRecord, block func(entities.MedicationRecord) string) string {
	blocks := make([]string, 0, len(records))
	for _, r := range records {
		blocks = append(blocks, block(r))
	}
	return AnswerIntro + strings.Join(blocks, "\n\n")
}
