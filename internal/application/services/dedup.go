package services

import (
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// DedupIdentical drops rows whose content repeats an earlier row
func DedupIdentical(records []entities.MedicationRecord) []entities.MedicationRecord {
	return dedupBy(records, func(r entities.MedicationRecord) string { return r.ContentKey() })
}

// DedupByField keeps the first row for each distinct value of field
func DedupByField(records []entities.MedicationRecord, field entities.Field) []entities.MedicationRecord {
	return dedupBy(records, func(r entities.MedicationRecord) string { return r.Field(field) })
}

func dedupBy(records []entities.MedicationRecord, key func(entities.MedicationRecord) string) []entities.MedicationRecord {
	if len(records) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(records))
	out := make([]entities.MedicationRecord, 0, len(records))
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
