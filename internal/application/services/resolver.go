package services

import (
	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/providers"
)

const (
	// MessageMedicationNotFound is shown when no medication name matched
	MessageMedicationNotFound = "Desculpe, não consegui encontrar informações sobre esse medicamento."
	// MessageCodeNotFound is shown when no diagnosis code contained the query
	MessageCodeNotFound = "Desculpe, não encontrei medicamentos para esse CID."
)

// Resolver holds the three resolution policies. Policies are pure functions
// of the dataset snapshot and the query.
type Resolver struct {
	matcher    *RecordMatcher
	translator providers.LocationTranslator
}

// NewResolver creates a resolver
func NewResolver(matcher *RecordMatcher, translator providers.LocationTranslator) *Resolver {
	return &Resolver{matcher: matcher, translator: translator}
}

// Resolve dispatches to the policy for intent. Unknown intents resolve to NotFound.
func (r *Resolver) Resolve(dataset *entities.Dataset, intent entities.Intent, query string) entities.Resolution {
	switch intent {
	case entities.IntentCode:
		return r.ResolveByCode(dataset, query)
	case entities.IntentMedication:
		return r.ResolveByName(dataset, query)
	case entities.IntentLocation:
		return r.ResolveLocation(dataset, query)
	default:
		return entities.NotFound{Intent: intent, Query: query, Message: MessageMedicationNotFound}
	}
}

// ResolveByCode only accepts exact (containment) matches on the diagnosis
// code. It returns one record per distinct medication.
func (r *Resolver) ResolveByCode(dataset *entities.Dataset, query string) entities.Resolution {
	exact := r.matcher.MatchExact(records(dataset), query, entities.FieldDiagnosisCode)
	if len(exact) == 0 {
		return entities.NotFound{Intent: entities.IntentCode, Query: query, Message: MessageCodeNotFound}
	}

	deduped := DedupByField(DedupIdentical(exact), entities.FieldMedicationName)
	return entities.CodeAnswer{Query: query, Records: deduped}
}

// ResolveByName prefers exact name matches, falls back to the best
// approximate set, and returns one record per distinct diagnosis code.
func (r *Resolver) ResolveByName(dataset *entities.Dataset, query string) entities.Resolution {
	matched, matchType, ok := r.matchName(dataset, query)
	if !ok {
		return entities.NotFound{Intent: entities.IntentMedication, Query: query, Message: MessageMedicationNotFound}
	}

	related := DedupByField(matched, entities.FieldDiagnosisCode)
	return entities.ResolvedAnswer{
		Query:     query,
		MatchType: matchType,
		Primary:   related[0],
		Related:   related,
	}
}

// ResolveLocation uses the same precedence as ResolveByName and takes the
// first row in dataset order as the canonical record.
func (r *Resolver) ResolveLocation(dataset *entities.Dataset, query string) entities.Resolution {
	matched, matchType, ok := r.matchName(dataset, query)
	if !ok {
		return entities.NotFound{Intent: entities.IntentLocation, Query: query, Message: MessageMedicationNotFound}
	}

	record := matched[0]
	locations := record.ApplicableLocations()
	var facilities []string
	if r.translator != nil {
		facilities = r.translator.Translate(locations)
	}

	return entities.LocationAnswer{
		Query:      query,
		MatchType:  matchType,
		Record:     record,
		Locations:  locations,
		Facilities: facilities,
	}
}

// matchName returns the identical-row-deduplicated exact matches, or else the
// best approximate set.
func (r *Resolver) matchName(dataset *entities.Dataset, query string) ([]entities.MedicationRecord, entities.MatchType, bool) {
	result := r.matcher.Match(records(dataset), query, entities.FieldMedicationName)
	switch result.Kind {
	case entities.MatchKindExact:
		return DedupIdentical(result.Candidates), entities.MatchTypeExact, true
	case entities.MatchKindApproximate:
		return result.Candidates, entities.MatchTypeApproximate, true
	default:
		return nil, "", false
	}
}

func records(dataset *entities.Dataset) []entities.MedicationRecord {
	if dataset == nil {
		return nil
	}
	return dataset.Records
}
