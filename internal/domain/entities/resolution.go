package entities

// Resolution is the result of one resolution policy. The concrete type is one
// of CodeAnswer, ResolvedAnswer, LocationAnswer or NotFound.
type Resolution interface {
	ResolvedIntent() Intent
	isResolution()
}

// CodeAnswer lists one record per distinct medication for a diagnosis code
type CodeAnswer struct {
	Query   string
	Records []MedicationRecord
}

// ResolvedAnswer is a medication-name lookup. Related holds one record per
// distinct diagnosis code and Primary is its first element.
type ResolvedAnswer struct {
	Query     string
	MatchType MatchType
	Primary   MedicationRecord
	Related   []MedicationRecord
}

// LocationAnswer is the dispensing location set of the canonical record
type LocationAnswer struct {
	Query      string
	MatchType  MatchType
	Record     MedicationRecord
	Locations  []LocationCode
	Facilities []string
}

// NotFound means neither an exact nor an approximate match qualified. It is
// an expected outcome, not an error.
type NotFound struct {
	Intent  Intent
	Query   string
	Message string
}

func (CodeAnswer) ResolvedIntent() Intent     { return IntentCode }
func (ResolvedAnswer) ResolvedIntent() Intent { return IntentMedication }
func (LocationAnswer) ResolvedIntent() Intent { return IntentLocation }
func (n NotFound) ResolvedIntent() Intent     { return n.Intent }

func (CodeAnswer) isResolution()     {}
func (ResolvedAnswer) isResolution() {}
func (LocationAnswer) isResolution() {}
func (NotFound) isResolution()       {}
