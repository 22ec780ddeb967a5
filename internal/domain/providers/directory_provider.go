package providers

import (
	"context"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// LocationTranslator expands location classes into facility display names
type LocationTranslator interface {
	// Translate returns the facility names for the given classes, without
	// duplicates, in the order the classes are given. Unknown classes are skipped.
	Translate(codes []entities.LocationCode) []string
}

// FacilityDirectory is the address book keyed by facility display name
type FacilityDirectory interface {
	// Lookup returns a NOT_FOUND AppError when the facility has no geo entry
	Lookup(ctx context.Context, name string) (*entities.FacilityLocation, error)
}
