package repositories

import (
	"context"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// DatasetSource reads the medication table. Each Load re-reads the backing
// resource and returns an independent snapshot; failures are DATA_LOAD
// AppErrors. Implementations must be safe for concurrent use.
type DatasetSource interface {
	Load(ctx context.Context) (*entities.Dataset, error)
}

// VersionedSource is a DatasetSource that can report the version of the
// snapshot it currently serves without reloading.
type VersionedSource interface {
	DatasetSource
	Version() string
}

// MedicationSearchRepository is an external full-text index over medication names
type MedicationSearchRepository interface {
	// Index replaces the indexed documents with the dataset's medications
	Index(ctx context.Context, dataset *entities.Dataset) error

	// Suggest returns up to limit distinct medication names for a partial query
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
}
