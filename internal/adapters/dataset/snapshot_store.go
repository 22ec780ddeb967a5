package dataset

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/domain/repositories"
)

// SnapshotStore keeps one parsed dataset in memory. The first Load reads the
// wrapped source; later Loads return the same snapshot until Refresh swaps in
// a new one.
type SnapshotStore struct {
	source   repositories.DatasetSource
	current  atomic.Pointer[entities.Dataset]
	reloadMu sync.Mutex
}

var _ repositories.VersionedSource = (*SnapshotStore)(nil)

// NewSnapshotStore wraps a source with an in-memory snapshot
func NewSnapshotStore(source repositories.DatasetSource) *SnapshotStore {
	return &SnapshotStore{source: source}
}

// Load returns the cached snapshot, reading the source on first use
func (s *SnapshotStore) Load(ctx context.Context) (*entities.Dataset, error) {
	if ds := s.current.Load(); ds != nil {
		return ds, nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if ds := s.current.Load(); ds != nil {
		return ds, nil
	}
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.current.Store(ds)
	return ds, nil
}

// Refresh re-reads the source and swaps the snapshot. When the read fails
// the previous snapshot stays in place.
func (s *SnapshotStore) Refresh(ctx context.Context) (*entities.Dataset, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.current.Store(ds)
	return ds, nil
}

// Version is the content version of the current snapshot, empty before the
// first successful load.
func (s *SnapshotStore) Version() string {
	if ds := s.current.Load(); ds != nil {
		return ds.Version
	}
	return ""
}
