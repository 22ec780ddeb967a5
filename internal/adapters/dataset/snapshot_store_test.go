package dataset

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

type countingSource struct {
	mu    sync.Mutex
	loads int
	err   error
	ds    *entities.Dataset
}

func (s *countingSource) Load(ctx context.Context) (*entities.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.ds, nil
}

func TestSnapshotStore_LoadIsReadThrough(t *testing.T) {
	src := &countingSource{ds: entities.NewDataset("mem", []entities.MedicationRecord{{Row: 1, MedicationName: "Dipirona"}})}
	store := NewSnapshotStore(src)
	assert.Empty(t, store.Version())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := store.Load(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 1, ds.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.loads)
	assert.Equal(t, src.ds.Version, store.Version())
}

func TestSnapshotStore_RefreshKeepsOldSnapshotOnError(t *testing.T) {
	first := entities.NewDataset("mem", []entities.MedicationRecord{{Row: 1, MedicationName: "Dipirona"}})
	src := &countingSource{ds: first}
	store := NewSnapshotStore(src)

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	src.err = errors.New("disk gone")
	_, err = store.Refresh(context.Background())
	require.Error(t, err)

	ds, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, ds)
}

func TestSnapshotStore_RefreshSwaps(t *testing.T) {
	path := writeFile(t, "medicamentos.csv", sampleCSV)
	store := NewSnapshotStore(NewCSVSource(path))

	before, err := store.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+"Paracetamol,R50,,0,1,0\n"), 0o600))
	cached, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, before, cached)

	after, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, after.Len())
	assert.Equal(t, after.Version, store.Version())
}

func TestSnapshotStore_FailedFirstLoadIsRetried(t *testing.T) {
	src := &countingSource{err: errors.New("offline")}
	store := NewSnapshotStore(src)

	_, err := store.Load(context.Background())
	require.Error(t, err)

	src.err = nil
	src.ds = entities.NewDataset("mem", nil)
	_, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.loads)
}
