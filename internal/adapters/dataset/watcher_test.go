package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_FiresOnceForBurst(t *testing.T) {
	path := writeFile(t, "medicamentos.csv", sampleCSV)

	w, err := NewFileWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var fired int32
	require.NoError(t, w.Watch(func() { atomic.AddInt32(&fired, 1) }))

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fired) >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	path := writeFile(t, "medicamentos.csv", sampleCSV)

	w, err := NewFileWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var fired int32
	require.NoError(t, w.Watch(func() { atomic.AddInt32(&fired, 1) }))

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "outro.csv"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestFileWatcher_StopTwice(t *testing.T) {
	path := writeFile(t, "medicamentos.csv", sampleCSV)
	w, err := NewFileWatcher(path, 0)
	require.NoError(t, err)
	require.NoError(t, w.Watch(func() {}))

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFileWatcher_LogsWatchErrors(t *testing.T) {
	out := &syncBuffer{}
	previous := log.Logger
	log.Logger = zerolog.New(out)

	path := writeFile(t, "medicamentos.csv", sampleCSV)
	w, err := NewFileWatcher(path, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		w.Stop()
		log.Logger = previous
	})
	require.NoError(t, w.Watch(func() {}))

	w.fw.Errors <- errors.New("queue overflow")

	assert.Eventually(t, func() bool {
		logged := out.String()
		return strings.Contains(logged, "queue overflow") && strings.Contains(logged, "dataset watcher error")
	}, 2*time.Second, 10*time.Millisecond)
}
