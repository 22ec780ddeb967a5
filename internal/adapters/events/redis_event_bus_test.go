package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	redisclient "github.com/mBrond/chat-medicamentos/internal/infrastructure/clients/redis"
)

func newTestBus(t *testing.T) (*RedisEventBus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewRedisEventBus(redisclient.NewClientWithRedis(rdb))
	t.Cleanup(func() {
		bus.Close()
		rdb.Close()
	})
	return bus, mr
}

func receive(t *testing.T, ch <-chan *entities.DatasetEvent) *entities.DatasetEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func TestRedisEventBus_PublishSubscribe(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, entities.DatasetChannel)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, entities.DatasetChannel)
	require.NoError(t, err)

	ds := entities.NewDataset("data/medicamentos.csv", []entities.MedicationRecord{
		{Row: 1, MedicationName: "Dipirona", DiagnosisCode: "R50"},
	})
	event := entities.NewDatasetEvent(ds, "replica-a")
	require.NoError(t, bus.Publish(ctx, entities.DatasetChannel, event))

	for _, ch := range []<-chan *entities.DatasetEvent{first, second} {
		got := receive(t, ch)
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, ds.Version, got.Version)
		assert.Equal(t, 1, got.Records)
		assert.Equal(t, "replica-a", got.Publisher)
	}
}

func TestRedisEventBus_SkipsMalformedPayload(t *testing.T) {
	bus, mr := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, entities.DatasetChannel)
	require.NoError(t, err)

	mr.Publish(entities.DatasetChannel, "not json")
	require.NoError(t, bus.Publish(ctx, entities.DatasetChannel, &entities.DatasetEvent{ID: "ok", Version: "v2"}))

	assert.Equal(t, "v2", receive(t, ch).Version)
}

func TestRedisEventBus_ContextCancelClosesSubscriber(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx, entities.DatasetChannel)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel was not closed")
	}

	assert.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.subscriptions) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisEventBus_CloseEndsSubscriptions(t *testing.T) {
	bus, _ := newTestBus(t)

	ch, err := bus.Subscribe(context.Background(), entities.DatasetChannel)
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber channel was not closed")
	}
}
