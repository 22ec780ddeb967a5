package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	InitLogger("test", "production", "debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	InitLogger("test", "production", "not-a-level")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.NotNil(t, LoggerFromContext(ctx))
}

func TestNilMetricsAreNoops(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, nil, "GET", "/health", 200, time.Millisecond)
		RecordDatasetLoad(ctx, nil, "csv", time.Millisecond, errors.New("x"))
		RecordResolution(ctx, nil, "code", "exact")
		RecordCacheHit(ctx, nil, "answer")
		RecordCacheMiss(ctx, nil, "answer")
	})
}

func TestInitMetrics(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		RecordResolution(context.Background(), metrics, "medication", "approximate")
		RecordDatasetLoad(context.Background(), metrics, "csv", time.Second, nil)
	})
}
