package analytics

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	sink, err := NewSQLiteSink(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteSink_RecordAndRecent(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, sink.Record(ctx, domain.Interaction{
		UserID: "user-1", Type: "search", QueryText: "salmon", ProductsFound: 3, CreatedAt: at,
	}))
	require.NoError(t, sink.Record(ctx, domain.Interaction{
		Type: "search", QueryText: "bangus", ProductsFound: 0, CreatedAt: at.Add(time.Minute),
	}))

	got, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "bangus", got[0].QueryText)
	assert.Empty(t, got[0].UserID, "anonymous callers are stored as NULL")
	assert.Equal(t, "salmon", got[1].QueryText)
	assert.Equal(t, "user-1", got[1].UserID)
	assert.Equal(t, 3, got[1].ProductsFound)
	assert.True(t, at.Equal(got[1].CreatedAt))
}

func TestSQLiteSink_RecentLimit(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, sink.Record(ctx, domain.Interaction{Type: "search", QueryText: q}))
	}

	got, err := sink.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteSink_RecordAfterClose(t *testing.T) {
	sink, err := NewSQLiteSink(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	err = sink.Record(context.Background(), domain.Interaction{Type: "search", QueryText: "x"})
	assert.ErrorIs(t, err, domain.ErrAnalyticsFailure)
}

func TestLogSink_Record(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.NewWithWriter(&buf, "analytics"))

	err := sink.Record(context.Background(), domain.Interaction{
		UserID: "user-9", Type: "search", QueryText: "lapu lapu", ProductsFound: 2,
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "interaction")
	assert.Contains(t, buf.String(), "lapu lapu")
	assert.Contains(t, buf.String(), "user-9")
}
