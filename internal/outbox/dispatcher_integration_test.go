//go:build integration

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestDispatcherPublishesMessages(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	sessionID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, sessionID, "grind.session_created"))

	producer := &stubProducer{}
	dispatcher := NewDispatcher(pool, producer, 10*time.Millisecond, 5, zerolog.Nop())

	beforeDelivered := testutil.ToFloat64(deliveredCounter)
	beforeHistogram := histogramSampleCount(t)

	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, producer.writes, 1)
	require.Equal(t, "grind_session_events", producer.writes[0].topic)
	require.Len(t, producer.writes[0].messages, 1)

	headers := producer.writes[0].messages[0].Headers
	require.Len(t, headers, 2)
	require.Equal(t, "event_type", headers[0].Key)
	require.Equal(t, "grind.session_created", string(headers[0].Value))

	afterDelivered := testutil.ToFloat64(deliveredCounter)
	require.InDelta(t, beforeDelivered+1, afterDelivered, 0.0001)
	afterHistogram := histogramSampleCount(t)
	require.Greater(t, afterHistogram, beforeHistogram)

	var published int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)
}

func TestDispatcherRetriesFailedBatches(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	sessionID := uuid.NewString()
	require.NotZero(t, seedOutbox(t, ctx, pool, sessionID, "grind.session_state_changed"))

	producer := &stubProducer{err: errors.New("kafka write failed")}
	dispatcher := NewDispatcher(pool, producer, 10*time.Millisecond, 5, zerolog.Nop())

	beforeFailed := testutil.ToFloat64(failedCounter)

	require.Error(t, dispatcher.processBatch(ctx))

	afterFailed := testutil.ToFloat64(failedCounter)
	require.InDelta(t, beforeFailed+1, afterFailed, 0.0001)

	// The row stays unpublished so the next poll picks it up again.
	var unpublished int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&unpublished))
	require.Equal(t, 1, unpublished)

	producer.err = nil
	require.NoError(t, dispatcher.processBatch(ctx))

	var published int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)
}

func TestDispatcherGroupsBatchByTopic(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	require.NotZero(t, seedOutbox(t, ctx, pool, uuid.NewString(), "grind.session_created"))
	require.NotZero(t, seedOutbox(t, ctx, pool, uuid.NewString(), "grind.session_created"))

	producer := &stubProducer{}
	dispatcher := NewDispatcher(pool, producer, 10*time.Millisecond, 5, zerolog.Nop())

	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, producer.writes, 1)
	require.Len(t, producer.writes[0].messages, 2)
}

type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	copied := make([]kafka.Message, len(msgs))
	copy(copied, msgs)

	s.writes = append(s.writes, writtenBatch{
		topic:    topic,
		messages: copied,
	})
	return nil
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("grind"),
		postgrescontainer.WithUsername("grind"),
		postgrescontainer.WithPassword("grind"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func histogramSampleCount(t *testing.T) uint64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, batchDuration.Write(metric))
	hist := metric.GetHistogram()
	require.NotNil(t, hist)
	return hist.GetSampleCount()
}

func seedOutbox(t *testing.T, ctx context.Context, pool *pgxpool.Pool, sessionID, eventType string) int64 {
	t.Helper()

	topic := "grind_session_events"
	if eventType == "grind.session_state_changed" {
		topic = "grind_session_state_changed"
	}

	payloadBytes, err := json.Marshal(map[string]any{
		"session_id": sessionID,
	})
	require.NoError(t, err)

	row := pool.QueryRow(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
         VALUES ($1,$2,$3,$4,$5,$6)
         RETURNING event_id`,
		"grind_session",
		sessionID,
		eventType,
		topic,
		sessionID,
		payloadBytes,
	)

	var eventID int64
	require.NoError(t, row.Scan(&eventID))
	return eventID
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	path := resolvePath(t, "../../migrations/0001_init.sql")
	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, string(contents))
	require.NoError(t, err)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
