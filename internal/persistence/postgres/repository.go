// Package postgres provides pgx-backed persistence for grind sessions and
// their outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/grind/internal/domain"
	"example.com/grind/internal/events"
	"example.com/grind/internal/observability"
)

const sessionColumns = `id, owner_id, title, subject, notes, photo_url, status, duration,
        started_at, first_started_at, accumulated_time, last_paused_at, ended_at,
        pomodoro_sets, focus_score, is_hard_mode, did_not_finish, created_at, updated_at`

// Repository implements domain.Repository on a pgx connection pool. Writes
// that carry lifecycle events insert the session row and its outbox rows in
// one transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get retrieves a session by id. Returns (nil, nil) when absent; ownership
// checks belong to the lifecycle service.
func (r *Repository) Get(ctx context.Context, id string) (*domain.GrindSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM grind_sessions WHERE id=$1`

	row := r.pool.QueryRow(ctx, query, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// ListByOwner returns the owner's sessions, newest created first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]domain.GrindSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM grind_sessions
        WHERE owner_id=$1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]domain.GrindSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create persists the session and records outbox events inside a single
// transaction.
func (r *Repository) Create(ctx context.Context, session domain.GrindSession, eventTypes ...string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	insert := `INSERT INTO grind_sessions (` + sessionColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`

	_, err = tx.Exec(ctx, insert,
		session.ID,
		session.OwnerID,
		session.Title,
		session.Subject,
		session.Notes,
		session.PhotoURL,
		session.Status,
		session.Duration,
		session.StartedAt,
		session.FirstStartedAt,
		session.AccumulatedTime,
		session.LastPausedAt,
		session.EndedAt,
		session.PomodoroSets,
		session.FocusScore,
		session.IsHardMode,
		session.DidNotFinish,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, session, eventTypes); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordSessionPersisted(session.UpdatedAt)
	return nil
}

// Update overwrites the session row and records outbox events inside a
// single transaction. The update is atomic per record; the surrounding
// load-compute-persist sequence is not serialized (single-device usage is
// the documented expectation).
func (r *Repository) Update(ctx context.Context, session domain.GrindSession, eventTypes ...string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	update := `UPDATE grind_sessions SET
        title=$2, subject=$3, notes=$4, photo_url=$5, status=$6, duration=$7,
        started_at=$8, first_started_at=$9, accumulated_time=$10, last_paused_at=$11,
        ended_at=$12, pomodoro_sets=$13, focus_score=$14, is_hard_mode=$15,
        did_not_finish=$16, updated_at=$17
        WHERE id=$1`

	tag, err := tx.Exec(ctx, update,
		session.ID,
		session.Title,
		session.Subject,
		session.Notes,
		session.PhotoURL,
		session.Status,
		session.Duration,
		session.StartedAt,
		session.FirstStartedAt,
		session.AccumulatedTime,
		session.LastPausedAt,
		session.EndedAt,
		session.PomodoroSets,
		session.FocusScore,
		session.IsHardMode,
		session.DidNotFinish,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("grind session %s vanished during update", session.ID)
		return err
	}

	if err = r.insertOutbox(ctx, tx, session, eventTypes); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordSessionPersisted(session.UpdatedAt)
	return nil
}

// Delete removes a session row. Outbox rows already published stay behind.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM grind_sessions WHERE id=$1`, id)
	return err
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, session domain.GrindSession, eventTypes []string) error {
	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`

	for _, eventType := range eventTypes {
		meta, ok := eventCatalog[eventType]
		if !ok {
			return fmt.Errorf("unknown event type: %s", eventType)
		}

		body, err := json.Marshal(meta.PayloadFn(session))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, stmt,
			"grind_session",
			session.ID,
			eventType,
			meta.Topic,
			meta.PartitionKeyFn(session),
			body,
		); err != nil {
			return err
		}
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSession(row scannable) (*domain.GrindSession, error) {
	var session domain.GrindSession
	err := row.Scan(
		&session.ID,
		&session.OwnerID,
		&session.Title,
		&session.Subject,
		&session.Notes,
		&session.PhotoURL,
		&session.Status,
		&session.Duration,
		&session.StartedAt,
		&session.FirstStartedAt,
		&session.AccumulatedTime,
		&session.LastPausedAt,
		&session.EndedAt,
		&session.PomodoroSets,
		&session.FocusScore,
		&session.IsHardMode,
		&session.DidNotFinish,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// EventMetadata describes how to route and build an outbox event.
type EventMetadata struct {
	Topic          string
	PartitionKeyFn func(domain.GrindSession) string
	PayloadFn      func(domain.GrindSession) interface{}
}

var eventCatalog = map[string]EventMetadata{
	domain.EventSessionCreated: {
		Topic: "grind_session_events",
		PartitionKeyFn: func(s domain.GrindSession) string {
			return s.OwnerID
		},
		PayloadFn: func(s domain.GrindSession) interface{} {
			return events.SessionCreated{
				SessionID: s.ID,
				UserID:    s.OwnerID,
				Title:     s.Title,
				Subject:   s.Subject,
				Duration:  s.Duration,
				CreatedAt: s.CreatedAt,
			}
		},
	},
	domain.EventSessionStateChanged: {
		Topic: "grind_session_state_changed",
		PartitionKeyFn: func(s domain.GrindSession) string {
			return s.ID
		},
		PayloadFn: func(s domain.GrindSession) interface{} {
			return events.SessionStateChanged{
				SessionID:       s.ID,
				UserID:          s.OwnerID,
				Status:          string(s.Status),
				AccumulatedTime: s.AccumulatedTime,
				DidNotFinish:    s.DidNotFinish,
				OccurredAt:      s.UpdatedAt,
			}
		},
	},
}
