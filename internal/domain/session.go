// Package domain defines the grind session aggregate, the timer state
// machine and the lifecycle service that orchestrates them.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound collapses "record absent" and "caller is not the owner"
	// into one outcome so callers cannot probe for foreign session ids.
	ErrNotFound = errors.New("grind session not found or unauthorized")
	// ErrInvalidTransition marks a timer operation attempted from an
	// incompatible status.
	ErrInvalidTransition = errors.New("invalid session state transition")
)

// ValidationError aggregates every missing-field violation from a create
// request into a single failure.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, ", ")
}

// SessionStatus is the persisted lifecycle status of a grind session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusPaused    SessionStatus = "PAUSED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusAbandoned SessionStatus = "ABANDONED"
)

// Terminal reports whether no further timer transitions are permitted.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// GrindSession is the canonical study-session record stored in Postgres.
// AccumulatedTime counts whole seconds from completed segments only;
// StartedAt is strictly the anchor of the current running segment and is
// reset on every resume. FirstStartedAt records when the session first went
// active and never changes afterwards.
type GrindSession struct {
	ID              string
	OwnerID         string
	Title           string
	Subject         string
	Notes           string
	PhotoURL        string
	Status          SessionStatus
	Duration        int // planned segment length in seconds
	StartedAt       *time.Time
	FirstStartedAt  *time.Time
	AccumulatedTime int
	LastPausedAt    *time.Time
	EndedAt         *time.Time
	PomodoroSets    int
	FocusScore      int
	IsHardMode      bool
	DidNotFinish    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TimerState projects the persisted record into the tagged timer state. A
// record that is ACTIVE without a segment anchor is the never-started
// pre-state.
func (g *GrindSession) TimerState() (TimerState, error) {
	switch g.Status {
	case StatusActive:
		if g.StartedAt == nil {
			return NotStarted{}, nil
		}
		return Running{Since: *g.StartedAt, Accumulated: g.AccumulatedTime}, nil
	case StatusPaused:
		pausedAt := g.UpdatedAt
		if g.LastPausedAt != nil {
			pausedAt = *g.LastPausedAt
		}
		return Paused{Accumulated: g.AccumulatedTime, PausedAt: pausedAt}, nil
	case StatusCompleted:
		endedAt := g.UpdatedAt
		if g.EndedAt != nil {
			endedAt = *g.EndedAt
		}
		return Completed{Accumulated: g.AccumulatedTime, EndedAt: endedAt}, nil
	case StatusAbandoned:
		return Abandoned{Accumulated: g.AccumulatedTime}, nil
	default:
		return nil, fmt.Errorf("session %s has unknown status %q", g.ID, g.Status)
	}
}

// applyTimerState writes a timer state back onto the record.
func (g *GrindSession) applyTimerState(state TimerState, now time.Time) {
	switch s := state.(type) {
	case Running:
		g.Status = StatusActive
		since := s.Since
		g.StartedAt = &since
		if g.FirstStartedAt == nil {
			g.FirstStartedAt = &since
		}
		g.AccumulatedTime = s.Accumulated
	case Paused:
		g.Status = StatusPaused
		g.StartedAt = nil
		pausedAt := s.PausedAt
		g.LastPausedAt = &pausedAt
		g.AccumulatedTime = s.Accumulated
	case Completed:
		g.Status = StatusCompleted
		g.StartedAt = nil
		endedAt := s.EndedAt
		g.EndedAt = &endedAt
		g.AccumulatedTime = s.Accumulated
	case Abandoned:
		g.Status = StatusAbandoned
		g.StartedAt = nil
		g.AccumulatedTime = s.Accumulated
		g.DidNotFinish = true
	}
	g.UpdatedAt = now
}

// Elapsed returns total recorded seconds for the record at now, including
// the running segment of an active session.
func (g *GrindSession) Elapsed(now time.Time) (int, error) {
	state, err := g.TimerState()
	if err != nil {
		return 0, err
	}
	return state.Elapsed(now), nil
}

// Event types recorded to the outbox alongside session writes.
const (
	EventSessionCreated      = "grind.session_created"
	EventSessionStateChanged = "grind.session_state_changed"
)

// Repository captures persistence operations for grind sessions. Get
// returns (nil, nil) when no record exists; ownership filtering is the
// service's responsibility. Create and Update atomically record the named
// outbox events together with the row write.
type Repository interface {
	Get(ctx context.Context, id string) (*GrindSession, error)
	ListByOwner(ctx context.Context, ownerID string) ([]GrindSession, error)
	Create(ctx context.Context, session GrindSession, events ...string) error
	Update(ctx context.Context, session GrindSession, events ...string) error
	Delete(ctx context.Context, id string) error
}
