package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/grind/internal/observability"
)

// Service orchestrates session lifecycle workflows. It is the only writer
// of session records: every operation loads the record, verifies ownership,
// applies the timer state machine where relevant and persists the result in
// a single update.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service using the wall clock.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceWithClock constructs a Service with an injected clock for
// deterministic tests.
func NewServiceWithClock(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// CreateSessionInput captures the create payload from the API layer.
type CreateSessionInput struct {
	OwnerID      string
	Title        string
	Subject      string
	Notes        string
	PhotoURL     string
	Duration     int
	PomodoroSets int
	FocusScore   int
	IsHardMode   bool
}

// UpdateSessionInput carries the mutable metadata fields of a session.
// Nil pointers leave the stored value untouched. Timing fields are owned by
// the timer transitions and cannot be edited here.
type UpdateSessionInput struct {
	Title        *string
	Subject      *string
	Notes        *string
	PhotoURL     *string
	Duration     *int
	PomodoroSets *int
	FocusScore   *int
	IsHardMode   *bool
}

// CreateSession validates the payload and persists a new session. The
// session starts ACTIVE with its first segment anchored at now. All
// missing-field violations are reported together.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (*GrindSession, string, error) {
	var violations []string
	if strings.TrimSpace(input.Title) == "" {
		violations = append(violations, "Title is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		violations = append(violations, "Subject is required")
	}
	if len(violations) > 0 {
		return nil, "", &ValidationError{Violations: violations}
	}

	now := s.now().UTC()
	session := GrindSession{
		ID:             uuid.NewString(),
		OwnerID:        input.OwnerID,
		Title:          input.Title,
		Subject:        input.Subject,
		Notes:          input.Notes,
		PhotoURL:       input.PhotoURL,
		Status:         StatusActive,
		Duration:       input.Duration,
		StartedAt:      &now,
		FirstStartedAt: &now,
		PomodoroSets:   input.PomodoroSets,
		FocusScore:     input.FocusScore,
		IsHardMode:     input.IsHardMode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, session, EventSessionCreated, EventSessionStateChanged); err != nil {
		return nil, "", err
	}
	return &session, "Grind session created successfully", nil
}

// GetSession fetches one session for its owner.
func (s *Service) GetSession(ctx context.Context, id, ownerID string) (*GrindSession, string, error) {
	session, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, "", err
	}
	return session, "Grind session fetched successfully", nil
}

// ListSessions returns all of the owner's sessions, newest created first.
func (s *Service) ListSessions(ctx context.Context, ownerID string) ([]GrindSession, string, error) {
	sessions, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}
	return sessions, "Grind sessions fetched successfully", nil
}

// UpdateSession edits descriptive metadata on an owned session.
func (s *Service) UpdateSession(ctx context.Context, id, ownerID string, input UpdateSessionInput) (*GrindSession, string, error) {
	session, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, "", err
	}

	if input.Title != nil {
		session.Title = *input.Title
	}
	if input.Subject != nil {
		session.Subject = *input.Subject
	}
	if input.Notes != nil {
		session.Notes = *input.Notes
	}
	if input.PhotoURL != nil {
		session.PhotoURL = *input.PhotoURL
	}
	if input.Duration != nil {
		session.Duration = *input.Duration
	}
	if input.PomodoroSets != nil {
		session.PomodoroSets = *input.PomodoroSets
	}
	if input.FocusScore != nil {
		session.FocusScore = *input.FocusScore
	}
	if input.IsHardMode != nil {
		session.IsHardMode = *input.IsHardMode
	}
	session.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, *session); err != nil {
		return nil, "", err
	}
	return session, "Grind session updated successfully", nil
}

// DeleteSession removes an owned session and returns the deleted record.
func (s *Service) DeleteSession(ctx context.Context, id, ownerID string) (*GrindSession, string, error) {
	session, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, "", err
	}
	return session, "Grind session deleted successfully", nil
}

// StartSession starts or resumes the timer. Starting an already running
// session reports success without touching the record.
func (s *Service) StartSession(ctx context.Context, id, ownerID string) (*GrindSession, string, error) {
	return s.transition(ctx, id, ownerID, StartTimer, "Timer started successfully", "Timer is already running")
}

// PauseSession pauses an active timer, folding the running segment into the
// accumulated total.
func (s *Service) PauseSession(ctx context.Context, id, ownerID string) (*GrindSession, string, error) {
	return s.transition(ctx, id, ownerID, PauseTimer, "Timer paused successfully", "")
}

// StopSession completes the session. Stopping an already completed session
// reports success without touching the record.
func (s *Service) StopSession(ctx context.Context, id, ownerID string) (*GrindSession, string, error) {
	return s.transition(ctx, id, ownerID, StopTimer, "Timer stopped and session completed", "Session already completed")
}

// AbandonSession marks the session abandoned and flags it did-not-finish.
func (s *Service) AbandonSession(ctx context.Context, id, ownerID string) (*GrindSession, string, error) {
	return s.transition(ctx, id, ownerID, AbandonTimer, "Session abandoned successfully", "")
}

// Elapsed reports total recorded seconds for an owned session at the
// current clock, without mutating it.
func (s *Service) Elapsed(ctx context.Context, id, ownerID string) (int, error) {
	session, err := s.load(ctx, id, ownerID)
	if err != nil {
		return 0, err
	}
	return session.Elapsed(s.now().UTC())
}

type transitionFn func(TimerState, time.Time) (TimerState, bool, error)

func (s *Service) transition(ctx context.Context, id, ownerID string, apply transitionFn, changedMsg, noopMsg string) (*GrindSession, string, error) {
	session, err := s.load(ctx, id, ownerID)
	if err != nil {
		return nil, "", err
	}

	state, err := session.TimerState()
	if err != nil {
		return nil, "", err
	}

	now := s.now().UTC()
	next, changed, err := apply(state, now)
	if err != nil {
		return nil, "", err
	}
	if !changed {
		return session, noopMsg, nil
	}

	prevAccumulated := session.AccumulatedTime
	session.applyTimerState(next, now)
	if err := s.repo.Update(ctx, *session, EventSessionStateChanged); err != nil {
		return nil, "", err
	}
	observability.RecordStudySeconds(session.AccumulatedTime - prevAccumulated)
	return session, changedMsg, nil
}

func (s *Service) load(ctx context.Context, id, ownerID string) (*GrindSession, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return session, nil
}
