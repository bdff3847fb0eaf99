package domain

import (
	"fmt"
	"time"
)

// TimerState is the timing-relevant slice of a grind session, expressed as a
// tagged state instead of nullable timestamp checks. Exactly one concrete
// state holds at any time: NotStarted, Running, Paused, Completed or
// Abandoned. Transitions are pure functions of (state, now) so the machine
// can be tested against a fixed clock.
type TimerState interface {
	// Elapsed returns total recorded seconds, including the currently
	// running segment. Never less than the accumulated total, even when
	// clock skew makes now precede the segment anchor.
	Elapsed(now time.Time) int

	timerState()
}

// NotStarted is the pre-state of a session whose timer was never activated.
type NotStarted struct{}

// Running is an active segment anchored at Since. Accumulated holds seconds
// from completed prior segments only.
type Running struct {
	Since       time.Time
	Accumulated int
}

// Paused holds the accumulated total between segments.
type Paused struct {
	Accumulated int
	PausedAt    time.Time
}

// Completed is terminal.
type Completed struct {
	Accumulated int
	EndedAt     time.Time
}

// Abandoned is terminal. The segment that was running at abandon time, if
// any, is deliberately not counted.
type Abandoned struct {
	Accumulated int
}

func (NotStarted) timerState() {}
func (Running) timerState()    {}
func (Paused) timerState()     {}
func (Completed) timerState()  {}
func (Abandoned) timerState()  {}

func (NotStarted) Elapsed(time.Time) int { return 0 }

func (s Running) Elapsed(now time.Time) int {
	return s.Accumulated + segmentSeconds(s.Since, now)
}

func (s Paused) Elapsed(time.Time) int    { return s.Accumulated }
func (s Completed) Elapsed(time.Time) int { return s.Accumulated }
func (s Abandoned) Elapsed(time.Time) int { return s.Accumulated }

// segmentSeconds measures a segment in whole seconds, flooring the
// sub-second remainder and clamping negative deltas to zero. Flooring biases
// slightly short so a user is never credited time they did not spend.
func segmentSeconds(since, now time.Time) int {
	if !now.After(since) {
		return 0
	}
	return int(now.Sub(since) / time.Second)
}

// StartTimer activates the timer, beginning a new measured segment at now.
// Resuming from Paused resets the segment anchor; the accumulated total is
// untouched until the next pause or stop. Starting while already Running is
// an idempotent no-op (changed=false).
func StartTimer(state TimerState, now time.Time) (TimerState, bool, error) {
	switch s := state.(type) {
	case Running:
		return s, false, nil
	case NotStarted:
		return Running{Since: now}, true, nil
	case Paused:
		return Running{Since: now, Accumulated: s.Accumulated}, true, nil
	case Completed:
		return nil, false, fmt.Errorf("%w: session is already completed and cannot be started", ErrInvalidTransition)
	case Abandoned:
		return nil, false, fmt.Errorf("%w: session is abandoned and cannot be started", ErrInvalidTransition)
	default:
		return nil, false, fmt.Errorf("%w: unknown timer state %T", ErrInvalidTransition, state)
	}
}

// PauseTimer folds the running segment into the accumulated total. Valid
// only while Running.
func PauseTimer(state TimerState, now time.Time) (TimerState, bool, error) {
	s, ok := state.(Running)
	if !ok {
		return nil, false, fmt.Errorf("%w: session is not active and cannot be paused", ErrInvalidTransition)
	}
	return Paused{
		Accumulated: s.Accumulated + segmentSeconds(s.Since, now),
		PausedAt:    now,
	}, true, nil
}

// StopTimer completes the session, folding the running segment if one
// exists. Stopping an already Completed session is an idempotent no-op
// (changed=false); stopping an Abandoned session is rejected.
func StopTimer(state TimerState, now time.Time) (TimerState, bool, error) {
	switch s := state.(type) {
	case Completed:
		return s, false, nil
	case Running:
		return Completed{
			Accumulated: s.Accumulated + segmentSeconds(s.Since, now),
			EndedAt:     now,
		}, true, nil
	case Paused:
		return Completed{Accumulated: s.Accumulated, EndedAt: now}, true, nil
	case NotStarted:
		return Completed{EndedAt: now}, true, nil
	case Abandoned:
		return nil, false, fmt.Errorf("%w: session is abandoned and cannot be stopped", ErrInvalidTransition)
	default:
		return nil, false, fmt.Errorf("%w: unknown timer state %T", ErrInvalidTransition, state)
	}
}

// AbandonTimer marks the session abandoned. Permitted from any state,
// terminal ones included, as a forced override. The in-flight segment of a
// Running session is discarded, not folded.
func AbandonTimer(state TimerState, now time.Time) (TimerState, bool, error) {
	switch s := state.(type) {
	case Running:
		return Abandoned{Accumulated: s.Accumulated}, true, nil
	case Paused:
		return Abandoned{Accumulated: s.Accumulated}, true, nil
	case Completed:
		return Abandoned{Accumulated: s.Accumulated}, true, nil
	case Abandoned:
		return s, true, nil
	default:
		return Abandoned{}, true, nil
	}
}
