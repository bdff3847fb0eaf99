// Package events defines the event payloads published for downstream
// consumers (feed, squads, notifications).
package events

import "time"

// SessionCreated is emitted when a new grind session is accepted.
type SessionCreated struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStateChanged tracks lifecycle transitions (ACTIVE, PAUSED,
// COMPLETED, ABANDONED) together with the recorded study time at the moment
// of the transition.
type SessionStateChanged struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Status          string    `json:"status"`
	AccumulatedTime int       `json:"accumulated_time"`
	DidNotFinish    bool      `json:"did_not_finish"`
	OccurredAt      time.Time `json:"occurred_at"`
}
