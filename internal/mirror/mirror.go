// Package mirror keeps a local, ticking copy of the active session timer.
// The mirror is cosmetic: it gives the terminal UI a live countdown without
// polling the server every second. Recorded study time is always the
// server-computed accumulated total; the mirror reconciles itself to the
// server on every start and never writes server state on its own.
package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/grind/internal/api"
)

// Timer modes layered on top of raw elapsed time for pomodoro-style UX.
const (
	ModeFocus = "focus"
	ModeBreak = "break"

	DefaultFocusSeconds = 25 * 60
	DefaultBreakSeconds = 5 * 60
)

// SessionStarter is the slice of the REST client the mirror needs. Pause,
// stop and abandon stay with the caller: the mirror alone must never be the
// thing that decides server state.
type SessionStarter interface {
	StartTimer(ctx context.Context, id string) (*api.SessionView, string, error)
}

// Snapshot is a point-in-time copy of the mirror state.
type Snapshot struct {
	SessionID      string
	SessionTitle   string
	SessionSubject string
	SecondsLeft    int
	Mode           string
	Running        bool
}

// Mirror is an injectable timer state container. It is constructed once at
// app start, handed to whatever UI needs it, and persists its state through
// a Store so the counter survives restarts.
type Mirror struct {
	api   SessionStarter
	store *Store
	log   zerolog.Logger

	mu             sync.Mutex
	sessionID      string
	sessionTitle   string
	sessionSubject string
	secondsLeft    int
	mode           string
	running        bool
	cancelTick     context.CancelFunc
}

// New restores the last persisted state from the store. The mirror always
// comes back not-running: a restart cannot know whether the server timer is
// still active, so it waits for an explicit start.
func New(store *Store, starter SessionStarter, log zerolog.Logger) (*Mirror, error) {
	m := &Mirror{
		api:         starter,
		store:       store,
		log:         log,
		secondsLeft: DefaultFocusSeconds,
		mode:        ModeFocus,
	}

	saved, err := store.Load()
	if err != nil {
		return nil, err
	}
	if saved != nil {
		m.sessionID = saved.SessionID
		m.sessionTitle = saved.SessionTitle
		m.sessionSubject = saved.SessionSubject
		m.secondsLeft = saved.SecondsLeft
		if saved.Mode != "" {
			m.mode = saved.Mode
		}
	}
	return m, nil
}

// Snapshot returns a copy of the current state.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		SessionID:      m.sessionID,
		SessionTitle:   m.sessionTitle,
		SessionSubject: m.sessionSubject,
		SecondsLeft:    m.secondsLeft,
		Mode:           m.mode,
		Running:        m.running,
	}
}

// SetSession associates the mirror with a session without starting it.
func (m *Mirror) SetSession(id, title, subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = id
	m.sessionTitle = title
	m.sessionSubject = subject
	m.persistLocked()
}

// Start optimistically marks the timer running and begins ticking, then
// reconciles with the server in the background. The server-reported planned
// duration wins over whatever the local counter held. On server failure the
// mirror reverts to not-running rather than pretending the session started.
func (m *Mirror) Start(ctx context.Context, sessionID string) {
	m.mu.Lock()
	m.sessionID = sessionID
	m.running = true
	m.restartTickLocked()
	m.persistLocked()
	m.mu.Unlock()

	go func() {
		view, _, err := m.api.StartTimer(ctx, sessionID)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.sessionID != sessionID {
			return
		}
		if err != nil {
			m.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to start timer")
			m.running = false
			m.stopTickLocked()
			m.persistLocked()
			return
		}
		if view != nil {
			m.sessionTitle = view.Title
			m.sessionSubject = view.Subject
			if view.Duration > 0 {
				m.secondsLeft = view.Duration
			}
		}
		m.persistLocked()
	}()
}

// Pause stops the local tick. It does not call the server; the caller is
// responsible for hitting the pause endpoint so accumulated time is not
// lost.
func (m *Mirror) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.stopTickLocked()
	m.persistLocked()
}

// Reset stops ticking, restores the given segment length and clears the
// session association.
func (m *Mirror) Reset(focusSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.stopTickLocked()
	m.secondsLeft = focusSeconds
	m.mode = ModeFocus
	m.sessionID = ""
	m.sessionTitle = ""
	m.sessionSubject = ""
	m.persistLocked()
}

// SetMode switches between focus and break and restores that mode's default
// segment length.
func (m *Mirror) SetMode(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	if mode == ModeBreak {
		m.secondsLeft = DefaultBreakSeconds
	} else {
		m.secondsLeft = DefaultFocusSeconds
	}
	m.persistLocked()
}

// Close stops any tick loop and persists the final state.
func (m *Mirror) Close() error {
	m.mu.Lock()
	m.running = false
	m.stopTickLocked()
	m.persistLocked()
	m.mu.Unlock()
	return m.store.Close()
}

// restartTickLocked cancels any existing loop before starting a new one so
// running-state transitions never leave two tickers decrementing at once.
func (m *Mirror) restartTickLocked() {
	m.stopTickLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelTick = cancel
	go m.tickLoop(ctx)
}

func (m *Mirror) stopTickLocked() {
	if m.cancelTick != nil {
		m.cancelTick()
		m.cancelTick = nil
	}
}

// tickLoop decrements the counter once per second. Ticks only touch local
// state; they never perform network I/O.
func (m *Mirror) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			if !m.running {
				m.mu.Unlock()
				return
			}
			if m.secondsLeft > 0 {
				m.secondsLeft--
			}
			if m.secondsLeft == 0 {
				m.running = false
				m.stopTickLocked()
			}
			m.persistLocked()
			m.mu.Unlock()
		}
	}
}

func (m *Mirror) persistLocked() {
	err := m.store.Save(State{
		SessionID:      m.sessionID,
		SessionTitle:   m.sessionTitle,
		SessionSubject: m.sessionSubject,
		SecondsLeft:    m.secondsLeft,
		Mode:           m.mode,
	})
	if err != nil {
		m.log.Error().Err(err).Msg("failed to persist timer state")
	}
}
