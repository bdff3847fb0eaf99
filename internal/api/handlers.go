// Package api exposes the HTTP handlers for grind session endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"example.com/grind/internal/auth"
	"example.com/grind/internal/domain"
	"example.com/grind/internal/observability"
)

// Handler coordinates HTTP requests with the lifecycle service.
type Handler struct {
	service *domain.Service
	log     zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/grind-sessions", h.sessions)
	mux.HandleFunc("/grind-sessions/", h.sessionByID)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		writeMessage(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) sessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/grind-sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "missing session id")
		return
	}

	if action != "" {
		if r.Method != http.MethodPost {
			writeMessage(w, http.StatusMethodNotAllowed, "unsupported method")
			return
		}
		h.timerAction(w, r, id, action)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getSession(w, r, id)
	case http.MethodPut:
		h.updateSession(w, r, id)
	case http.MethodDelete:
		h.deleteSession(w, r, id)
	default:
		writeMessage(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "unable to parse body")
		return
	}

	session, msg, err := h.service.CreateSession(r.Context(), domain.CreateSessionInput{
		OwnerID:      claims.Subject,
		Title:        req.Title,
		Subject:      req.Subject,
		Notes:        req.Notes,
		PhotoURL:     req.PhotoURL,
		Duration:     req.Duration,
		PomodoroSets: req.PomodoroSets,
		FocusScore:   req.FocusScore,
		IsHardMode:   req.IsHardMode,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	observability.RecordTransition("create")
	writeJSON(w, http.StatusCreated, SessionResponse{
		GrindSession: toSessionView(session),
		Message:      msg,
	})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	sessions, msg, err := h.service.ListSessions(r.Context(), claims.Subject)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	items := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		items = append(items, *toSessionView(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, SessionListResponse{
		GrindSessions: items,
		Message:       msg,
	})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	session, msg, err := h.service.GetSession(r.Context(), id, claims.Subject)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		GrindSession: toSessionView(session),
		Message:      msg,
	})
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "unable to parse body")
		return
	}

	session, msg, err := h.service.UpdateSession(r.Context(), id, claims.Subject, domain.UpdateSessionInput{
		Title:        req.Title,
		Subject:      req.Subject,
		Notes:        req.Notes,
		PhotoURL:     req.PhotoURL,
		Duration:     req.Duration,
		PomodoroSets: req.PomodoroSets,
		FocusScore:   req.FocusScore,
		IsHardMode:   req.IsHardMode,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		GrindSession: toSessionView(session),
		Message:      msg,
	})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	session, msg, err := h.service.DeleteSession(r.Context(), id, claims.Subject)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		GrindSession: toSessionView(session),
		Message:      msg,
	})
}

func (h *Handler) timerAction(w http.ResponseWriter, r *http.Request, id, action string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var (
		session *domain.GrindSession
		msg     string
		err     error
	)
	switch action {
	case "start":
		session, msg, err = h.service.StartSession(r.Context(), id, claims.Subject)
	case "pause":
		session, msg, err = h.service.PauseSession(r.Context(), id, claims.Subject)
	case "stop":
		session, msg, err = h.service.StopSession(r.Context(), id, claims.Subject)
	case "abandon":
		session, msg, err = h.service.AbandonSession(r.Context(), id, claims.Subject)
	default:
		writeMessage(w, http.StatusNotFound, "unknown session action")
		return
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	observability.RecordTransition(action)
	writeJSON(w, http.StatusOK, SessionResponse{
		GrindSession: toSessionView(session),
		Message:      msg,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeMessage(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("session handler failure")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// CreateSessionRequest is the payload for POST /grind-sessions.
type CreateSessionRequest struct {
	Title        string `json:"title"`
	Subject      string `json:"subject"`
	Notes        string `json:"notes"`
	PhotoURL     string `json:"photoUrl"`
	Duration     int    `json:"duration"`
	PomodoroSets int    `json:"pomodoroSets"`
	FocusScore   int    `json:"focusScore"`
	IsHardMode   bool   `json:"isHardMode"`
}

// UpdateSessionRequest is the payload for PUT /grind-sessions/:id. Absent
// fields are left unchanged.
type UpdateSessionRequest struct {
	Title        *string `json:"title"`
	Subject      *string `json:"subject"`
	Notes        *string `json:"notes"`
	PhotoURL     *string `json:"photoUrl"`
	Duration     *int    `json:"duration"`
	PomodoroSets *int    `json:"pomodoroSets"`
	FocusScore   *int    `json:"focusScore"`
	IsHardMode   *bool   `json:"isHardMode"`
}

// SessionView is the wire shape of a grind session record.
type SessionView struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	Notes           string     `json:"notes"`
	PhotoURL        string     `json:"photoUrl"`
	Status          string     `json:"status"`
	Duration        int        `json:"duration"`
	StartedAt       *time.Time `json:"startedAt"`
	FirstStartedAt  *time.Time `json:"firstStartedAt"`
	AccumulatedTime int        `json:"accumulatedTime"`
	LastPausedAt    *time.Time `json:"lastPausedAt"`
	EndedAt         *time.Time `json:"endedAt"`
	PomodoroSets    int        `json:"pomodoroSets"`
	FocusScore      int        `json:"focusScore"`
	IsHardMode      bool       `json:"isHardMode"`
	DidNotFinish    bool       `json:"didNotFinish"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SessionResponse is the envelope for single-record endpoints.
type SessionResponse struct {
	GrindSession *SessionView `json:"grindSession"`
	Message      string       `json:"message"`
}

// SessionListResponse is the envelope for the list endpoint.
type SessionListResponse struct {
	GrindSessions []SessionView `json:"grindSessions"`
	Message       string        `json:"message"`
}

func toSessionView(s *domain.GrindSession) *SessionView {
	if s == nil {
		return nil
	}
	return &SessionView{
		ID:              s.ID,
		UserID:          s.OwnerID,
		Title:           s.Title,
		Subject:         s.Subject,
		Notes:           s.Notes,
		PhotoURL:        s.PhotoURL,
		Status:          string(s.Status),
		Duration:        s.Duration,
		StartedAt:       s.StartedAt,
		FirstStartedAt:  s.FirstStartedAt,
		AccumulatedTime: s.AccumulatedTime,
		LastPausedAt:    s.LastPausedAt,
		EndedAt:         s.EndedAt,
		PomodoroSets:    s.PomodoroSets,
		FocusScore:      s.FocusScore,
		IsHardMode:      s.IsHardMode,
		DidNotFinish:    s.DidNotFinish,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
