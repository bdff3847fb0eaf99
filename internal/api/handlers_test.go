package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"example.com/grind/internal/auth"
	"example.com/grind/internal/domain"
)

func newTestMux(repo domain.Repository, now time.Time) *http.ServeMux {
	service := domain.NewServiceWithClock(repo, func() time.Time { return now })
	handler := NewHandler(service, zerolog.Nop())
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func authedRequest(method, target string, body string, subject string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	claims := &auth.Claims{Subject: subject, ExpiresAt: time.Now().Add(time.Hour)}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestCreateSessionSuccess(t *testing.T) {
	repo := newMockRepo()
	mux := newTestMux(repo, time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC))

	req := authedRequest(http.MethodPost, "/grind-sessions",
		`{"title":"Integrals","subject":"calculus","duration":1500}`, "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Grind session created successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.GrindSession == nil || resp.GrindSession.Status != "ACTIVE" {
		t.Fatalf("expected ACTIVE session, got %+v", resp.GrindSession)
	}
	if resp.GrindSession.UserID != "user-1" {
		t.Fatalf("unexpected owner %q", resp.GrindSession.UserID)
	}
	if resp.GrindSession.StartedAt == nil || resp.GrindSession.FirstStartedAt == nil {
		t.Fatal("expected segment anchor and first start to be set")
	}
}

func TestCreateSessionReportsAllViolations(t *testing.T) {
	mux := newTestMux(newMockRepo(), time.Now())

	req := authedRequest(http.MethodPost, "/grind-sessions", `{}`, "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Title is required") || !strings.Contains(body, "Subject is required") {
		t.Fatalf("expected both violations in %q", body)
	}
}

func TestMissingClaimsRejected(t *testing.T) {
	mux := newTestMux(newMockRepo(), time.Now())

	req := httptest.NewRequest(http.MethodGet, "/grind-sessions", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestPauseActiveSession(t *testing.T) {
	started := time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.seed(domain.GrindSession{
		ID:             "sess-1",
		OwnerID:        "user-1",
		Title:          "Integrals",
		Subject:        "calculus",
		Status:         domain.StatusActive,
		StartedAt:      &started,
		FirstStartedAt: &started,
		CreatedAt:      started,
		UpdatedAt:      started,
	})
	mux := newTestMux(repo, started.Add(125*time.Second))

	req := authedRequest(http.MethodPost, "/grind-sessions/sess-1/pause", "", "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.GrindSession.Status != "PAUSED" {
		t.Fatalf("expected PAUSED got %s", resp.GrindSession.Status)
	}
	if resp.GrindSession.AccumulatedTime != 125 {
		t.Fatalf("expected 125 accumulated seconds got %d", resp.GrindSession.AccumulatedTime)
	}
	if resp.GrindSession.StartedAt != nil {
		t.Fatal("expected segment anchor cleared on pause")
	}
}

func TestStopCompletedSessionIsIdempotent(t *testing.T) {
	ended := time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.seed(domain.GrindSession{
		ID:              "sess-1",
		OwnerID:         "user-1",
		Title:           "Integrals",
		Subject:         "calculus",
		Status:          domain.StatusCompleted,
		AccumulatedTime: 135,
		EndedAt:         &ended,
		CreatedAt:       ended,
		UpdatedAt:       ended,
	})
	mux := newTestMux(repo, ended.Add(time.Hour))

	req := authedRequest(http.MethodPost, "/grind-sessions/sess-1/stop", "", "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Session already completed" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.GrindSession.AccumulatedTime != 135 {
		t.Fatalf("expected accumulated time untouched, got %d", resp.GrindSession.AccumulatedTime)
	}
	if repo.updates != 0 {
		t.Fatalf("expected no persistence write, got %d", repo.updates)
	}
}

func TestPauseFromPausedRejected(t *testing.T) {
	now := time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.seed(domain.GrindSession{
		ID:              "sess-1",
		OwnerID:         "user-1",
		Status:          domain.StatusPaused,
		AccumulatedTime: 60,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	mux := newTestMux(repo, now.Add(time.Minute))

	req := authedRequest(http.MethodPost, "/grind-sessions/sess-1/pause", "", "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestForeignSessionConcealed(t *testing.T) {
	now := time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.seed(domain.GrindSession{
		ID:        "sess-1",
		OwnerID:   "user-1",
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	mux := newTestMux(repo, now)

	req := authedRequest(http.MethodGet, "/grind-sessions/sess-1", "", "user-2")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "not found or unauthorized") {
		t.Fatalf("expected concealed message, got %q", rr.Body.String())
	}
}

func TestUnknownTimerAction(t *testing.T) {
	mux := newTestMux(newMockRepo(), time.Now())

	req := authedRequest(http.MethodPost, "/grind-sessions/sess-1/archive", "", "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestListSessionsEnvelope(t *testing.T) {
	now := time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.seed(domain.GrindSession{
		ID:        "sess-1",
		OwnerID:   "user-1",
		Title:     "Integrals",
		Subject:   "calculus",
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	mux := newTestMux(repo, now)

	req := authedRequest(http.MethodGet, "/grind-sessions", "", "user-1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp SessionListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.GrindSessions) != 1 {
		t.Fatalf("expected 1 session got %d", len(resp.GrindSessions))
	}
	if resp.Message != "Grind sessions fetched successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

type mockRepo struct {
	sessions map[string]domain.GrindSession
	updates  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{sessions: map[string]domain.GrindSession{}}
}

func (m *mockRepo) seed(session domain.GrindSession) {
	m.sessions[session.ID] = session
}

func (m *mockRepo) Get(ctx context.Context, id string) (*domain.GrindSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (m *mockRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.GrindSession, error) {
	var out []domain.GrindSession
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepo) Create(ctx context.Context, session domain.GrindSession, events ...string) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockRepo) Update(ctx context.Context, session domain.GrindSession, events ...string) error {
	m.sessions[session.ID] = session
	m.updates++
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}
