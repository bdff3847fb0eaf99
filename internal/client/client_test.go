package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/grind/internal/api"
)

func TestStartTimerSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/grind-sessions/sess-1/start" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token-123" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}

		json.NewEncoder(w).Encode(api.SessionResponse{
			GrindSession: &api.SessionView{ID: "sess-1", Status: "ACTIVE", Duration: 1500},
			Message:      "Timer started successfully",
		})
	}))
	defer server.Close()

	c := New(server.URL, "token-123")
	session, message, err := c.StartTimer(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message != "Timer started successfully" {
		t.Fatalf("unexpected message %q", message)
	}
	if session.ID != "sess-1" || session.Duration != 1500 {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCreateSessionPostsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Title != "Integrals" || req.Subject != "calculus" {
			t.Errorf("unexpected payload %+v", req)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.SessionResponse{
			GrindSession: &api.SessionView{ID: "sess-1", Title: req.Title, Subject: req.Subject},
			Message:      "Grind session created successfully",
		})
	}))
	defer server.Close()

	c := New(server.URL, "token-123")
	session, _, err := c.CreateSession(context.Background(), api.CreateSessionRequest{
		Title:   "Integrals",
		Subject: "calculus",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "sess-1" {
		t.Fatalf("unexpected session id %q", session.ID)
	}
}

func TestListSessionsDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.SessionListResponse{
			GrindSessions: []api.SessionView{{ID: "a"}, {ID: "b"}},
			Message:       "Grind sessions fetched successfully",
		})
	}))
	defer server.Close()

	c := New(server.URL, "token-123")
	sessions, _, err := c.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions got %d", len(sessions))
	}
}

func TestServerErrorBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "grind session not found or unauthorized"})
	}))
	defer server.Close()

	c := New(server.URL, "token-123")
	_, _, err := c.GetSession(context.Background(), "sess-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if apiErr.Message != "grind session not found or unauthorized" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestErrorWithoutBodyFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL, "token-123")
	_, _, err := c.ListSessions(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}
