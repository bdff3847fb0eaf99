// Package client is a typed REST client for the grind session API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"example.com/grind/internal/api"
)

// APIError carries the HTTP status and server message of a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the grind session API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New constructs a Client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateSession creates a new grind session.
func (c *Client) CreateSession(ctx context.Context, req api.CreateSessionRequest) (*api.SessionView, string, error) {
	var resp api.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/grind-sessions", req, &resp); err != nil {
		return nil, "", err
	}
	return resp.GrindSession, resp.Message, nil
}

// ListSessions returns all of the caller's sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]api.SessionView, string, error) {
	var resp api.SessionListResponse
	if err := c.do(ctx, http.MethodGet, "/grind-sessions", nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.GrindSessions, resp.Message, nil
}

// GetSession fetches a single session.
func (c *Client) GetSession(ctx context.Context, id string) (*api.SessionView, string, error) {
	return c.sessionCall(ctx, http.MethodGet, id, "")
}

// UpdateSession edits session metadata.
func (c *Client) UpdateSession(ctx context.Context, id string, req api.UpdateSessionRequest) (*api.SessionView, string, error) {
	var resp api.SessionResponse
	if err := c.do(ctx, http.MethodPut, "/grind-sessions/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, "", err
	}
	return resp.GrindSession, resp.Message, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) (*api.SessionView, string, error) {
	return c.sessionCall(ctx, http.MethodDelete, id, "")
}

// StartTimer starts or resumes the server timer.
func (c *Client) StartTimer(ctx context.Context, id string) (*api.SessionView, string, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "start")
}

// PauseTimer pauses the server timer.
func (c *Client) PauseTimer(ctx context.Context, id string) (*api.SessionView, string, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "pause")
}

// StopTimer completes the session.
func (c *Client) StopTimer(ctx context.Context, id string) (*api.SessionView, string, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "stop")
}

// AbandonTimer marks the session abandoned.
func (c *Client) AbandonTimer(ctx context.Context, id string) (*api.SessionView, string, error) {
	return c.sessionCall(ctx, http.MethodPost, id, "abandon")
}

func (c *Client) sessionCall(ctx context.Context, method, id, action string) (*api.SessionView, string, error) {
	path := "/grind-sessions/" + url.PathEscape(id)
	if action != "" {
		path += "/" + action
	}
	var resp api.SessionResponse
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.GrindSession, resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Message == "" {
			failure.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: failure.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
