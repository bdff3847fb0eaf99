package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Middleware provides HTTP middleware for bearer-token validation. Paths
// named at construction (health and metrics checks carry no token) bypass
// authentication entirely.
type Middleware struct {
	cfg  Config
	skip map[string]struct{}
}

// NewMiddleware constructs a middleware that skips the given paths.
func NewMiddleware(cfg Config, skipPaths ...string) Middleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}
	return Middleware{cfg: cfg, skip: skip}
}

// Wrap wraps an http.Handler with authentication. Rejections use the same
// {"message": ...} body the session endpoints return.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
			return
		}
		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return Parse(token, m.cfg)
}
