package httptransport

import (
	"net/http"
	"testing"
	"time"
)

func TestNewServerAppliesDefaults(t *testing.T) {
	server := NewServer(ServerConfig{Address: ":8080"}, http.NewServeMux())

	if server.Addr != ":8080" {
		t.Fatalf("unexpected address %q", server.Addr)
	}
	if server.ReadTimeout != DefaultReadTimeout {
		t.Fatalf("expected default read timeout, got %s", server.ReadTimeout)
	}
	if server.WriteTimeout != DefaultWriteTimeout {
		t.Fatalf("expected default write timeout, got %s", server.WriteTimeout)
	}
	if server.IdleTimeout != DefaultIdleTimeout {
		t.Fatalf("expected default idle timeout, got %s", server.IdleTimeout)
	}
}

func TestNewServerKeepsExplicitTimeouts(t *testing.T) {
	server := NewServer(ServerConfig{
		Address:     ":9090",
		ReadTimeout: 2 * time.Second,
	}, http.NewServeMux())

	if server.ReadTimeout != 2*time.Second {
		t.Fatalf("expected explicit read timeout, got %s", server.ReadTimeout)
	}
	if server.WriteTimeout != DefaultWriteTimeout {
		t.Fatalf("expected default write timeout, got %s", server.WriteTimeout)
	}
}
