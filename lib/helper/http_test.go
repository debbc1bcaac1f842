package helper

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewHTTPServerRequestLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "access.log")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv, err := NewHTTPServer(handler, "localhost:0", logPath)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "GET /probe") {
		t.Fatalf("request log misses entry: %q", data)
	}
}

func TestNewHTTPServerTimeouts(t *testing.T) {
	srv, err := NewHTTPServer(http.NotFoundHandler(), "localhost:0", "")
	if err != nil {
		t.Fatal(err)
	}
	if srv.ReadTimeout == 0 || srv.WriteTimeout == 0 || srv.IdleTimeout == 0 {
		t.Fatal("server timeouts are not set")
	}
}
