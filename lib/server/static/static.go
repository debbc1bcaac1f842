package static

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"codeberg.org/ursietz/staticd/lib/helper"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves a directory tree over plain HTTP. Directory listings
// are disabled; a directory is only served through its index.html.
// All fields are read-only once Run has been called.
type Server struct {
	Host       string
	Port       uint16
	Root       string
	RequestLog string
	Logger     *slog.Logger

	root string // canonicalized root directory
}

func (s *Server) canonicalizeRoot() error {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return err
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("root directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root directory: %s is not a directory", root)
	}
	s.root = root
	return nil
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/*", s.handleFile)
	r.Head("/*", s.handleFile)
	return r
}

// Run validates the root directory, starts the listener and blocks
// until the server fails or ctx is cancelled. Cancellation triggers a
// graceful shutdown and a nil return.
func (s *Server) Run(ctx context.Context) error {
	if err := s.canonicalizeRoot(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port)))
	httpServer, err := helper.NewHTTPServer(s.router(), addr, s.RequestLog)
	if err != nil {
		return err
	}

	s.Logger.Info("serving directory", "root", s.root, "address", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
