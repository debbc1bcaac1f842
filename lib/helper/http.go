package helper

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
)

// NewHTTPServer wraps handler in an Apache style request log when
// requestLog is non-empty; "-" means stderr. A request log file stays
// open for the lifetime of the process.
func NewHTTPServer(handler http.Handler, listen, requestLog string) (*http.Server, error) {
	var h http.Handler = handler
	if requestLog != "" {
		if requestLog == "-" {
			h = handlers.LoggingHandler(os.Stderr, handler)
		} else {
			f, err := os.Create(requestLog)
			if err != nil {
				return nil, err
			}
			h = handlers.LoggingHandler(f, handler)
		}
	}

	return &http.Server{
		Addr:         listen,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}
