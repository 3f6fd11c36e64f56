package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Body written for a recovered panic. Built by hand because importing the
// handler package here would create an import cycle.
const panicBody = `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}` + "\n"

type panicWriter struct {
	http.ResponseWriter
	started bool
}

func (pw *panicWriter) WriteHeader(code int) {
	pw.started = true
	pw.ResponseWriter.WriteHeader(code)
}

func (pw *panicWriter) Write(b []byte) (int, error) {
	pw.started = true
	return pw.ResponseWriter.Write(b)
}

func (pw *panicWriter) Unwrap() http.ResponseWriter {
	return pw.ResponseWriter
}

// Recovery converts panics into 500 responses. The error body is only
// written when the handler had not started responding yet.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pw := &panicWriter{ResponseWriter: w}

			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					if pw.started {
						return
					}

					pw.Header().Set("Content-Type", "application/json")
					pw.WriteHeader(http.StatusInternalServerError)
					if _, writeErr := pw.Write([]byte(panicBody)); writeErr != nil {
						logger.Error("failed to write recovery response", "error", writeErr)
					}
				}
			}()

			next.ServeHTTP(pw, r)
		})
	}
}
