package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"autoai-dashboard/internal/view"
)

const requestIDHeader = "X-Request-Id"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// accessLog logs every request with its status, size and duration. A request
// id is taken from X-Request-Id or generated, and echoed back.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := s.logger.Debug
		if rec.status >= http.StatusInternalServerError {
			level = s.logger.Warn
		}
		level("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes_out", rec.bytes,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// cors adds the configured Access-Control-Allow-Origin to every response and
// answers preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.CORSAllowOrigin
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireBound answers 503 until the controller finished startup.
func (s *Server) requireBound(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ctrl.Bound() {
			w.Header().Set("Retry-After", "1")
			s.render(w, http.StatusServiceUnavailable, view.TmplStarting, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
