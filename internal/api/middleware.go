package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"clipsaver/internal/metrics"
)

// MaxRequestSize caps control request bodies. The control endpoints take no
// body, so anything large is a mistake or abuse.
const MaxRequestSize = 1 << 20

func limitRequestSize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestSize)
		next(w, r)
	}
}

// sameOrigin rejects browser requests sent from another site. Without it
// any page open in the browser could stop monitoring through the loopback
// port. Requests without an Origin header (the CLI, curl) pass.
func sameOrigin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next(w, r)
			return
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host != r.Host {
			respondError(w, "cross-origin control requests are not allowed", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

type loggerInterface interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and feeds the per-route API metrics. Server
// errors log at warn so a failing start shows up without debug logging.
func instrument(logger loggerInterface, m *metrics.Metrics, route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var timer *metrics.APITimer
		if m != nil {
			timer = m.StartAPITimer(route)
		}

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next(rec, r)
		elapsed := time.Since(start)

		if timer != nil {
			timer.Stop(rec.code)
		}

		log := logger.Debug
		if rec.code >= http.StatusInternalServerError {
			log = logger.Warn
		}
		log("control request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", rec.code),
			slog.Duration("elapsed", elapsed))
	}
}
