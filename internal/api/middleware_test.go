package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipsaver/internal/metrics"
)

func TestLimitRequestSizeMiddleware(t *testing.T) {
	readBody := func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}

	t.Run("allows small requests", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte("small")))
		w := httptest.NewRecorder()

		limitRequestSize(readBody)(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects large requests", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", bytes.NewReader(make([]byte, MaxRequestSize+1)))
		w := httptest.NewRecorder()

		limitRequestSize(readBody)(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("expected 413, got %d", w.Code)
		}
	})
}

func TestSameOriginMiddleware(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{"no origin header", "", http.StatusOK},
		{"control page on the same host", "http://127.0.0.1:8574", http.StatusOK},
		{"another site", "https://evil.example", http.StatusForbidden},
		{"same host, other port", "http://127.0.0.1:9999", http.StatusForbidden},
		{"malformed origin", "://", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "http://127.0.0.1:8574/api/v1/watcher/stop", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			sameOrigin(ok)(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestInstrumentMiddleware(t *testing.T) {
	t.Run("logs successful requests at debug", func(t *testing.T) {
		handlerCalled := false
		handler := func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusTeapot)
		}

		logger := &TestLogger{}
		req := httptest.NewRequest("GET", "/api/test", nil)
		w := httptest.NewRecorder()

		instrument(logger, nil, "/api/test", handler)(w, req)

		if !handlerCalled {
			t.Error("handler not called")
		}
		if len(logger.debugMessages) != 1 || len(logger.warnMessages) != 0 {
			t.Errorf("debug=%v warn=%v", logger.debugMessages, logger.warnMessages)
		}
		if w.Code != http.StatusTeapot {
			t.Errorf("status not passed through: %d", w.Code)
		}
	})

	t.Run("logs server errors at warn", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		logger := &TestLogger{}
		instrument(logger, nil, "/api/v1/watcher/start", handler)(
			httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/watcher/start", nil))

		if len(logger.warnMessages) != 1 {
			t.Errorf("warn messages: %v", logger.warnMessages)
		}
	})

	t.Run("records request metrics", func(t *testing.T) {
		m := metrics.New()
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}

		instrument(&TestLogger{}, m, "/api/v1/status", handler)(
			httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/status", nil))

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		if !strings.Contains(rec.Body.String(), `clipsaver_api_requests_total{code="OK",route="/api/v1/status"} 1`) {
			t.Error("request counter not exported")
		}
	})
}

// TestLogger records messages by level.
type TestLogger struct {
	debugMessages []string
	warnMessages  []string
}

func (l *TestLogger) Debug(msg string, args ...any) {
	l.debugMessages = append(l.debugMessages, msg)
}

func (l *TestLogger) Warn(msg string, args ...any) {
	l.warnMessages = append(l.warnMessages, msg)
}
