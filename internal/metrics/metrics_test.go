package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/watcher"
)

func TestObserverCounters(t *testing.T) {
	m := New()

	m.OnStatus(watcher.StatusInitializing)
	m.OnStatus(watcher.StatusMonitoring)
	m.OnSaved(watcher.SavedEvent{Time: time.Unix(1700000000, 0), Length: 12})
	m.OnSaved(watcher.SavedEvent{Time: time.Unix(1700000060, 0), Length: 3})
	m.OnError(clerrors.WrapClipboard("read", errors.New("gone")))
	m.OnError(errors.New("plain"))

	if got := testutil.ToFloat64(m.savesTotal); got != 2 {
		t.Errorf("saves_total = %v", got)
	}
	if got := testutil.ToFloat64(m.savedBytesTotal); got != 15 {
		t.Errorf("saved_characters_total = %v", got)
	}
	if got := testutil.ToFloat64(m.lastSave); got != 1700000060 {
		t.Errorf("last_save_timestamp_seconds = %v", got)
	}
	if got := testutil.ToFloat64(m.monitoring); got != 1 {
		t.Errorf("monitoring = %v", got)
	}
	if got := testutil.ToFloat64(m.errorsTotal.WithLabelValues(string(clerrors.KindClipboardUnavailable))); got != 1 {
		t.Errorf("clipboard errors = %v", got)
	}
	if got := testutil.ToFloat64(m.errorsTotal.WithLabelValues(string(clerrors.KindUnknown))); got != 1 {
		t.Errorf("unknown errors = %v", got)
	}

	m.OnStatus(watcher.StatusStopping)
	if got := testutil.ToFloat64(m.monitoring); got != 0 {
		t.Errorf("monitoring after stop = %v", got)
	}
	if got := testutil.ToFloat64(m.sessionsTotal); got != 1 {
		t.Errorf("sessions_total = %v", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.OnSaved(watcher.SavedEvent{Length: 1})

	if got := testutil.ToFloat64(b.savesTotal); got != 0 {
		t.Errorf("second registry saw %v saves", got)
	}
}

func TestConcurrentObservation(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.OnSaved(watcher.SavedEvent{Length: 1})
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(m.savesTotal); got != 5000 {
		t.Errorf("saves_total = %v, want 5000", got)
	}
}

func TestAPITimer(t *testing.T) {
	m := New()
	timer := m.StartAPITimer("/api/v1/status")
	timer.Stop(http.StatusOK)

	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("/api/v1/status", "OK")); got != 1 {
		t.Errorf("api requests = %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.OnSaved(watcher.SavedEvent{Length: 4})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"clipsaver_saves_total 1", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
