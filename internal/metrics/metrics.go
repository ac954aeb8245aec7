package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/watcher"
)

const namespace = "clipsaver"

// Metrics exposes watcher activity in Prometheus format. It implements
// watcher.Observer.
type Metrics struct {
	registry *prometheus.Registry

	savesTotal      prometheus.Counter
	savedBytesTotal prometheus.Counter
	errorsTotal     *prometheus.CounterVec
	monitoring      prometheus.Gauge
	lastSave        prometheus.Gauge
	sessionsTotal   prometheus.Counter

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		savesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Clipboard entries appended to the journal.",
		}),
		savedBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_characters_total",
			Help:      "Characters appended to the journal.",
		}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors reported by the watcher, by kind.",
		}, []string{"kind"}),
		monitoring: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitoring",
			Help:      "1 while the watcher is monitoring the clipboard.",
		}),
		lastSave: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_save_timestamp_seconds",
			Help:      "Unix time of the most recent save.",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Monitoring sessions started.",
		}),
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Control API requests by route and status code.",
		}, []string{"route", "code"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Control API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) OnSaved(ev watcher.SavedEvent) {
	m.savesTotal.Inc()
	m.savedBytesTotal.Add(float64(ev.Length))
	m.lastSave.Set(float64(ev.Time.Unix()))
}

func (m *Metrics) OnError(err error) {
	kind := clerrors.KindOf(err)
	if kind == "" {
		kind = clerrors.KindUnknown
	}
	m.errorsTotal.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) OnStatus(status watcher.Status) {
	switch status {
	case watcher.StatusMonitoring:
		m.monitoring.Set(1)
		m.sessionsTotal.Inc()
	case watcher.StatusStopping, watcher.StatusIdle:
		m.monitoring.Set(0)
	}
}

type APITimer struct {
	m     *Metrics
	start time.Time
	route string
}

func (m *Metrics) StartAPITimer(route string) *APITimer {
	return &APITimer{m: m, start: time.Now(), route: route}
}

func (t *APITimer) Stop(code int) {
	t.m.apiDuration.WithLabelValues(t.route).Observe(time.Since(t.start).Seconds())
	t.m.apiRequests.WithLabelValues(t.route, http.StatusText(code)).Inc()
}
