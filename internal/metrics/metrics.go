package metrics

import (
	"net/url"
	"time"

	"photo-loader/internal/remote"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "photo_loader"

var _ remote.Recorder = (*Metrics)(nil)

// Metrics records resource loads. It implements remote.Recorder.
type Metrics struct {
	loadsStarted  *prometheus.CounterVec
	loadsFinished *prometheus.CounterVec
	loadsDropped  *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
}

func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		loadsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_started_total",
			Help:      "Number of resource loads issued",
		}, []string{"host"}),

		loadsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_finished_total",
			Help:      "Number of resource loads that reached success or failure",
		}, []string{"host", "status"}),

		loadsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_dropped_total",
			Help:      "Number of completions dropped because the resource was offloaded",
		}, []string{"host"}),

		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time from load to published outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host", "status"}),
	}
}

func (m *Metrics) LoadStarted(rawURL string) {
	m.loadsStarted.WithLabelValues(host(rawURL)).Inc()
}

func (m *Metrics) LoadFinished(rawURL string, status remote.Status, took time.Duration) {
	h := host(rawURL)
	m.loadsFinished.WithLabelValues(h, status.String()).Inc()
	m.loadDuration.WithLabelValues(h, status.String()).Observe(took.Seconds())
}

func (m *Metrics) LoadDropped(rawURL string) {
	m.loadsDropped.WithLabelValues(host(rawURL)).Inc()
}

// host keeps label cardinality bounded; full URLs are per photo.
func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
