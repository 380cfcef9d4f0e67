package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchMetrics tracks a triage run. Registered on a private registry so the
// optional metrics listener exposes only our series.
type BatchMetrics struct {
	registry *prometheus.Registry

	documentsTotal  *prometheus.CounterVec
	decisionTotal   *prometheus.CounterVec
	ocrUsedTotal    prometheus.Counter
	processDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

func NewBatchMetrics() *BatchMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfi",
			Subsystem: "batch",
			Name:      "documents_total",
			Help:      "Documents processed by status.",
		},
		[]string{"status"},
	)
	decisionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfi",
			Subsystem: "batch",
			Name:      "decisions_total",
			Help:      "Classification outcomes by decision basis.",
		},
		[]string{"basis"},
	)
	ocrUsedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rfi",
			Subsystem: "batch",
			Name:      "ocr_used_total",
			Help:      "Documents whose final text came from OCR.",
		},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfi",
			Subsystem: "batch",
			Name:      "document_process_duration_seconds",
			Help:      "Per-document processing duration by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rfi",
			Subsystem: "batch",
			Name:      "documents_in_flight",
			Help:      "Documents currently being processed.",
		},
	)

	registry.MustRegister(documentsTotal, decisionTotal, ocrUsedTotal, processDuration, inFlight)

	return &BatchMetrics{
		registry:        registry,
		documentsTotal:  documentsTotal,
		decisionTotal:   decisionTotal,
		ocrUsedTotal:    ocrUsedTotal,
		processDuration: processDuration,
		inFlight:        inFlight,
	}
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) StartDocument() {
	m.inFlight.Inc()
}

func (m *BatchMetrics) FinishDocument(status string, duration time.Duration, ocrUsed bool) {
	m.inFlight.Dec()
	m.documentsTotal.WithLabelValues(status).Inc()
	m.processDuration.WithLabelValues(status).Observe(duration.Seconds())
	if ocrUsed {
		m.ocrUsedTotal.Inc()
	}
}

func (m *BatchMetrics) ObserveDecision(basis string) {
	m.decisionTotal.WithLabelValues(basis).Inc()
}
