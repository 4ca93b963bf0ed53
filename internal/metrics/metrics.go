package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the generation pipeline.
type Metrics struct {
	DocumentsGenerated prometheus.Counter
	ValidationFailures prometheus.Counter
	EmbedFallbacks     prometheus.Counter
	GenerateLatency    prometheus.Histogram
}

// New creates and registers all pipeline metrics.
func New() *Metrics {
	return &Metrics{
		DocumentsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facture_documents_generated_total",
			Help: "Total number of Factur-X documents generated",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facture_validation_failures_total",
			Help: "Total number of drafts rejected by validation",
		}),
		EmbedFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facture_embed_fallbacks_total",
			Help: "Total number of documents delivered without embedded XML",
		}),
		GenerateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "facture_generate_duration_seconds",
			Help:    "Duration of the full validate-render-embed pipeline",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementGenerated records one successfully produced document.
func (m *Metrics) IncrementGenerated() {
	if m != nil {
		m.DocumentsGenerated.Inc()
	}
}

// IncrementValidationFailure records a draft rejected by validation.
func (m *Metrics) IncrementValidationFailure() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

// IncrementEmbedFallback records a document delivered without its XML.
func (m *Metrics) IncrementEmbedFallback() {
	if m != nil {
		m.EmbedFallbacks.Inc()
	}
}

// ObserveGenerateLatency records the duration of one pipeline run.
func (m *Metrics) ObserveGenerateLatency(d time.Duration) {
	if m != nil {
		m.GenerateLatency.Observe(d.Seconds())
	}
}
