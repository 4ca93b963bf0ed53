// Package facturx orchestrates the generation pipeline: validation, PDF
// rendering, CII XML serialization, structural checking and XML embedding.
package facturx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LL7Baucarre/facture/internal/cii"
	"github.com/LL7Baucarre/facture/internal/invoice"
	"github.com/LL7Baucarre/facture/internal/metrics"
)

const (
	// Flavor and ConformanceLevel identify the produced profile. Both are
	// passed verbatim to the embedder.
	Flavor           = "facturx"
	ConformanceLevel = "basic"
)

type Renderer interface {
	Render(inv *invoice.Invoice) ([]byte, error)
}

type Embedder interface {
	Embed(base, xmlDoc []byte, flavor, level string) ([]byte, error)
}

// Checker reports structural problems in a produced XML document. Failures
// never block generation; they surface as warnings.
type Checker interface {
	Check(doc []byte) error
}

// Result is the outcome of one generation run. Degraded marks a document
// delivered without embedded XML after an embedding failure.
type Result struct {
	Invoice  *invoice.Invoice
	PDF      []byte
	XML      []byte
	Degraded bool
	Warnings []string
}

type Service struct {
	renderer Renderer
	embedder Embedder
	checker  Checker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(s *Service)

func WithChecker(c Checker) Option {
	return func(s *Service) {
		s.checker = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(renderer Renderer, embedder Embedder, opts ...Option) *Service {
	s := &Service{renderer: renderer, embedder: embedder, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate runs the full pipeline over a draft. A validation failure aborts
// with the aggregated *invoice.ValidationError and nothing is produced. An
// embedding failure does not discard the work: the plain rendered PDF is
// returned with Degraded set.
func (s *Service) Generate(ctx context.Context, draft invoice.Draft) (*Result, error) {
	start := time.Now()

	inv, err := invoice.Validate(draft)
	if err != nil {
		s.metrics.IncrementValidationFailure()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf, err := s.renderer.Render(inv)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	xmlDoc, err := cii.Build(inv)
	if err != nil {
		return nil, fmt.Errorf("building xml: %w", err)
	}

	result := &Result{Invoice: inv, XML: xmlDoc}

	if s.checker != nil {
		if err := s.checker.Check(xmlDoc); err != nil {
			s.logger.Warn("structural check failed", "invoice", inv.Number, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("XML potentiellement non conforme: %v", err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedded, err := s.embedder.Embed(pdf, xmlDoc, Flavor, ConformanceLevel)
	if err != nil {
		s.logger.Warn("embedding failed, delivering plain document", "invoice", inv.Number, "error", err)
		s.metrics.IncrementEmbedFallback()

		result.PDF = pdf
		result.Degraded = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("PDF généré sans XML intégré: %v", err))
	} else {
		result.PDF = embedded
	}

	s.metrics.IncrementGenerated()
	s.metrics.ObserveGenerateLatency(time.Since(start))

	return result, nil
}
