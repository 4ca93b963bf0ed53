package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=archive
type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, filter ListFilter) ([]*Document, error)
}

// FileStore persists document bytes under a service-chosen name.
type FileStore interface {
	Write(name string, data []byte) error
	Open(name string) (io.ReadCloser, error)
}

// ListFilter narrows List to an issue-date range.
type ListFilter struct {
	Since *time.Time
	Until *time.Time
}

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// StoreParams carries the metadata of a freshly generated document.
type StoreParams struct {
	InvoiceNumber string
	IssueDate     time.Time
	SellerName    string
	BuyerName     string
	TotalTTC      decimal.Decimal
	XMLAttached   bool
}

// Store writes the document bytes and records its metadata. The filename
// follows the historical facture_<number>_<timestamp>.pdf convention of the
// original upload folder.
func (s *Service) Store(ctx context.Context, params StoreParams, pdf []byte) (*Document, error) {
	filename := fmt.Sprintf("facture_%s_%s.pdf",
		safeFilenamePart(params.InvoiceNumber),
		time.Now().Format("20060102_150405"),
	)

	if err := s.files.Write(filename, pdf); err != nil {
		return nil, fmt.Errorf("writing document file: %w", err)
	}

	doc := &Document{
		InvoiceNumber: params.InvoiceNumber,
		IssueDate:     params.IssueDate,
		SellerName:    params.SellerName,
		BuyerName:     params.BuyerName,
		TotalTTC:      params.TotalTTC.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Filename:      filename,
		XMLAttached:   params.XMLAttached,
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document record: %w", err)
	}

	return doc, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Document, error) {
	return s.repo.ListDocuments(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocument(ctx, id)
}

// Open returns the metadata and the stored bytes of one document. The caller
// closes the reader.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.files.Open(doc.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("opening document file: %w", err)
	}

	return doc, rc, nil
}

func safeFilenamePart(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}

		return '_'
	}, s)
}
