package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/LL7Baucarre/facture/internal/archive"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument reads a document row from the scanner and returns a populated Document.
// Expected column order: id, invoice_number, issue_date, seller_name, buyer_name, total_ttc, filename, xml_attached, created_at
func scanDocument(s scanner) (*archive.Document, error) {
	var doc archive.Document

	if err := s.Scan(
		&doc.ID, &doc.InvoiceNumber, &doc.IssueDate, &doc.SellerName, &doc.BuyerName,
		&doc.TotalTTC, &doc.Filename, &doc.XMLAttached, &doc.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &doc, nil
}

const selectDocumentColumns = `
	d.id, d.invoice_number, d.issue_date, d.seller_name, d.buyer_name,
	d.total_ttc, d.filename, d.xml_attached, d.created_at
`

func (s *Store) CreateDocument(ctx context.Context, doc *archive.Document) error {
	query := `
		INSERT INTO documents (invoice_number, issue_date, seller_name, buyer_name, total_ttc, filename, xml_attached, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		doc.InvoiceNumber,
		doc.IssueDate,
		doc.SellerName,
		doc.BuyerName,
		doc.TotalTTC,
		doc.Filename,
		doc.XMLAttached,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}

	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*archive.Document, error) {
	query := `SELECT ` + selectDocumentColumns + `
		FROM documents d
		WHERE d.id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, archive.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

func (s *Store) ListDocuments(ctx context.Context, filter archive.ListFilter) ([]*archive.Document, error) {
	query := `SELECT ` + selectDocumentColumns + `
		FROM documents d
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Since != nil {
		query += fmt.Sprintf(" AND d.issue_date >= $%d", argIdx)

		args = append(args, *filter.Since)
		argIdx++
	}

	if filter.Until != nil {
		query += fmt.Sprintf(" AND d.issue_date <= $%d", argIdx)

		args = append(args, *filter.Until)
		argIdx++
	}

	query += " ORDER BY d.issue_date ASC, d.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*archive.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}
