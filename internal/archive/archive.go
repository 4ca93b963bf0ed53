// Package archive keeps a record of every generated invoice document:
// metadata in Postgres, bytes in a directory on disk.
package archive

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no archived document matches.
var ErrNotFound = errors.New("document not found")

// Document is the metadata kept for one generated document.
type Document struct {
	ID            uuid.UUID
	InvoiceNumber string
	IssueDate     time.Time
	SellerName    string
	BuyerName     string
	TotalTTC      int64 // cents
	Filename      string
	XMLAttached   bool
	CreatedAt     time.Time
}
