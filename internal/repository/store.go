package repository

import (
	"context"
	"errors"

	"spendlens/internal/models"
)

// ErrNotFound is returned when no stored document matches the query.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the persistence contract for statement documents.
// The core consumes exactly four operations; there is no update or delete.
type DocumentStore interface {
	Insert(ctx context.Context, doc *models.StoredDocument) error
	FindByCustomer(ctx context.Context, customerName string) ([]*models.StoredDocument, error)
	DistinctCustomers(ctx context.Context) ([]string, error)
	FindByFilename(ctx context.Context, filename string) (*models.StoredDocument, error)
}
