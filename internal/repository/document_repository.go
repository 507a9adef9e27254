package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"spendlens/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// documentPayload is the JSONB body of one stored document. Filename and
// customer name live in their own columns so the store can filter on them.
type documentPayload struct {
	CustomerAddress models.CustomerAddress   `json:"customer_address"`
	PaymentInfo     models.StoredPaymentInfo `json:"payment_info"`
	SpendLineItems  []models.StoredSpendItem `json:"spend_line_items"`
}

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Insert(ctx context.Context, doc *models.StoredDocument) error {
	payload, err := json.Marshal(documentPayload{
		CustomerAddress: doc.CustomerAddress,
		PaymentInfo:     doc.PaymentInfo,
		SpendLineItems:  doc.SpendLineItems,
	})
	if err != nil {
		return fmt.Errorf("failed to encode document payload: %w", err)
	}

	query := squirrel.Insert("documents").
		Columns("id", "filename", "customer_name", "payload", "pdf_content", "created_at", "updated_at").
		Values(doc.ID, doc.Filename, doc.CustomerName, payload, doc.PDFContent, doc.CreatedAt, doc.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) FindByCustomer(ctx context.Context, customerName string) ([]*models.StoredDocument, error) {
	query := squirrel.Select("id", "filename", "customer_name", "payload", "pdf_content", "created_at", "updated_at").
		From("documents").
		Where(squirrel.Eq{"customer_name": customerName}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.StoredDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

func (r *DocumentRepository) DistinctCustomers(ctx context.Context) ([]string, error) {
	query := squirrel.Select("DISTINCT customer_name").
		From("documents").
		OrderBy("customer_name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		customers = append(customers, name)
	}

	return customers, rows.Err()
}

func (r *DocumentRepository) FindByFilename(ctx context.Context, filename string) (*models.StoredDocument, error) {
	query := squirrel.Select("id", "filename", "customer_name", "payload", "pdf_content", "created_at", "updated_at").
		From("documents").
		Where(squirrel.Eq{"filename": filename}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, sql, args...)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.StoredDocument, error) {
	var doc models.StoredDocument
	var payload []byte
	if err := row.Scan(
		&doc.ID, &doc.Filename, &doc.CustomerName, &payload, &doc.PDFContent, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var body documentPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &models.MalformedRecordError{Field: "payload", Err: err}
	}
	doc.CustomerAddress = body.CustomerAddress
	doc.PaymentInfo = body.PaymentInfo
	doc.SpendLineItems = body.SpendLineItems

	return &doc, nil
}
