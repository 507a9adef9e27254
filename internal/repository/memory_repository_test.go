package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"spendlens/internal/models"

	"github.com/google/uuid"
)

func storedDoc(filename, customer string) *models.StoredDocument {
	now := time.Now().UTC()
	return &models.StoredDocument{
		ID:           uuid.New(),
		Filename:     filename,
		CustomerName: customer,
		CustomerAddress: models.CustomerAddress{
			FullAddress: "123 Main Street, Springfield",
			City:        "Springfield",
			Zip:         "12345",
		},
		PaymentInfo: models.StoredPaymentInfo{
			NewBalance:     "1250.00",
			MinimumPayment: "35.00",
			DueDate:        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		SpendLineItems: []models.StoredSpendItem{
			{
				SpendDate:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
				SpendDescription: "Coffee Shop",
				Amount:           "4.50",
				Category:         "Dining",
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStore_FindByFilename(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.FindByFilename(ctx, "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if err := store.Insert(ctx, storedDoc("a.pdf", "Jane Doe")); err != nil {
		t.Fatal(err)
	}

	doc, err := store.FindByFilename(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("FindByFilename: %v", err)
	}
	if doc.CustomerName != "Jane Doe" {
		t.Errorf("customer = %q", doc.CustomerName)
	}
}

func TestMemoryStore_FindByCustomer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, doc := range []*models.StoredDocument{
		storedDoc("a.pdf", "Jane Doe"),
		storedDoc("b.pdf", "Jane Doe"),
		storedDoc("c.pdf", "John Smith"),
	} {
		if err := store.Insert(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := store.FindByCustomer(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("FindByCustomer: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("got %d documents, want 2", len(docs))
	}

	docs, err = store.FindByCustomer(ctx, "Nobody")
	if err != nil {
		t.Fatalf("FindByCustomer: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents for unknown customer, want 0", len(docs))
	}
}

func TestMemoryStore_DistinctCustomers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, doc := range []*models.StoredDocument{
		storedDoc("a.pdf", "John Smith"),
		storedDoc("b.pdf", "Jane Doe"),
		storedDoc("c.pdf", "Jane Doe"),
	} {
		if err := store.Insert(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}

	customers, err := store.DistinctCustomers(ctx)
	if err != nil {
		t.Fatalf("DistinctCustomers: %v", err)
	}
	if !reflect.DeepEqual(customers, []string{"Jane Doe", "John Smith"}) {
		t.Errorf("customers = %v", customers)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Insert(ctx, storedDoc("a.pdf", "Jane Doe")); err != nil {
		t.Fatal(err)
	}

	doc, err := store.FindByFilename(ctx, "a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	doc.CustomerName = "Mutated"

	fresh, err := store.FindByFilename(ctx, "a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CustomerName != "Jane Doe" {
		t.Error("mutation of a returned document leaked into the store")
	}
}
