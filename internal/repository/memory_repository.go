package repository

import (
	"context"
	"sort"
	"sync"

	"spendlens/internal/models"
)

// MemoryStore implements DocumentStore with in-memory storage. It backs
// tests and lets the service run without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	documents []*models.StoredDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, doc *models.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *doc
	s.documents = append(s.documents, &copied)
	return nil
}

func (s *MemoryStore) FindByCustomer(ctx context.Context, customerName string) ([]*models.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.StoredDocument
	for _, doc := range s.documents {
		if doc.CustomerName == customerName {
			copied := *doc
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *MemoryStore) DistinctCustomers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var customers []string
	for _, doc := range s.documents {
		if !seen[doc.CustomerName] {
			seen[doc.CustomerName] = true
			customers = append(customers, doc.CustomerName)
		}
	}
	sort.Strings(customers)
	return customers, nil
}

func (s *MemoryStore) FindByFilename(ctx context.Context, filename string) (*models.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.Filename == filename {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}
