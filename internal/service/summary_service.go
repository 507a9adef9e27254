package service

import (
	"context"
	"fmt"

	"spendlens/internal/dto"
	"spendlens/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SummaryService aggregates total spend and the per-category breakdown
// across every stored statement of one customer.
type SummaryService struct {
	store  repository.DocumentStore
	logger *zap.Logger
}

func NewSummaryService(store repository.DocumentStore, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		store:  store,
		logger: logger,
	}
}

// CustomerSummary scans all documents of the customer. A customer with no
// stored statements yields total 0 and an empty breakdown; a line item
// whose stored amount cannot be parsed is skipped with a warning rather
// than failing the whole summary.
func (s *SummaryService) CustomerSummary(ctx context.Context, customerName string) (*dto.SpendSummary, error) {
	documents, err := s.store.FindByCustomer(ctx, customerName)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, doc := range documents {
		for i, item := range doc.SpendLineItems {
			amount, err := decimal.NewFromString(item.Amount)
			if err != nil {
				s.logger.Warn("Skipping malformed stored amount",
					zap.String("filename", doc.Filename),
					zap.Int("item", i),
					zap.String("amount", item.Amount),
				)
				continue
			}
			total = total.Add(amount)
			byCategory[item.Category] = byCategory[item.Category].Add(amount)
		}
	}

	breakdown := make(map[string]float64, len(byCategory))
	for category, amount := range byCategory {
		breakdown[category] = amount.InexactFloat64()
	}

	return &dto.SpendSummary{
		CustomerName:      customerName,
		TotalSpend:        total.InexactFloat64(),
		CategoryBreakdown: breakdown,
	}, nil
}

// ListCustomers returns the distinct customer names present in the store.
func (s *SummaryService) ListCustomers(ctx context.Context) ([]string, error) {
	customers, err := s.store.DistinctCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		customers = []string{}
	}
	return customers, nil
}
