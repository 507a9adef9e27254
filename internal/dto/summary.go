package dto

// SpendSummary is the aggregate spend of one customer across all of their
// stored statements.
type SpendSummary struct {
	CustomerName      string             `json:"customer_name"`
	TotalSpend        float64            `json:"total_spend"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}
