package dto

import "spendlens/internal/analytics"

// DashboardResponse is the /get_data payload consumed by the dashboard
// front-end. Degradation flags stay internal; the wire shape is the plain
// labels/values contract the charts expect.
type DashboardResponse struct {
	Category     analytics.ChartView `json:"category"`
	Date         analytics.ChartView `json:"date"`
	Merchant     analytics.ChartView `json:"merchant"`
	Total        float64             `json:"total"`
	Transactions []analytics.Row     `json:"transactions"`
}

func NewDashboardResponse(d *analytics.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		Category:     d.Category.ChartView,
		Date:         d.Date.ChartView,
		Merchant:     d.Merchant.ChartView,
		Total:        d.Total,
		Transactions: d.Transactions,
	}
}
