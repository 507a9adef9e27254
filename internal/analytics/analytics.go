// Package analytics computes the dashboard aggregate views from a flat
// sequence of transaction records. Every view is computed independently
// and degrades to a documented fallback instead of failing the whole
// dashboard; the engine never mutates its input.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Record is one transaction row as read from the CSV artifact. Fields are
// kept as raw strings because stored artifacts may be partial or malformed;
// parsing is the engine's job.
type Record struct {
	SpendDate        string
	SpendDescription string
	Amount           string
	Category         string
}

// ChartView is one (labels, values) aggregate ready for charting.
type ChartView struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ViewResult tags a view with its degradation state so fallback behavior
// is explicit and testable rather than buried in recovery paths.
type ViewResult struct {
	ChartView
	Degraded bool
	Reason   string
}

// Row is one transaction in the flat dashboard projection.
type Row struct {
	SpendDate        string  `json:"spend_date"`
	SpendDescription string  `json:"spend_description"`
	Amount           float64 `json:"amount"`
	Category         string  `json:"category"`
}

// Dashboard bundles all aggregate views for one dataset.
type Dashboard struct {
	Category     ViewResult
	Date         ViewResult
	Merchant     ViewResult
	Total        float64
	Transactions []Row
}

const unknownDate = "Unknown Date"

// topMerchants is the ranking cutoff for the merchant view.
const topMerchants = 10

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Build computes every view independently; a degraded view never prevents
// the others from succeeding.
func Build(records []Record, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		Category:     CategoryView(records),
		Date:         DateView(records),
		Merchant:     MerchantView(records),
		Total:        Total(records),
		Transactions: Rows(records, logger),
	}
}

// CategoryView groups amounts by category in first-seen order. A record
// with no category degrades the whole view to a single "Other" bucket
// holding the sum of all parseable amounts.
func CategoryView(records []Record) ViewResult {
	if len(records) == 0 {
		return ViewResult{ChartView: emptyView()}
	}

	for _, rec := range records {
		if strings.TrimSpace(rec.Category) == "" {
			return ViewResult{
				ChartView: ChartView{
					Labels: []string{"Other"},
					Values: []float64{sumAmounts(records).InexactFloat64()},
				},
				Degraded: true,
				Reason:   "record without category",
			}
		}
	}

	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, rec := range records {
		category := strings.TrimSpace(rec.Category)
		amount, ok := parseAmount(rec.Amount)
		if !ok {
			continue
		}
		if _, seen := sums[category]; !seen {
			order = append(order, category)
		}
		sums[category] = sums[category].Add(amount)
	}

	view := emptyView()
	for _, category := range order {
		view.Labels = append(view.Labels, category)
		view.Values = append(view.Values, sums[category].InexactFloat64())
	}
	return ViewResult{ChartView: view}
}

// DateView groups amounts by exact date, ascending, with ISO labels.
// Records with unparseable dates are dropped from this view only; zero
// valid dates is a legitimately empty view, not an error.
func DateView(records []Record) ViewResult {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range records {
		date, ok := parseDate(rec.SpendDate)
		if !ok {
			continue
		}
		amount, ok := parseAmount(rec.Amount)
		if !ok {
			continue
		}
		key := date.Format("2006-01-02")
		sums[key] = sums[key].Add(amount)
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	view := emptyView()
	for _, key := range keys {
		view.Labels = append(view.Labels, key)
		view.Values = append(view.Values, sums[key].InexactFloat64())
	}
	return ViewResult{ChartView: view}
}

// MerchantView groups amounts by description and ranks the top 10 by
// summed amount descending, ties broken by merchant name ascending. If no
// record carries a description the view degrades to a "No data" entry.
func MerchantView(records []Record) ViewResult {
	if len(records) == 0 {
		return ViewResult{ChartView: emptyView()}
	}

	sums := make(map[string]decimal.Decimal)
	for _, rec := range records {
		description := strings.TrimSpace(rec.SpendDescription)
		if description == "" {
			continue
		}
		amount, ok := parseAmount(rec.Amount)
		if !ok {
			continue
		}
		sums[description] = sums[description].Add(amount)
	}

	if len(sums) == 0 {
		return ViewResult{
			ChartView: ChartView{Labels: []string{"No data"}, Values: []float64{0}},
			Degraded:  true,
			Reason:    "no merchant descriptions",
		}
	}

	merchants := make([]string, 0, len(sums))
	for merchant := range sums {
		merchants = append(merchants, merchant)
	}
	sort.Slice(merchants, func(i, j int) bool {
		a, b := sums[merchants[i]], sums[merchants[j]]
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return merchants[i] < merchants[j]
	})
	if len(merchants) > topMerchants {
		merchants = merchants[:topMerchants]
	}

	view := emptyView()
	for _, merchant := range merchants {
		view.Labels = append(view.Labels, merchant)
		view.Values = append(view.Values, sums[merchant].InexactFloat64())
	}
	return ViewResult{ChartView: view}
}

// Total sums every parseable amount; unparseable amounts contribute 0.
func Total(records []Record) float64 {
	return sumAmounts(records).InexactFloat64()
}

// Rows builds the flat transaction projection. Unparseable dates render
// as "Unknown Date"; a row whose amount cannot be parsed is skipped with a
// warning without aborting rows already collected.
func Rows(records []Record, logger *zap.Logger) []Row {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		amount, ok := parseAmount(rec.Amount)
		if !ok {
			logger.Warn("Skipping transaction row with unparseable amount",
				zap.Int("row", i),
				zap.String("amount", rec.Amount),
			)
			continue
		}

		dateLabel := unknownDate
		if date, ok := parseDate(rec.SpendDate); ok {
			dateLabel = date.Format("2006-01-02")
		}

		rows = append(rows, Row{
			SpendDate:        dateLabel,
			SpendDescription: rec.SpendDescription,
			Amount:           amount.InexactFloat64(),
			Category:         rec.Category,
		})
	}
	return rows
}

func sumAmounts(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if amount, ok := parseAmount(rec.Amount); ok {
			total = total.Add(amount)
		}
	}
	return total
}

func parseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// emptyView returns a view with non-nil slices so JSON encodes [] rather
// than null for empty datasets.
func emptyView() ChartView {
	return ChartView{Labels: []string{}, Values: []float64{}}
}
