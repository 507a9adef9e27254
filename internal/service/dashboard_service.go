package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"spendlens/internal/analytics"

	"go.uber.org/zap"
)

// DashboardService reads a CSV artifact and computes the aggregate views
// for the dashboard. Errors are returned to the caller as values; nothing
// here panics past the web boundary.
type DashboardService struct {
	artifactDir string
	logger      *zap.Logger
}

func NewDashboardService(artifactDir string, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		artifactDir: artifactDir,
		logger:      logger,
	}
}

// requiredColumns must all be present in the artifact header; individual
// rows may still carry blank values, which the engine degrades around.
var requiredColumns = []string{"spend_date", "spend_description", "amount", "category"}

// Load reads the named artifact and builds the dashboard payload.
func (s *DashboardService) Load(filename string) (*analytics.Dashboard, error) {
	path := filepath.Join(s.artifactDir, filepath.Base(filename))

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("artifact is empty: %s", filename)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column: %s (required: %v)", name, requiredColumns)
		}
	}

	records := make([]analytics.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, analytics.Record{
			SpendDate:        cell(row, columns["spend_date"]),
			SpendDescription: cell(row, columns["spend_description"]),
			Amount:           cell(row, columns["amount"]),
			Category:         cell(row, columns["category"]),
		})
	}

	dashboard := analytics.Build(records, s.logger)

	if dashboard.Category.Degraded {
		s.logger.Warn("Category view degraded",
			zap.String("file", filename),
			zap.String("reason", dashboard.Category.Reason),
		)
	}
	if dashboard.Merchant.Degraded {
		s.logger.Warn("Merchant view degraded",
			zap.String("file", filename),
			zap.String("reason", dashboard.Merchant.Reason),
		)
	}

	return dashboard, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
