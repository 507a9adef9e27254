package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spendlens/internal/models"
	"spendlens/internal/repository"

	"go.uber.org/zap"
)

// ErrNoSpendItems is returned when a statement was extracted and stored
// but contained no purchases, so there is nothing to chart.
var ErrNoSpendItems = errors.New("no spend items found in the uploaded document")

// StatementService runs the upload pipeline: text extraction, structured
// extraction, persistence and the CSV hand-off artifact. One upload is one
// sequential pipeline invocation; there are no partial results.
type StatementService struct {
	store       repository.DocumentStore
	extractor   TextExtractor
	parser      StatementParser
	artifactDir string
	logger      *zap.Logger
}

func NewStatementService(
	store repository.DocumentStore,
	extractor TextExtractor,
	parser StatementParser,
	artifactDir string,
	logger *zap.Logger,
) *StatementService {
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		logger.Warn("Failed to create artifact directory", zap.Error(err))
	}

	return &StatementService{
		store:       store,
		extractor:   extractor,
		parser:      parser,
		artifactDir: artifactDir,
		logger:      logger,
	}
}

// ProcessPDF runs the full pipeline for one uploaded PDF and returns the
// name of the generated CSV artifact. Extraction and validation failures
// are fatal to this upload; nothing partial is stored on failure.
func (s *StatementService) ProcessPDF(ctx context.Context, pdfPath string) (string, *models.CreditCardStatement, error) {
	text, err := s.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		return "", nil, fmt.Errorf("text extraction failed: %w", err)
	}

	statement, err := s.parser.ParseStatement(ctx, text)
	if err != nil {
		return "", nil, fmt.Errorf("structured extraction failed: %w", err)
	}

	// The raw PDF is an opaque payload; failing to read it back does not
	// fail the pipeline.
	pdfContent, err := os.ReadFile(pdfPath)
	if err != nil {
		s.logger.Warn("Failed to read PDF for storage", zap.String("file", pdfPath), zap.Error(err))
		pdfContent = nil
	}

	doc := models.NewStoredDocument(filepath.Base(pdfPath), statement, pdfContent)
	if err := s.store.Insert(ctx, doc); err != nil {
		return "", nil, fmt.Errorf("failed to store document: %w", err)
	}

	s.logger.Info("Document stored",
		zap.String("filename", doc.Filename),
		zap.String("customer", doc.CustomerName),
		zap.Int("line_items", len(doc.SpendLineItems)),
	)

	if len(statement.SpendLineItems) == 0 {
		return "", statement, ErrNoSpendItems
	}

	csvName := ArtifactName(doc.Filename)
	if err := s.writeArtifact(csvName, statement.SpendLineItems); err != nil {
		return "", nil, fmt.Errorf("failed to write CSV artifact: %w", err)
	}

	return csvName, statement, nil
}

// ArtifactName derives the CSV artifact name from the uploaded filename.
func ArtifactName(uploadedFilename string) string {
	base := strings.TrimSuffix(uploadedFilename, filepath.Ext(uploadedFilename))
	return "spend_line_items_" + base + ".csv"
}

// ArtifactPath resolves an artifact name inside the artifact directory.
func (s *StatementService) ArtifactPath(name string) string {
	return filepath.Join(s.artifactDir, filepath.Base(name))
}

func (s *StatementService) writeArtifact(name string, items []models.SpendItem) error {
	path := filepath.Join(s.artifactDir, name)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"spend_date", "spend_description", "amount", "category"}); err != nil {
		return err
	}
	for _, item := range items {
		record := []string{
			item.SpendDate.String(),
			item.SpendDescription,
			item.Amount.StringFixed(2),
			item.Category,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	s.logger.Info("CSV artifact created", zap.String("file", path), zap.Int("rows", len(items)))
	return nil
}
