package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// TextExtractor turns an uploaded document into plain text. Implementations
// are external collaborators; extraction failures are surfaced, never
// swallowed.
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}

// FitzExtractor extracts text from PDF files using the go-fitz (MuPDF)
// bindings.
type FitzExtractor struct {
	logger *zap.Logger
}

func NewFitzExtractor(logger *zap.Logger) *FitzExtractor {
	return &FitzExtractor{logger: logger}
}

// ExtractText extracts text from every page of a PDF. A page that fails to
// render is logged and skipped; a document yielding no text at all is an
// extraction error.
func (s *FitzExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".pdf" {
		return "", fmt.Errorf("unsupported file format: %s (supported: pdf)", ext)
	}

	doc, err := fitz.New(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", filePath),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text found in PDF")
	}

	s.logger.Info("PDF text extracted",
		zap.String("file", filePath),
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}
