package handlers

import (
	"errors"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"spendlens/internal/dto"
	"spendlens/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StatementHandler struct {
	statements *service.StatementService
	dashboards *service.DashboardService
	summaries  *service.SummaryService
	uploadDir  string
	logger     *zap.Logger
}

func NewStatementHandler(
	statements *service.StatementService,
	dashboards *service.DashboardService,
	summaries *service.SummaryService,
	uploadDir string,
	logger *zap.Logger,
) *StatementHandler {
	return &StatementHandler{
		statements: statements,
		dashboards: dashboards,
		summaries:  summaries,
		uploadDir:  uploadDir,
		logger:     logger,
	}
}

// UploadStatement accepts a PDF upload, runs the extraction pipeline and
// redirects to the dashboard keyed by the generated CSV artifact.
// Pipeline failures come back as plain-text errors.
func (h *StatementHandler) UploadStatement(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil || file.Filename == "" {
		return c.Status(fiber.StatusBadRequest).SendString("file is required")
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return c.Status(fiber.StatusBadRequest).SendString("only PDF files are supported")
	}

	filename := secureFilename(file.Filename)
	path := filepath.Join(h.uploadDir, filename)
	if err := c.SaveFile(file, path); err != nil {
		h.logger.Error("Failed to save uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("failed to save uploaded file")
	}

	csvName, _, err := h.statements.ProcessPDF(c.Context(), path)
	if errors.Is(err, service.ErrNoSpendItems) {
		return c.SendString("No spend items found in the uploaded document.")
	}
	if err != nil {
		h.logger.Error("Pipeline failed", zap.String("file", filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			SendString("An error occurred while processing the file: " + err.Error())
	}

	return c.Redirect("/dashboard/"+url.PathEscape(csvName), fiber.StatusSeeOther)
}

// GetData returns the aggregate views, total and transaction list for one
// CSV artifact. Failures are reported inside the JSON payload; this
// endpoint never raises past its boundary.
func (h *StatementHandler) GetData(c *fiber.Ctx) error {
	filename, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		filename = c.Params("filename")
	}

	dashboard, err := h.dashboards.Load(filename)
	if err != nil {
		h.logger.Warn("Failed to load dashboard data", zap.String("filename", filename), zap.Error(err))
		return c.JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(dto.NewDashboardResponse(dashboard))
}

// ListCustomers returns the distinct customer names in the store.
func (h *StatementHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.summaries.ListCustomers(c.Context())
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list customers",
		})
	}

	return c.JSON(fiber.Map{"customers": customers})
}

// CustomerSummary returns total spend and the category breakdown for one
// customer. An unknown customer yields a zero summary, not an error.
func (h *StatementHandler) CustomerSummary(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		name = c.Params("name")
	}

	summary, err := h.summaries.CustomerSummary(c.Context(), name)
	if err != nil {
		h.logger.Error("Failed to build summary", zap.String("customer", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build summary",
		})
	}

	return c.JSON(summary)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// secureFilename strips path components and unsafe characters from an
// uploaded filename before it touches the filesystem.
func secureFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload.pdf"
	}
	return name
}
