package api

import (
	"os"
	"path/filepath"

	"spendlens/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(statementHandler *handlers.StatementHandler, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		// Statement PDFs can be large scans.
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(logger.New())

	webStaticPath := findWebStaticPath(appLogger)
	if webStaticPath != "" {
		appLogger.Info("Serving static files", zap.String("path", webStaticPath))
		app.Static("/static", webStaticPath)
	} else {
		appLogger.Warn("Web static directory not found, static files will not be served")
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return sendPage(c, webStaticPath, "index.html")
	})
	app.Get("/dashboard/:filename", func(c *fiber.Ctx) error {
		return sendPage(c, webStaticPath, "dashboard.html")
	})

	app.Post("/upload", statementHandler.UploadStatement)
	app.Get("/get_data/:filename", statementHandler.GetData)

	app.Get("/customers", statementHandler.ListCustomers)
	app.Get("/customers/:name/summary", statementHandler.CustomerSummary)

	return app
}

func sendPage(c *fiber.Ctx, webStaticPath, page string) error {
	if webStaticPath != "" {
		path := filepath.Join(webStaticPath, page)
		if fileExists(path) {
			return c.SendFile(path)
		}
	}
	return c.Status(fiber.StatusNotFound).
		SendString("Web interface not found. Please ensure web/static/" + page + " exists.")
}

// findWebStaticPath locates the web/static directory relative to the
// working directory, which differs between `go run ./cmd/...` and a built
// binary.
func findWebStaticPath(logger *zap.Logger) string {
	paths := []string{
		"./web/static",
		"web/static",
		"../web/static",
		"../../web/static",
	}

	for _, path := range paths {
		if fileExists(filepath.Join(path, "index.html")) {
			logger.Info("Found web static path", zap.String("path", path))
			return path
		}
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
