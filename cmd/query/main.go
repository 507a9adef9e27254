package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"spendlens/internal/repository"
	"spendlens/internal/service"
	"spendlens/pkg/config"
	"spendlens/pkg/logger"
	"spendlens/pkg/postgres"

	"go.uber.org/zap"
)

// Interactive query interface over the document store: list customers,
// print spend summaries and export stored statement PDFs.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store := repository.NewDocumentRepository(db, appLogger)
	summaries := service.NewSummaryService(store, appLogger)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\nDocument Query Interface")
		fmt.Println(strings.Repeat("=", 30))
		fmt.Println("1. List all customers")
		fmt.Println("2. Get spending summary for a customer")
		fmt.Println("3. Retrieve customer documents")
		fmt.Println("4. Exit")

		choice := prompt(reader, "\nEnter your choice (1-4): ")

		switch choice {
		case "1":
			customers, err := summaries.ListCustomers(ctx)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("\nAvailable Customers:")
			for _, customer := range customers {
				fmt.Printf("- %s\n", customer)
			}

		case "2":
			name := prompt(reader, "Enter customer name: ")
			printSpendingSummary(ctx, summaries, name)

		case "3":
			name := prompt(reader, "Enter customer name: ")
			outputDir := prompt(reader, "Enter output directory (default: retrieved_documents): ")
			if outputDir == "" {
				outputDir = "retrieved_documents"
			}

			saved, err := retrieveCustomerDocuments(ctx, store, name, outputDir)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if len(saved) == 0 {
				fmt.Println("No documents found for this customer.")
				continue
			}
			fmt.Println("\nRetrieved Documents:")
			for _, path := range saved {
				fmt.Printf("- %s\n", path)
			}

		case "4":
			fmt.Println("Goodbye!")
			return

		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func printSpendingSummary(ctx context.Context, summaries *service.SummaryService, customerName string) {
	summary, err := summaries.CustomerSummary(ctx, customerName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("\nSpending Summary for %s\n", customerName)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Total Spend: $%.2f\n", summary.TotalSpend)
	fmt.Println("\nCategory Breakdown:")
	fmt.Println(strings.Repeat("-", 30))

	categories := make([]string, 0, len(summary.CategoryBreakdown))
	for category := range summary.CategoryBreakdown {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Printf("%-20s $%10.2f\n", category, summary.CategoryBreakdown[category])
	}
}

// retrieveCustomerDocuments writes every stored PDF of the customer to
// outputDir with a timestamped name to avoid overwrites.
func retrieveCustomerDocuments(ctx context.Context, store repository.DocumentStore, customerName, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	documents, err := store.FindByCustomer(ctx, customerName)
	if err != nil {
		return nil, err
	}

	var saved []string
	for _, doc := range documents {
		if len(doc.PDFContent) == 0 {
			continue
		}
		timestamp := time.Now().Format("20060102_150405")
		path := filepath.Join(outputDir, timestamp+"_"+doc.Filename)
		if err := os.WriteFile(path, doc.PDFContent, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		saved = append(saved, path)
	}

	return saved, nil
}
