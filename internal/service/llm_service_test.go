package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spendlens/internal/models"
	"spendlens/pkg/config"

	"go.uber.org/zap"
)

const statementJSON = `{
  "customer_name": "Jane Doe",
  "customer_address": {
    "full_address": "123 Main Street, Springfield",
    "city": "Springfield",
    "zip": "12345"
  },
  "payment_info": {
    "new_balance": 1250.00,
    "minimum_payment": 35.00,
    "due_date": "2024-03-01"
  },
  "spend_line_items": [
    {
      "spend_date": "2024-01-01",
      "spend_description": "Coffee Shop",
      "amount": 4.50,
      "category": "Dining"
    }
  ]
}`

func TestParseStatementResponse_PlainJSON(t *testing.T) {
	statement, err := parseStatementResponse(statementJSON)
	if err != nil {
		t.Fatalf("parseStatementResponse: %v", err)
	}
	if statement.CustomerName != "Jane Doe" {
		t.Errorf("customer = %q", statement.CustomerName)
	}
	if len(statement.SpendLineItems) != 1 {
		t.Fatalf("got %d items", len(statement.SpendLineItems))
	}
	if got := statement.SpendLineItems[0].Amount.StringFixed(2); got != "4.50" {
		t.Errorf("amount = %s", got)
	}
}

func TestParseStatementResponse_StripsCommentaryAndFences(t *testing.T) {
	wrapped := "Here is the extracted statement:\n```json\n" + statementJSON + "\n```\nLet me know if you need more."
	statement, err := parseStatementResponse(wrapped)
	if err != nil {
		t.Fatalf("parseStatementResponse: %v", err)
	}
	if statement.CustomerName != "Jane Doe" {
		t.Errorf("customer = %q", statement.CustomerName)
	}
}

func TestParseStatementResponse_EmptyCategoryBackfilled(t *testing.T) {
	payload := strings.Replace(statementJSON, `"category": "Dining"`, `"category": ""`, 1)
	statement, err := parseStatementResponse(payload)
	if err != nil {
		t.Fatalf("parseStatementResponse: %v", err)
	}
	if got := statement.SpendLineItems[0].Category; got != models.DefaultCategory {
		t.Errorf("category = %q, want %q", got, models.DefaultCategory)
	}
}

func TestParseStatementResponse_SchemaViolationRejected(t *testing.T) {
	payload := strings.Replace(statementJSON, `"new_balance": 1250.00`, `"new_balance": -5.00`, 1)

	_, err := parseStatementResponse(payload)
	if err == nil {
		t.Fatal("negative balance accepted")
	}
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %T, want *models.ValidationError", err)
	}
}

func TestParseStatementResponse_NoJSONObject(t *testing.T) {
	if _, err := parseStatementResponse("I cannot help with that."); err == nil {
		t.Fatal("non-JSON reply accepted")
	}
}

func TestNewStatementParser_UnsupportedProvider(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{Provider: "palm"}}

	_, err := NewStatementParser(context.Background(), cfg, zap.NewNop())
	if err == nil {
		t.Fatal("unsupported provider accepted")
	}
	if !strings.Contains(err.Error(), "palm") {
		t.Errorf("error %q does not name the unsupported selector", err.Error())
	}
}

func TestNewStatementParser_Ollama(t *testing.T) {
	cfg := &config.Config{
		LLM:    config.LLMConfig{Provider: "ollama"},
		Ollama: config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3"},
	}

	parser, err := NewStatementParser(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStatementParser: %v", err)
	}
	defer parser.Close()

	if _, ok := parser.(*OllamaParser); !ok {
		t.Errorf("got %T, want *OllamaParser", parser)
	}
}
