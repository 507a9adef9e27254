package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spendlens/internal/models"
	"spendlens/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// StatementParser converts extracted statement text into a validated
// CreditCardStatement. Implementations are LLM-backed external
// collaborators; a schema violation in the model output is returned as a
// *models.ValidationError and the statement is rejected as a whole.
type StatementParser interface {
	ParseStatement(ctx context.Context, text string) (*models.CreditCardStatement, error)
	Close() error
}

// NewStatementParser builds the parser selected by configuration.
// An unknown provider is a configuration error naming the selector.
func NewStatementParser(ctx context.Context, cfg *config.Config, logger *zap.Logger) (StatementParser, error) {
	switch cfg.LLM.Provider {
	case "gigachat":
		return NewGigaChatParser(ctx, &cfg.GigaChat, logger)
	case "ollama":
		return NewOllamaParser(&cfg.Ollama, logger), nil
	default:
		return nil, fmt.Errorf("llm provider %q not supported (supported: gigachat, ollama)", cfg.LLM.Provider)
	}
}

const extractionSystemInstruction = `You are an intelligent assistant that extracts structured information from credit card statements and invoices based only on the information provided. Your ability to extract and summarize this information accurately is essential. Do not use outside knowledge. Only rely on the context passed by the user.`

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract the credit card statement information from the document below.

IMPORTANT: Return ONLY a valid JSON object, with no comments or explanations before or after it.

Document text:
%s

Return a JSON object in exactly this format:
{
  "customer_name": "name of the customer, each word capitalized (min 3 characters)",
  "customer_address": {
    "full_address": "complete mailing address of the customer",
    "city": "city from the customer's address",
    "zip": "ZIP code from the customer's address"
  },
  "payment_info": {
    "new_balance": 1234.56,
    "minimum_payment": 35.00,
    "due_date": "YYYY-MM-DD"
  },
  "spend_line_items": [
    {
      "spend_date": "YYYY-MM-DD",
      "spend_description": "merchant or description of the transaction",
      "amount": 12.34,
      "category": "category like Grocery, Dining, Travel; use 'Other' if unclear"
    }
  ]
}

RULES:
- Extract ALL purchases in the document into spend_line_items
- Amounts are positive numbers with 2 decimal places
- Dates use the YYYY-MM-DD format
- Return ONLY JSON, without markdown fences`, text)
}

// parseStatementResponse turns a raw model reply into a validated
// statement. Models sometimes wrap JSON in markdown fences or commentary,
// so the outermost object is sliced out before decoding.
func parseStatementResponse(content string) (*models.CreditCardStatement, error) {
	content = strings.TrimSpace(content)

	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("invalid response format: %s", content)
	}
	jsonStr := content[jsonStart : jsonEnd+1]

	var statement models.CreditCardStatement
	if err := json.Unmarshal([]byte(jsonStr), &statement); err != nil {
		// Strip markdown code fences and retry once.
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		jsonStr = strings.TrimSpace(jsonStr)

		if err := json.Unmarshal([]byte(jsonStr), &statement); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
	}

	statement.Normalize()
	if err := statement.Validate(); err != nil {
		return nil, err
	}

	return &statement, nil
}

// GigaChatParser is the cloud-hosted extraction backend.
type GigaChatParser struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatParser(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatParser, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = extractionSystemInstruction
	model.Temperature = 0.1

	return &GigaChatParser{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (p *GigaChatParser) ParseStatement(ctx context.Context, text string) (*models.CreditCardStatement, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: buildExtractionPrompt(text)},
	}

	resp, err := p.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from LLM")
	}

	statement, err := parseStatementResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Statement extracted",
		zap.String("provider", "gigachat"),
		zap.String("customer", statement.CustomerName),
		zap.Int("line_items", len(statement.SpendLineItems)),
	)

	return statement, nil
}

func (p *GigaChatParser) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

// OllamaParser is the locally-hosted extraction backend. Ollama exposes a
// plain JSON chat API, so it is called over net/http directly.
type OllamaParser struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOllamaParser(cfg *config.OllamaConfig, logger *zap.Logger) *OllamaParser {
	return &OllamaParser{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		// Local models can take minutes on large statements.
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     logger,
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

func (p *OllamaParser) ParseStatement(ctx context.Context, text string) (*models.CreditCardStatement, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model: p.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: extractionSystemInstruction},
			{Role: "user", Content: buildExtractionPrompt(text)},
		},
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}

	statement, err := parseStatementResponse(chatResp.Message.Content)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Statement extracted",
		zap.String("provider", "ollama"),
		zap.String("customer", statement.CustomerName),
		zap.Int("line_items", len(statement.SpendLineItems)),
	)

	return statement, nil
}

func (p *OllamaParser) Close() error {
	return nil
}
