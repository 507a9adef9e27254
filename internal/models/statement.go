package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to spend items the extractor could not classify.
const DefaultCategory = "Other"

// Date is a calendar date without a time-of-day component.
// It marshals as "YYYY-MM-DD" and accepts both date-only and full
// timestamp forms on unmarshal, since LLM output is not always strict.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

type CustomerAddress struct {
	FullAddress string `json:"full_address"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
}

type PaymentInfo struct {
	NewBalance     decimal.Decimal `json:"new_balance"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDate        Date            `json:"due_date"`
}

type SpendItem struct {
	SpendDate        Date            `json:"spend_date"`
	SpendDescription string          `json:"spend_description"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category"`
}

// CreditCardStatement is the aggregate root produced by structured
// extraction. It owns its nested values exclusively; a statement is either
// accepted as a whole by Validate or rejected as a whole.
type CreditCardStatement struct {
	CustomerName    string          `json:"customer_name"`
	CustomerAddress CustomerAddress `json:"customer_address"`
	PaymentInfo     PaymentInfo     `json:"payment_info"`
	SpendLineItems  []SpendItem     `json:"spend_line_items"`
}

// FieldError records a single violated constraint.
type FieldError struct {
	Field      string
	Constraint string
}

// ValidationError collects every constraint violation found in one
// statement so the caller can report the full failure in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Constraint
	}
	return "statement validation failed: " + strings.Join(parts, "; ")
}

// Normalize trims whitespace from string fields and backfills the category
// fallback for items the extractor left unclassified. Call before Validate.
func (s *CreditCardStatement) Normalize() {
	s.CustomerName = strings.TrimSpace(s.CustomerName)
	s.CustomerAddress.FullAddress = strings.TrimSpace(s.CustomerAddress.FullAddress)
	s.CustomerAddress.City = strings.TrimSpace(s.CustomerAddress.City)
	s.CustomerAddress.Zip = strings.TrimSpace(s.CustomerAddress.Zip)
	for i := range s.SpendLineItems {
		item := &s.SpendLineItems[i]
		item.SpendDescription = strings.TrimSpace(item.SpendDescription)
		item.Category = strings.TrimSpace(item.Category)
		if item.Category == "" {
			item.Category = DefaultCategory
		}
	}
}

// Validate checks every field-level constraint at every nesting level and
// returns a *ValidationError listing all violations, or nil.
func (s *CreditCardStatement) Validate() error {
	var errs []FieldError
	add := func(field, constraint string) {
		errs = append(errs, FieldError{Field: field, Constraint: constraint})
	}

	if utf8.RuneCountInString(s.CustomerName) < 3 {
		add("customer_name", "must be at least 3 characters")
	}
	if utf8.RuneCountInString(s.CustomerAddress.FullAddress) < 5 {
		add("customer_address.full_address", "must be at least 5 characters")
	}
	if utf8.RuneCountInString(s.CustomerAddress.City) < 2 {
		add("customer_address.city", "must be at least 2 characters")
	}
	if s.CustomerAddress.Zip == "" {
		add("customer_address.zip", "must not be empty")
	}

	if !s.PaymentInfo.NewBalance.IsPositive() {
		add("payment_info.new_balance", "must be greater than 0")
	}
	if err := checkPrecision(s.PaymentInfo.NewBalance); err != nil {
		add("payment_info.new_balance", err.Error())
	}
	if s.PaymentInfo.MinimumPayment.IsNegative() {
		add("payment_info.minimum_payment", "must not be negative")
	}
	if err := checkPrecision(s.PaymentInfo.MinimumPayment); err != nil {
		add("payment_info.minimum_payment", err.Error())
	}
	if s.PaymentInfo.DueDate.IsZero() {
		add("payment_info.due_date", "must be a valid date")
	}

	for i, item := range s.SpendLineItems {
		prefix := fmt.Sprintf("spend_line_items[%d].", i)
		if item.SpendDate.IsZero() {
			add(prefix+"spend_date", "must be a valid date")
		}
		if utf8.RuneCountInString(item.SpendDescription) < 2 {
			add(prefix+"spend_description", "must be at least 2 characters")
		}
		if !item.Amount.IsPositive() {
			add(prefix+"amount", "must be greater than 0")
		}
		if err := checkPrecision(item.Amount); err != nil {
			add(prefix+"amount", err.Error())
		}
		if utf8.RuneCountInString(item.Category) < 2 {
			add(prefix+"category", "must be at least 2 characters")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkPrecision(d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("must have at most 2 decimal places")
	}
	return nil
}
