package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validStatement() *CreditCardStatement {
	return &CreditCardStatement{
		CustomerName: "Jane Doe",
		CustomerAddress: CustomerAddress{
			FullAddress: "123 Main Street, Springfield",
			City:        "Springfield",
			Zip:         "12345",
		},
		PaymentInfo: PaymentInfo{
			NewBalance:     decimal.RequireFromString("1250.00"),
			MinimumPayment: decimal.RequireFromString("35.00"),
			DueDate:        NewDate(2024, time.March, 1),
		},
		SpendLineItems: []SpendItem{
			{
				SpendDate:        NewDate(2024, time.January, 1),
				SpendDescription: "Coffee Shop",
				Amount:           decimal.RequireFromString("4.50"),
				Category:         "Dining",
			},
		},
	}
}

func TestValidate_ValidStatement(t *testing.T) {
	if err := validStatement().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_FieldConstraints(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *CreditCardStatement)
		wantField string
	}{
		{
			name:      "customer name too short",
			mutate:    func(s *CreditCardStatement) { s.CustomerName = "Jo" },
			wantField: "customer_name",
		},
		{
			name:      "full address too short",
			mutate:    func(s *CreditCardStatement) { s.CustomerAddress.FullAddress = "abcd" },
			wantField: "customer_address.full_address",
		},
		{
			name:      "city too short",
			mutate:    func(s *CreditCardStatement) { s.CustomerAddress.City = "X" },
			wantField: "customer_address.city",
		},
		{
			name:      "zip missing",
			mutate:    func(s *CreditCardStatement) { s.CustomerAddress.Zip = "" },
			wantField: "customer_address.zip",
		},
		{
			name:      "zero balance rejected",
			mutate:    func(s *CreditCardStatement) { s.PaymentInfo.NewBalance = decimal.Zero },
			wantField: "payment_info.new_balance",
		},
		{
			name: "negative balance rejected",
			mutate: func(s *CreditCardStatement) {
				s.PaymentInfo.NewBalance = decimal.RequireFromString("-1.00")
			},
			wantField: "payment_info.new_balance",
		},
		{
			name: "negative minimum payment rejected",
			mutate: func(s *CreditCardStatement) {
				s.PaymentInfo.MinimumPayment = decimal.RequireFromString("-0.01")
			},
			wantField: "payment_info.minimum_payment",
		},
		{
			name: "balance with three decimal places rejected",
			mutate: func(s *CreditCardStatement) {
				s.PaymentInfo.NewBalance = decimal.RequireFromString("10.005")
			},
			wantField: "payment_info.new_balance",
		},
		{
			name:      "due date missing",
			mutate:    func(s *CreditCardStatement) { s.PaymentInfo.DueDate = Date{} },
			wantField: "payment_info.due_date",
		},
		{
			name: "item description too short",
			mutate: func(s *CreditCardStatement) {
				s.SpendLineItems[0].SpendDescription = "A"
			},
			wantField: "spend_line_items[0].spend_description",
		},
		{
			name: "item amount not positive",
			mutate: func(s *CreditCardStatement) {
				s.SpendLineItems[0].Amount = decimal.Zero
			},
			wantField: "spend_line_items[0].amount",
		},
		{
			name: "item category too short",
			mutate: func(s *CreditCardStatement) {
				s.SpendLineItems[0].Category = "X"
			},
			wantField: "spend_line_items[0].category",
		},
		{
			name: "item date missing",
			mutate: func(s *CreditCardStatement) {
				s.SpendLineItems[0].SpendDate = Date{}
			},
			wantField: "spend_line_items[0].spend_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statement := validStatement()
			tt.mutate(statement)

			err := statement.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() returned %T, want *ValidationError", err)
			}

			found := false
			for _, f := range vErr.Fields {
				if f.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidationError fields = %v, want field %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	statement := validStatement()
	statement.CustomerName = ""
	statement.CustomerAddress.City = ""
	statement.PaymentInfo.NewBalance = decimal.Zero

	err := statement.Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Validate() returned %T, want *ValidationError", err)
	}
	if len(vErr.Fields) != 3 {
		t.Errorf("got %d field errors, want 3: %v", len(vErr.Fields), vErr.Fields)
	}
}

func TestValidate_MinimumPaymentMayExceedBalance(t *testing.T) {
	// No ordering constraint exists between the two amounts.
	statement := validStatement()
	statement.PaymentInfo.NewBalance = decimal.RequireFromString("10.00")
	statement.PaymentInfo.MinimumPayment = decimal.RequireFromString("50.00")

	if err := statement.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestNormalize_CategoryFallback(t *testing.T) {
	statement := validStatement()
	statement.SpendLineItems[0].Category = "  "
	statement.Normalize()

	if got := statement.SpendLineItems[0].Category; got != DefaultCategory {
		t.Errorf("category = %q, want %q", got, DefaultCategory)
	}
}

func TestNormalize_TrimsWhitespace(t *testing.T) {
	statement := validStatement()
	statement.CustomerName = "  Jane Doe  "
	statement.SpendLineItems[0].SpendDescription = " Coffee Shop "
	statement.Normalize()

	if statement.CustomerName != "Jane Doe" {
		t.Errorf("customer name = %q", statement.CustomerName)
	}
	if statement.SpendLineItems[0].SpendDescription != "Coffee Shop" {
		t.Errorf("description = %q", statement.SpendLineItems[0].SpendDescription)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	original := NewDate(2024, time.February, 15)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2024-02-15"` {
		t.Errorf("marshaled = %s, want %q", data, "2024-02-15")
	}

	var decoded Date
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Equal(original.Time) {
		t.Errorf("round trip changed date: %v != %v", decoded, original)
	}
}

func TestDate_UnmarshalTimestampForms(t *testing.T) {
	tests := []struct {
		input string
		want  Date
	}{
		{`"2024-02-15"`, NewDate(2024, time.February, 15)},
		{`"2024-02-15T10:30:00Z"`, NewDate(2024, time.February, 15)},
		{`"2024-02-15 10:30:00"`, NewDate(2024, time.February, 15)},
	}
	for _, tt := range tests {
		var got Date
		if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want.Time) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}

	var bad Date
	if err := json.Unmarshal([]byte(`"15/02/2024"`), &bad); err == nil {
		t.Error("Unmarshal of unsupported format succeeded, want error")
	}
}

func TestValidationError_MessageNamesFields(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "customer_name", Constraint: "must be at least 3 characters"},
	}}
	if !strings.Contains(err.Error(), "customer_name") {
		t.Errorf("error message %q does not name the field", err.Error())
	}
}
