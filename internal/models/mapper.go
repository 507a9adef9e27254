package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MalformedRecordError reports a stored document that cannot be converted
// back into a statement (corrupted or partial write). Callers get this
// instead of a low-level parsing fault.
type MalformedRecordError struct {
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed stored record: field %s: %v", e.Field, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// NewStoredDocument converts a validated statement into its storage form.
// Decimal amounts become fixed-point strings so binary-float rounding can
// never creep in; calendar dates become midnight-UTC timestamps so the
// store only deals in one temporal type. pdfContent is an opaque payload
// and may be nil.
func NewStoredDocument(filename string, st *CreditCardStatement, pdfContent []byte) *StoredDocument {
	now := time.Now().UTC()

	items := make([]StoredSpendItem, len(st.SpendLineItems))
	for i, item := range st.SpendLineItems {
		items[i] = StoredSpendItem{
			SpendDate:        item.SpendDate.Time,
			SpendDescription: item.SpendDescription,
			Amount:           item.Amount.StringFixed(2),
			Category:         item.Category,
		}
	}

	return &StoredDocument{
		ID:           uuid.New(),
		Filename:     filename,
		CustomerName: st.CustomerName,
		CustomerAddress: CustomerAddress{
			FullAddress: st.CustomerAddress.FullAddress,
			City:        st.CustomerAddress.City,
			Zip:         st.CustomerAddress.Zip,
		},
		PaymentInfo: StoredPaymentInfo{
			NewBalance:     st.PaymentInfo.NewBalance.StringFixed(2),
			MinimumPayment: st.PaymentInfo.MinimumPayment.StringFixed(2),
			DueDate:        st.PaymentInfo.DueDate.Time,
		},
		SpendLineItems: items,
		PDFContent:     pdfContent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Statement converts the stored form back into a typed statement.
// The conversion is the exact inverse of NewStoredDocument for amounts and
// dates. A missing or undecodable field yields a *MalformedRecordError.
func (d *StoredDocument) Statement() (*CreditCardStatement, error) {
	if d.CustomerName == "" {
		return nil, &MalformedRecordError{Field: "customer_name", Err: fmt.Errorf("missing")}
	}

	newBalance, err := parseStoredAmount("payment_info.new_balance", d.PaymentInfo.NewBalance)
	if err != nil {
		return nil, err
	}
	minimumPayment, err := parseStoredAmount("payment_info.minimum_payment", d.PaymentInfo.MinimumPayment)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseStoredDate("payment_info.due_date", d.PaymentInfo.DueDate)
	if err != nil {
		return nil, err
	}

	items := make([]SpendItem, len(d.SpendLineItems))
	for i, item := range d.SpendLineItems {
		prefix := fmt.Sprintf("spend_line_items[%d].", i)
		amount, err := parseStoredAmount(prefix+"amount", item.Amount)
		if err != nil {
			return nil, err
		}
		spendDate, err := parseStoredDate(prefix+"spend_date", item.SpendDate)
		if err != nil {
			return nil, err
		}
		items[i] = SpendItem{
			SpendDate:        spendDate,
			SpendDescription: item.SpendDescription,
			Amount:           amount,
			Category:         item.Category,
		}
	}

	return &CreditCardStatement{
		CustomerName:    d.CustomerName,
		CustomerAddress: d.CustomerAddress,
		PaymentInfo: PaymentInfo{
			NewBalance:     newBalance,
			MinimumPayment: minimumPayment,
			DueDate:        dueDate,
		},
		SpendLineItems: items,
	}, nil
}

func parseStoredAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, &MalformedRecordError{Field: field, Err: fmt.Errorf("missing")}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &MalformedRecordError{Field: field, Err: err}
	}
	return d, nil
}

// parseStoredDate drops the time-of-day the storage layer added.
func parseStoredDate(field string, t time.Time) (Date, error) {
	if t.IsZero() {
		return Date{}, &MalformedRecordError{Field: field, Err: fmt.Errorf("missing")}
	}
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}
