package models

import (
	"time"

	"github.com/google/uuid"
)

// StoredPaymentInfo is the storage form of PaymentInfo: amounts as
// fixed-point strings, the due date upgraded to a midnight timestamp.
type StoredPaymentInfo struct {
	NewBalance     string    `json:"new_balance"`
	MinimumPayment string    `json:"minimum_payment"`
	DueDate        time.Time `json:"due_date"`
}

// StoredSpendItem is the storage form of SpendItem.
type StoredSpendItem struct {
	SpendDate        time.Time `json:"spend_date"`
	SpendDescription string    `json:"spend_description"`
	Amount           string    `json:"amount"`
	Category         string    `json:"category"`
}

// StoredDocument is the persistence projection of a validated statement:
// the statement payload plus filename, optional raw PDF bytes and
// bookkeeping timestamps.
type StoredDocument struct {
	ID              uuid.UUID         `json:"-"`
	Filename        string            `json:"filename"`
	CustomerName    string            `json:"customer_name"`
	CustomerAddress CustomerAddress   `json:"customer_address"`
	PaymentInfo     StoredPaymentInfo `json:"payment_info"`
	SpendLineItems  []StoredSpendItem `json:"spend_line_items"`
	PDFContent      []byte            `json:"-"`
	CreatedAt       time.Time         `json:"-"`
	UpdatedAt       time.Time         `json:"-"`
}
