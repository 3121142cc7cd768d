package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// Invoice bills a client for work on one of its cases.
type Invoice struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id"`
	CaseID    string          `json:"case_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    InvoiceStatus   `json:"status"`
	DueDate   time.Time       `json:"due_date"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaidAtFor returns the paid-at value an invoice must carry after moving to
// status: now when paid, nil otherwise.
func PaidAtFor(status InvoiceStatus, now time.Time) *time.Time {
	if status != InvoicePaid {
		return nil
	}
	t := now.UTC()
	return &t
}
