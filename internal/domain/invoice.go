package domain

import (
	"errors"
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
)

type Invoice struct {
	ID              int64
	InvoiceNumber   string
	CustomerID      int64
	Subject         Subject
	Subtotal        float64
	DiscountPercent float64 // 10 = 10%
	DiscountAmount  float64
	TaxRate         float64 // 0.21 = 21%
	TaxAmount       float64
	Total           float64
	Status          InvoiceStatus
	DueDate         *time.Time
	PaidDate        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Related data (populated by repository)
	LineItems []*InvoiceLineItem
}

// InvoiceLineItem is one billed row. Print job invoices carry one row per
// cost layer (Layer set); project invoices one row per project.
type InvoiceLineItem struct {
	ID          int64
	InvoiceID   int64
	Layer       string
	Description string
	Hours       float64
	Rate        float64
	Amount      float64
}

// NewInvoice creates a new draft invoice
func NewInvoice(invoiceNumber string, customerID int64, subject Subject) *Invoice {
	now := time.Now()
	return &Invoice{
		InvoiceNumber: invoiceNumber,
		CustomerID:    customerID,
		Subject:       subject,
		Status:        InvoiceStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
		LineItems:     make([]*InvoiceLineItem, 0),
	}
}

// CanEdit returns true if the invoice can be modified
func (i *Invoice) CanEdit() bool {
	return i.Status == InvoiceStatusDraft
}

// IsFinalized returns true if the invoice is finalized or later
func (i *Invoice) IsFinalized() bool {
	return i.Status != InvoiceStatusDraft
}

// Finalize locks the invoice and prevents further edits
func (i *Invoice) Finalize() {
	if i.Status == InvoiceStatusDraft {
		i.Status = InvoiceStatusFinalized
		i.UpdatedAt = time.Now()
	}
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return errors.New("invoice number is required")
	}
	if i.CustomerID <= 0 {
		return errors.New("customer ID is required")
	}
	if err := i.Subject.Validate(); err != nil {
		return err
	}
	if i.TaxRate < 0 || i.TaxRate > 1 {
		return errors.New("tax rate must be between 0 and 1")
	}
	if i.DiscountPercent < 0 || i.DiscountPercent > 100 {
		return errors.New("discount must be between 0 and 100 percent")
	}
	return nil
}
