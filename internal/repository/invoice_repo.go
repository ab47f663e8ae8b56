package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/workbench/internal/db"
	"github.com/andy/workbench/internal/domain"
)

const invoiceColumns = `
	id, invoice_number, customer_id, subject_kind, subject_id,
	subtotal, discount_percent, discount_amount, tax_rate, tax_amount, total,
	status, due_date, paid_date, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

// Create inserts a new invoice and its line items in one transaction
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO invoices (
			invoice_number, customer_id, subject_kind, subject_id,
			subtotal, discount_percent, discount_amount, tax_rate, tax_amount, total,
			status, due_date, paid_date, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		invoice.InvoiceNumber,
		invoice.CustomerID,
		string(invoice.Subject.Kind),
		invoice.Subject.ID,
		invoice.Subtotal,
		invoice.DiscountPercent,
		invoice.DiscountAmount,
		invoice.TaxRate,
		invoice.TaxAmount,
		invoice.Total,
		string(invoice.Status),
		nullTime(invoice.DueDate),
		nullTime(invoice.PaidDate),
		formatTime(invoice.CreatedAt),
		formatTime(invoice.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice %s already exists: %w", invoice.InvoiceNumber, ErrConflict)
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get invoice ID: %w", err)
	}

	for _, item := range invoice.LineItems {
		if err := insertLineItem(ctx, tx, id, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice: %w", err)
	}

	invoice.ID = id
	return nil
}

// GetByID retrieves an invoice and its line items by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
}

// GetByNumber retrieves an invoice and its line items by invoice number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = ?`, number)
}

// List retrieves invoices with optional filters. Line items are not loaded.
func (r *InvoiceRepo) List(ctx context.Context, customerID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := make([]interface{}, 0)

	if customerID != nil {
		query += " AND customer_id = ?"
		args = append(args, *customerID)
	}

	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// Update updates the header fields of an existing invoice
func (r *InvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	query := `
		UPDATE invoices
		SET invoice_number = ?, customer_id = ?, subject_kind = ?, subject_id = ?,
		    subtotal = ?, discount_percent = ?, discount_amount = ?,
		    tax_rate = ?, tax_amount = ?, total = ?, status = ?,
		    due_date = ?, paid_date = ?, updated_at = ?
		WHERE id = ?
	`

	invoice.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		invoice.InvoiceNumber,
		invoice.CustomerID,
		string(invoice.Subject.Kind),
		invoice.Subject.ID,
		invoice.Subtotal,
		invoice.DiscountPercent,
		invoice.DiscountAmount,
		invoice.TaxRate,
		invoice.TaxAmount,
		invoice.Total,
		string(invoice.Status),
		nullTime(invoice.DueDate),
		nullTime(invoice.PaidDate),
		formatTime(invoice.UpdatedAt),
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	return checkAffected(result, "invoice")
}

// Delete removes an invoice; its line items go with it
func (r *InvoiceRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return checkAffected(result, "invoice")
}

// AddLineItem adds a line item to an invoice
func (r *InvoiceRepo) AddLineItem(ctx context.Context, invoiceID int64, item *domain.InvoiceLineItem) error {
	return insertLineItem(ctx, r.db, invoiceID, item)
}

// DeleteLineItem removes a specific line item from an invoice
func (r *InvoiceRepo) DeleteLineItem(ctx context.Context, invoiceID int64, lineItemID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM invoice_line_items WHERE id = ? AND invoice_id = ?`,
		lineItemID, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete line item: %w", err)
	}
	return checkAffected(result, "line item")
}

// GetLineItems retrieves all line items for an invoice in insertion order
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID int64) ([]*domain.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, layer, description, hours, rate, amount
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.InvoiceLineItem, 0)
	for rows.Next() {
		item := &domain.InvoiceLineItem{}
		var layer sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&layer,
			&item.Description,
			&item.Hours,
			&item.Rate,
			&item.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		item.Layer = layer.String

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// GetNextInvoiceNumber generates the next invoice number in format "PREFIX-YEAR-SEQUENCE"
func (r *InvoiceRepo) GetNextInvoiceNumber(ctx context.Context, prefix string, year int) (string, error) {
	query := `
		SELECT invoice_number
		FROM invoices
		WHERE invoice_number LIKE ?
		ORDER BY invoice_number DESC
		LIMIT 1
	`

	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var lastNumber string

	err := r.db.QueryRowContext(ctx, query, pattern).Scan(&lastNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Sprintf("%s-%d-001", prefix, year), nil
		}
		return "", fmt.Errorf("failed to get last invoice number: %w", err)
	}

	// e.g. "WB-2026-005"
	var parsedYear, lastSeq int
	if _, err := fmt.Sscanf(lastNumber, prefix+"-%d-%d", &parsedYear, &lastSeq); err != nil {
		return fmt.Sprintf("%s-%d-001", prefix, year), nil
	}

	return fmt.Sprintf("%s-%d-%03d", prefix, year, lastSeq+1), nil
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg interface{}) (*domain.Invoice, error) {
	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("invoice")
		}
		return nil, err
	}

	if invoice.LineItems, err = r.GetLineItems(ctx, invoice.ID); err != nil {
		return nil, err
	}

	return invoice, nil
}

func insertLineItem(ctx context.Context, ex execer, invoiceID int64, item *domain.InvoiceLineItem) error {
	var layer interface{}
	if item.Layer != "" {
		layer = item.Layer
	}

	result, err := ex.ExecContext(ctx,
		`INSERT INTO invoice_line_items (invoice_id, layer, description, hours, rate, amount)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		invoiceID,
		layer,
		item.Description,
		item.Hours,
		item.Rate,
		item.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to add line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get line item ID: %w", err)
	}

	item.ID = id
	item.InvoiceID = invoiceID
	return nil
}

func scanInvoice(s scanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var subjectKind, status, createdAt, updatedAt string
	var dueDate, paidDate sql.NullString

	err := s.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.CustomerID,
		&subjectKind,
		&invoice.Subject.ID,
		&invoice.Subtotal,
		&invoice.DiscountPercent,
		&invoice.DiscountAmount,
		&invoice.TaxRate,
		&invoice.TaxAmount,
		&invoice.Total,
		&status,
		&dueDate,
		&paidDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	invoice.Subject.Kind = domain.SubjectKind(subjectKind)
	invoice.Status = domain.InvoiceStatus(status)
	invoice.LineItems = make([]*domain.InvoiceLineItem, 0)

	if invoice.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}
	if invoice.PaidDate, err = parseNullTime(paidDate); err != nil {
		return nil, fmt.Errorf("failed to parse paid_date: %w", err)
	}
	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return invoice, nil
}
