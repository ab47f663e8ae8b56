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

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

const customerColumns = `id, name, email, notes, is_friend, is_archived, created_at, updated_at`

// CustomerRepo is a SQLite implementation of CustomerRepository
type CustomerRepo struct {
	db *db.DB
}

// NewCustomerRepo creates a new CustomerRepo
func NewCustomerRepo(database *db.DB) *CustomerRepo {
	return &CustomerRepo{db: database}
}

// Create inserts a new customer into the database
func (r *CustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	query := `
		INSERT INTO customers (name, email, notes, is_friend, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		customer.Name,
		customer.Email,
		customer.Notes,
		customer.IsFriend,
		customer.IsArchived,
		formatTime(customer.CreatedAt),
		formatTime(customer.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer %q already exists: %w", customer.Name, ErrConflict)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get customer ID: %w", err)
	}

	customer.ID = id
	return nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return scanCustomerRow(row)
}

// GetByName retrieves a customer by name
func (r *CustomerRepo) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE name = ?`, name)
	return scanCustomerRow(row)
}

// List retrieves all customers, optionally including archived ones
func (r *CustomerRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE is_archived = 0 OR ? = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// Update updates an existing customer
func (r *CustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	customer.UpdatedAt = time.Now()

	query := `
		UPDATE customers
		SET name = ?, email = ?, notes = ?, is_friend = ?, is_archived = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		customer.Name,
		customer.Email,
		customer.Notes,
		customer.IsFriend,
		customer.IsArchived,
		formatTime(customer.UpdatedAt),
		customer.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer %q already exists: %w", customer.Name, ErrConflict)
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return checkAffected(result, "customer")
}

// Archive marks a customer as archived
func (r *CustomerRepo) Archive(ctx context.Context, id int64) error {
	return r.setArchived(ctx, id, true)
}

// Unarchive marks a customer as active
func (r *CustomerRepo) Unarchive(ctx context.Context, id int64) error {
	return r.setArchived(ctx, id, false)
}

func (r *CustomerRepo) setArchived(ctx context.Context, id int64, archived bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET is_archived = ?, updated_at = ? WHERE id = ?`,
		archived, nowString(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive customer: %w", err)
	}
	return checkAffected(result, "customer")
}

func scanCustomerRow(row *sql.Row) (*domain.Customer, error) {
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("customer")
		}
		return nil, err
	}
	return customer, nil
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	var email, notes sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&customer.ID,
		&customer.Name,
		&email,
		&notes,
		&customer.IsFriend,
		&customer.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	customer.Email = email.String
	customer.Notes = notes.String

	if customer.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if customer.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return customer, nil
}
