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

const printJobColumns = `id, name, customer_id, rate_card_id, quantity, weight_grams, price_per_gram, print_hours, status, created_at, updated_at`

// PrintJobRepo is a SQLite implementation of PrintJobRepository
type PrintJobRepo struct {
	db *db.DB
}

// NewPrintJobRepo creates a new PrintJobRepo
func NewPrintJobRepo(database *db.DB) *PrintJobRepo {
	return &PrintJobRepo{db: database}
}

// Create inserts a new print job
func (r *PrintJobRepo) Create(ctx context.Context, job *domain.PrintJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid print job: %w", err)
	}

	query := `
		INSERT INTO print_jobs (
			name, customer_id, rate_card_id, quantity, weight_grams,
			price_per_gram, print_hours, status, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		job.Name,
		job.CustomerID,
		nullInt64(job.RateCardID),
		job.Quantity,
		job.WeightGrams,
		job.PricePerGram,
		job.PrintHours,
		string(job.Status),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create print job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get print job ID: %w", err)
	}

	job.ID = id
	return nil
}

// GetByID retrieves a print job by ID
func (r *PrintJobRepo) GetByID(ctx context.Context, id int64) (*domain.PrintJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+printJobColumns+` FROM print_jobs WHERE id = ?`, id)
	job, err := scanPrintJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("print job")
		}
		return nil, err
	}
	return job, nil
}

// List retrieves print jobs with optional filters, newest first
func (r *PrintJobRepo) List(ctx context.Context, customerID *int64, status *domain.PrintJobStatus) ([]*domain.PrintJob, error) {
	query := `SELECT ` + printJobColumns + ` FROM print_jobs WHERE 1=1`
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
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.PrintJob, 0)
	for rows.Next() {
		job, err := scanPrintJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating print jobs: %w", err)
	}

	return jobs, nil
}

// Update updates an existing print job
func (r *PrintJobRepo) Update(ctx context.Context, job *domain.PrintJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid print job: %w", err)
	}

	job.UpdatedAt = time.Now()

	query := `
		UPDATE print_jobs
		SET name = ?, customer_id = ?, rate_card_id = ?, quantity = ?, weight_grams = ?,
		    price_per_gram = ?, print_hours = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		job.Name,
		job.CustomerID,
		nullInt64(job.RateCardID),
		job.Quantity,
		job.WeightGrams,
		job.PricePerGram,
		job.PrintHours,
		string(job.Status),
		formatTime(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update print job: %w", err)
	}

	return checkAffected(result, "print job")
}

// Delete removes a print job
func (r *PrintJobRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM print_jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete print job: %w", err)
	}
	return checkAffected(result, "print job")
}

func scanPrintJob(s scanner) (*domain.PrintJob, error) {
	job := &domain.PrintJob{}
	var rateCardID sql.NullInt64
	var status, createdAt, updatedAt string

	err := s.Scan(
		&job.ID,
		&job.Name,
		&job.CustomerID,
		&rateCardID,
		&job.Quantity,
		&job.WeightGrams,
		&job.PricePerGram,
		&job.PrintHours,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan print job: %w", err)
	}

	job.RateCardID = int64Ptr(rateCardID)
	job.Status = domain.PrintJobStatus(status)

	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if job.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return job, nil
}
