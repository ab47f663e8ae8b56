package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/workbench/internal/db"
	"github.com/andy/workbench/internal/domain"
)

const timeLogColumns = `id, project_id, print_job_id, user_id, start_time, end_time, note, created_at, updated_at`

// TimeLogRepo is a SQLite implementation of TimeLogRepository
type TimeLogRepo struct {
	db *db.DB
}

// NewTimeLogRepo creates a new TimeLogRepo
func NewTimeLogRepo(database *db.DB) *TimeLogRepo {
	return &TimeLogRepo{db: database}
}

// Create inserts a new time log into the database
func (r *TimeLogRepo) Create(ctx context.Context, log *domain.TimeLog) error {
	if err := log.Validate(); err != nil {
		return fmt.Errorf("invalid time log: %w", err)
	}

	query := `
		INSERT INTO time_logs (project_id, print_job_id, user_id, start_time, end_time, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullInt64(log.ProjectID),
		nullInt64(log.PrintJobID),
		log.UserID,
		formatTime(log.StartTime),
		nullTime(log.EndTime),
		log.Note,
		formatTime(log.CreatedAt),
		formatTime(log.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("open time log for %s: %w", log.Subject(), ErrConflict)
		}
		return fmt.Errorf("failed to create time log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get time log ID: %w", err)
	}

	log.ID = id
	return nil
}

// GetByID retrieves a time log by ID
func (r *TimeLogRepo) GetByID(ctx context.Context, id int64) (*domain.TimeLog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+timeLogColumns+` FROM time_logs WHERE id = ?`, id)
	log, err := scanTimeLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("time log")
		}
		return nil, err
	}
	return log, nil
}

// FindOpen returns the newest open log of the user on the subject, or nil
func (r *TimeLogRepo) FindOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error) {
	column, err := subjectColumn(subject.Kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + timeLogColumns + `
		FROM time_logs
		WHERE ` + column + ` = ? AND user_id = ? AND end_time IS NULL
		ORDER BY start_time DESC, id DESC
		LIMIT 1
	`

	log, err := scanTimeLog(r.db.QueryRowContext(ctx, query, subject.ID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open time log: %w", err)
	}
	return log, nil
}

// End closes the log at the given time if it is still open
func (r *TimeLogRepo) End(ctx context.Context, id int64, at time.Time) (*domain.TimeLog, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE time_logs SET end_time = ?, updated_at = ? WHERE id = ? AND end_time IS NULL`,
		formatTime(at), formatTime(at), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to end time log: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// List retrieves time logs matching the filter, oldest first
func (r *TimeLogRepo) List(ctx context.Context, filter TimeLogFilter) ([]*domain.TimeLog, error) {
	where := []string{"1=1"}
	args := make([]interface{}, 0)

	if filter.Subject != nil {
		column, err := subjectColumn(filter.Subject.Kind)
		if err != nil {
			return nil, err
		}
		where = append(where, column+" = ?")
		args = append(args, filter.Subject.ID)
	}
	if len(filter.ProjectIDs) > 0 {
		where = append(where, "project_id IN ("+placeholders(len(filter.ProjectIDs))+")")
		for _, id := range filter.ProjectIDs {
			args = append(args, id)
		}
	}
	if filter.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.ExcludeID != nil {
		where = append(where, "id != ?")
		args = append(args, *filter.ExcludeID)
	}
	if filter.StartedFrom != nil {
		where = append(where, "start_time >= ?")
		args = append(args, formatTime(*filter.StartedFrom))
	}
	if filter.StartedBefore != nil {
		where = append(where, "start_time < ?")
		args = append(args, formatTime(*filter.StartedBefore))
	}
	if filter.OpenOnly {
		where = append(where, "end_time IS NULL")
	}
	if filter.ClosedOnly {
		where = append(where, "end_time IS NOT NULL")
	}

	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY start_time, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.TimeLog, 0)
	for rows.Next() {
		log, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time logs: %w", err)
	}

	return logs, nil
}

// UpdateNote replaces the note of a time log
func (r *TimeLogRepo) UpdateNote(ctx context.Context, id int64, note string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE time_logs SET note = ?, updated_at = ? WHERE id = ?`,
		note, nowString(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update time log: %w", err)
	}
	return checkAffected(result, "time log")
}

// Delete removes a time log
func (r *TimeLogRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time log: %w", err)
	}
	return checkAffected(result, "time log")
}

func subjectColumn(kind domain.SubjectKind) (string, error) {
	switch kind {
	case domain.SubjectProject:
		return "project_id", nil
	case domain.SubjectPrintJob:
		return "print_job_id", nil
	}
	return "", fmt.Errorf("unknown subject kind %q", kind)
}

func scanTimeLog(s scanner) (*domain.TimeLog, error) {
	log := &domain.TimeLog{}
	var projectID, printJobID sql.NullInt64
	var startTime, createdAt, updatedAt string
	var endTime, note sql.NullString

	err := s.Scan(
		&log.ID,
		&projectID,
		&printJobID,
		&log.UserID,
		&startTime,
		&endTime,
		&note,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan time log: %w", err)
	}

	log.ProjectID = int64Ptr(projectID)
	log.PrintJobID = int64Ptr(printJobID)
	log.Note = note.String

	if log.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if log.EndTime, err = parseNullTime(endTime); err != nil {
		return nil, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if log.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if log.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return log, nil
}
