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

const projectColumns = `id, name, customer_id, rate_card_id, parent_id, is_archived, created_at, updated_at`

// ProjectRepo is a SQLite implementation of ProjectRepository
type ProjectRepo struct {
	db *db.DB
}

// NewProjectRepo creates a new ProjectRepo
func NewProjectRepo(database *db.DB) *ProjectRepo {
	return &ProjectRepo{db: database}
}

// Create inserts a new project
func (r *ProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	query := `
		INSERT INTO projects (name, customer_id, rate_card_id, parent_id, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		project.Name,
		project.CustomerID,
		nullInt64(project.RateCardID),
		nullInt64(project.ParentID),
		project.IsArchived,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project ID: %w", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("project")
		}
		return nil, err
	}
	return project, nil
}

// List retrieves projects, optionally for one customer
func (r *ProjectRepo) List(ctx context.Context, customerID *int64, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE (is_archived = 0 OR ? = 1)`
	args := []interface{}{includeArchived}

	if customerID != nil {
		query += " AND customer_id = ?"
		args = append(args, *customerID)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Children returns the IDs of the direct children of a project
func (r *ProjectRepo) Children(ctx context.Context, parentID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM projects WHERE parent_id = ? ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child projects: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child project: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating child projects: %w", err)
	}

	return ids, nil
}

// Update updates an existing project
func (r *ProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = ?, customer_id = ?, rate_card_id = ?, parent_id = ?, is_archived = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		project.Name,
		project.CustomerID,
		nullInt64(project.RateCardID),
		nullInt64(project.ParentID),
		project.IsArchived,
		formatTime(project.UpdatedAt),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return checkAffected(result, "project")
}

// Archive marks a project as archived
func (r *ProjectRepo) Archive(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET is_archived = 1, updated_at = ? WHERE id = ?`,
		nowString(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}
	return checkAffected(result, "project")
}

// Delete removes a project
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return checkAffected(result, "project")
}

func scanProject(s scanner) (*domain.Project, error) {
	project := &domain.Project{}
	var rateCardID, parentID sql.NullInt64
	var createdAt, updatedAt string

	err := s.Scan(
		&project.ID,
		&project.Name,
		&project.CustomerID,
		&rateCardID,
		&parentID,
		&project.IsArchived,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	project.RateCardID = int64Ptr(rateCardID)
	project.ParentID = int64Ptr(parentID)

	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return project, nil
}
