package domain

import (
	"errors"
	"strings"
	"time"
)

// Project is an hourly billable unit. Projects form a tree through ParentID.
type Project struct {
	ID         int64
	Name       string
	CustomerID int64
	RateCardID *int64
	ParentID   *int64
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProject creates a new top-level project
func NewProject(name string, customerID int64) *Project {
	now := time.Now()
	return &Project{
		Name:       strings.TrimSpace(name),
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Subject returns the subject reference for this project
func (p *Project) Subject() Subject {
	return ProjectSubject(p.ID)
}

// Validate returns an error if the project is invalid
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project name is required")
	}
	if p.CustomerID <= 0 {
		return errors.New("customer ID is required")
	}
	if p.ParentID != nil && p.ID != 0 && *p.ParentID == p.ID {
		return errors.New("project cannot be its own parent")
	}
	return nil
}
