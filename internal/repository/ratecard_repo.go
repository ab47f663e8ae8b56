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

const rateCardColumns = `id, service, category, standard_min, standard_max, friends_min, friends_max, created_at, updated_at`

// RateCardRepo is a SQLite implementation of RateCardRepository
type RateCardRepo struct {
	db *db.DB
}

// NewRateCardRepo creates a new RateCardRepo
func NewRateCardRepo(database *db.DB) *RateCardRepo {
	return &RateCardRepo{db: database}
}

// Create inserts a new rate card
func (r *RateCardRepo) Create(ctx context.Context, card *domain.RateCard) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("invalid rate card: %w", err)
	}

	query := `
		INSERT INTO rate_cards (service, category, standard_min, standard_max, friends_min, friends_max, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		card.Service,
		card.Category,
		nullFloat(card.Standard.Min),
		nullFloat(card.Standard.Max),
		nullFloat(card.Friends.Min),
		nullFloat(card.Friends.Max),
		formatTime(card.CreatedAt),
		formatTime(card.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rate card %q already exists: %w", card.Service, ErrConflict)
		}
		return fmt.Errorf("failed to create rate card: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rate card ID: %w", err)
	}

	card.ID = id
	return nil
}

// GetByID retrieves a rate card by ID
func (r *RateCardRepo) GetByID(ctx context.Context, id int64) (*domain.RateCard, error) {
	return r.getOne(ctx, `SELECT `+rateCardColumns+` FROM rate_cards WHERE id = ?`, id)
}

// GetByService retrieves a rate card by its service name
func (r *RateCardRepo) GetByService(ctx context.Context, service string) (*domain.RateCard, error) {
	return r.getOne(ctx, `SELECT `+rateCardColumns+` FROM rate_cards WHERE service = ?`, service)
}

// List retrieves all rate cards ordered by category and service
func (r *RateCardRepo) List(ctx context.Context) ([]*domain.RateCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+rateCardColumns+` FROM rate_cards ORDER BY category, service`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*domain.RateCard, 0)
	for rows.Next() {
		card, err := scanRateCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate cards: %w", err)
	}

	return cards, nil
}

// Update updates an existing rate card
func (r *RateCardRepo) Update(ctx context.Context, card *domain.RateCard) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("invalid rate card: %w", err)
	}

	card.UpdatedAt = time.Now()

	query := `
		UPDATE rate_cards
		SET service = ?, category = ?, standard_min = ?, standard_max = ?,
		    friends_min = ?, friends_max = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		card.Service,
		card.Category,
		nullFloat(card.Standard.Min),
		nullFloat(card.Standard.Max),
		nullFloat(card.Friends.Min),
		nullFloat(card.Friends.Max),
		formatTime(card.UpdatedAt),
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rate card: %w", err)
	}

	return checkAffected(result, "rate card")
}

// Delete removes a rate card
func (r *RateCardRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rate_cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rate card: %w", err)
	}
	return checkAffected(result, "rate card")
}

func (r *RateCardRepo) getOne(ctx context.Context, query string, arg interface{}) (*domain.RateCard, error) {
	card, err := scanRateCard(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("rate card")
		}
		return nil, err
	}
	return card, nil
}

func scanRateCard(s scanner) (*domain.RateCard, error) {
	card := &domain.RateCard{}
	var category sql.NullString
	var stdMin, stdMax, frMin, frMax sql.NullFloat64
	var createdAt, updatedAt string

	err := s.Scan(
		&card.ID,
		&card.Service,
		&category,
		&stdMin,
		&stdMax,
		&frMin,
		&frMax,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan rate card: %w", err)
	}

	card.Category = category.String
	card.Standard = domain.RateTier{Min: floatPtr(stdMin), Max: floatPtr(stdMax)}
	card.Friends = domain.RateTier{Min: floatPtr(frMin), Max: floatPtr(frMax)}

	if card.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if card.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return card, nil
}
