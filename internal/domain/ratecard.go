package domain

import (
	"errors"
	"strings"
	"time"
)

// TierName names a price level on a rate card
type TierName string

const (
	TierStandard TierName = "standard"
	TierFriends  TierName = "friends"
)

// RateTier is an hourly rate, optionally given as a min/max range
type RateTier struct {
	Min *float64
	Max *float64
}

// FixedTier returns a tier with a single rate
func FixedTier(rate float64) RateTier {
	return RateTier{Min: &rate}
}

// Rate returns the billable hourly rate of the tier.
// The lower bound wins when a range is given; an empty tier bills nothing.
func (t RateTier) Rate() float64 {
	if t.Min != nil {
		return *t.Min
	}
	if t.Max != nil {
		return *t.Max
	}
	return 0
}

func (t RateTier) validate(name string) error {
	if t.Min != nil && *t.Min < 0 {
		return errors.New(name + " minimum rate cannot be negative")
	}
	if t.Max != nil && *t.Max < 0 {
		return errors.New(name + " maximum rate cannot be negative")
	}
	if t.Min != nil && t.Max != nil && *t.Max < *t.Min {
		return errors.New(name + " maximum rate must not be below the minimum")
	}
	return nil
}

// RateCard is the service price list a project or print job is billed against
type RateCard struct {
	ID        int64
	Service   string
	Category  string
	Standard  RateTier
	Friends   RateTier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRateCard creates a rate card with a fixed standard rate
func NewRateCard(service, category string, standard float64) *RateCard {
	now := time.Now()
	return &RateCard{
		Service:   strings.TrimSpace(service),
		Category:  strings.TrimSpace(category),
		Standard:  FixedTier(standard),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RateFor returns the hourly rate for the named tier. Unknown tiers, and a
// friends tier left empty, fall back to the standard rate.
func (c *RateCard) RateFor(tier TierName) float64 {
	if tier == TierFriends && (c.Friends.Min != nil || c.Friends.Max != nil) {
		return c.Friends.Rate()
	}
	return c.Standard.Rate()
}

// Validate returns an error if the rate card is invalid
func (c *RateCard) Validate() error {
	if strings.TrimSpace(c.Service) == "" {
		return errors.New("service name is required")
	}
	if err := c.Standard.validate("standard"); err != nil {
		return err
	}
	return c.Friends.validate("friends")
}
