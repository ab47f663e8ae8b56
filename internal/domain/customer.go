package domain

import (
	"errors"
	"strings"
	"time"
)

type Customer struct {
	ID         int64
	Name       string
	Email      string
	Notes      string
	IsFriend   bool // billed at the friends rate tier
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCustomer creates a new customer with required fields
func NewCustomer(name string) *Customer {
	now := time.Now()
	return &Customer{
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Tier returns the rate tier this customer is billed at
func (c *Customer) Tier() TierName {
	if c.IsFriend {
		return TierFriends
	}
	return TierStandard
}

// Validate returns an error if the customer is invalid
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name is required")
	}
	return nil
}
