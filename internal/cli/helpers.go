package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/repository"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, s)
	}
	return id, nil
}

// parseSubject turns "project 3" or "job 7" into a subject reference
func parseSubject(kind, id string) (domain.Subject, error) {
	k, err := domain.ParseSubjectKind(kind)
	if err != nil {
		return domain.Subject{}, err
	}
	n, err := parseID(id, string(k))
	if err != nil {
		return domain.Subject{}, err
	}
	return domain.Subject{Kind: k, ID: n}, nil
}

// parseDate parses YYYY-MM-DD, 'today' or 'yesterday' in local time
func parseDate(s string) (time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	switch s {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
	}
	return t, nil
}

// resolveCustomerID resolves a customer by ID or name
func resolveCustomerID(ctx context.Context, idOrName string) (int64, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		if _, err := appInstance.CustomerRepo.GetByID(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}

	customer, err := appInstance.CustomerRepo.GetByName(ctx, idOrName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("customer named '%s' not found", idOrName)
		}
		return 0, err
	}
	return customer.ID, nil
}

// subjectName looks up a display name, falling back to "project #3"
func subjectName(ctx context.Context, s domain.Subject) string {
	switch s.Kind {
	case domain.SubjectProject:
		if p, err := appInstance.ProjectRepo.GetByID(ctx, s.ID); err == nil {
			return p.Name
		}
	case domain.SubjectPrintJob:
		if j, err := appInstance.PrintJobRepo.GetByID(ctx, s.ID); err == nil {
			return j.Name
		}
	}
	return s.String()
}

func customerName(ctx context.Context, id int64) string {
	if c, err := appInstance.CustomerRepo.GetByID(ctx, id); err == nil {
		return c.Name
	}
	return fmt.Sprintf("Customer #%d", id)
}

func money(amount float64) string {
	symbol := pricing.DefaultCurrency
	if appInstance != nil && appInstance.Config.Invoice.Currency != "" {
		symbol = appInstance.Config.Invoice.Currency
	}
	return pricing.FormatCurrencyWith(symbol, amount)
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
