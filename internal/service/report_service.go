package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/repository"
	"github.com/andy/workbench/internal/tracking"
)

// DaySummary is the finished work of one user on one calendar day
type DaySummary struct {
	Date     time.Time
	Duration time.Duration
	Hours    float64
	Logs     []*domain.TimeLog
	Running  int // open logs started that day, not counted in Duration
}

// SubjectSummary is the finished work on a project or print job
type SubjectSummary struct {
	Subject  domain.Subject
	Duration time.Duration
	Hours    float64
	Rate     float64
	Amount   float64
	Human    string // e.g. "1d 6h (15m) (30,25h)"
	Logs     []*domain.TimeLog
}

// ReportService provides aggregations over tracked time
type ReportService interface {
	// TodayTotal sums the user's finished logs started on the calendar day of now
	TodayTotal(ctx context.Context, userID int64, now time.Time) (*DaySummary, error)

	// SubjectSummary totals the finished logs of a subject at its rate card
	SubjectSummary(ctx context.Context, subject domain.Subject) (*SubjectSummary, error)

	// GetOutstandingTotal sums sent and overdue invoices
	GetOutstandingTotal(ctx context.Context) (float64, error)
}

type reportService struct {
	logRepo      repository.TimeLogRepository
	invoiceRepo  repository.InvoiceRepository
	projectRepo  repository.ProjectRepository
	printJobRepo repository.PrintJobRepository
	rateCardRepo repository.RateCardRepository
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	logRepo repository.TimeLogRepository,
	invoiceRepo repository.InvoiceRepository,
	projectRepo repository.ProjectRepository,
	printJobRepo repository.PrintJobRepository,
	rateCardRepo repository.RateCardRepository,
	customerRepo repository.CustomerRepository,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		logRepo:      logRepo,
		invoiceRepo:  invoiceRepo,
		projectRepo:  projectRepo,
		printJobRepo: printJobRepo,
		rateCardRepo: rateCardRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *reportService) TodayTotal(ctx context.Context, userID int64, now time.Time) (*DaySummary, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}

	// query a day either side and let the calendar check decide
	from := now.AddDate(0, 0, -1)
	until := now.AddDate(0, 0, 1)
	logs, err := s.logRepo.List(ctx, repository.TimeLogFilter{
		UserID:        &userID,
		StartedFrom:   &from,
		StartedBefore: &until,
	})
	if err != nil {
		return nil, err
	}

	summary := &DaySummary{Date: now, Logs: make([]*domain.TimeLog, 0)}
	for _, l := range logs {
		if !tracking.IsSameCalendarDay(l.StartTime, now) {
			continue
		}
		if l.IsOpen() {
			summary.Running++
			continue
		}
		summary.Logs = append(summary.Logs, l)
	}

	summary.Duration = pricing.TotalDuration(summary.Logs)
	summary.Hours = pricing.ExactHours(summary.Logs)
	return summary, nil
}

func (s *reportService) SubjectSummary(ctx context.Context, subject domain.Subject) (*SubjectSummary, error) {
	if err := subject.Validate(); err != nil {
		return nil, ErrInvalidSubject
	}

	logs, err := s.logRepo.List(ctx, repository.TimeLogFilter{Subject: &subject})
	if err != nil {
		return nil, err
	}

	rate := s.subjectRate(ctx, subject)
	duration := pricing.TotalDuration(logs)

	return &SubjectSummary{
		Subject:  subject,
		Duration: duration,
		Hours:    pricing.ExactHours(logs),
		Rate:     pricing.RateOrZero(rate),
		Amount:   pricing.AmountForLogs(logs, rate),
		Human:    pricing.FormatDurationHuman(duration),
		Logs:     logs,
	}, nil
}

func (s *reportService) GetOutstandingTotal(ctx context.Context) (float64, error) {
	total := 0.0
	for _, status := range []domain.InvoiceStatus{domain.InvoiceStatusSent, domain.InvoiceStatusOverdue} {
		st := status
		invoices, err := s.invoiceRepo.List(ctx, nil, &st)
		if err != nil {
			return 0, err
		}
		for _, invoice := range invoices {
			total += invoice.Total
		}
	}
	return total, nil
}

// subjectRate resolves the rate card of a subject at its customer's tier.
// Any lookup failure returns nil, which bills nothing.
func (s *reportService) subjectRate(ctx context.Context, subject domain.Subject) *float64 {
	var rateCardID *int64
	var customerID int64

	switch subject.Kind {
	case domain.SubjectProject:
		p, err := s.projectRepo.GetByID(ctx, subject.ID)
		if err != nil {
			s.warnRate(subject, err)
			return nil
		}
		rateCardID, customerID = p.RateCardID, p.CustomerID
	case domain.SubjectPrintJob:
		j, err := s.printJobRepo.GetByID(ctx, subject.ID)
		if err != nil {
			s.warnRate(subject, err)
			return nil
		}
		rateCardID, customerID = j.RateCardID, j.CustomerID
	}

	if rateCardID == nil {
		return nil
	}

	card, err := s.rateCardRepo.GetByID(ctx, *rateCardID)
	if err != nil {
		s.warnRate(subject, err)
		return nil
	}

	tier := domain.TierStandard
	if customer, err := s.customerRepo.GetByID(ctx, customerID); err == nil {
		tier = customer.Tier()
	}

	rate := card.RateFor(tier)
	return &rate
}

func (s *reportService) warnRate(subject domain.Subject, err error) {
	s.logger.Warn("rate lookup failed, billing at zero", zap.Stringer("subject", subject), zap.Error(err))
}
