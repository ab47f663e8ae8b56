package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/repository"
)

var (
	ErrInvoiceNotEditable  = errors.New("invoice cannot be edited after finalization")
	ErrInvoiceEmpty        = errors.New("cannot finalize invoice with no line items")
	ErrInvoiceNotFinalized = errors.New("cannot mark draft invoice as sent - finalize first")
)

// InvoiceSettings are the configured defaults every invoice starts from
type InvoiceSettings struct {
	Prefix                 string
	DueDays                int
	TaxRate                float64 // 0.21 = 21%
	ElectricityRatePerHour float64
	LabourBaseCostPerUnit  float64
	MarginRate             float64 // 0.25 = 25%
	Pipeline               pricing.PipelineOptions
}

// InvoiceParams are the per-invoice choices. Nil fields use the settings.
type InvoiceParams struct {
	DiscountPercent float64  `yaml:"discount_percent"`
	TaxRate         *float64 `yaml:"tax_rate,omitempty"`
	MarginRate      *float64 `yaml:"margin_rate,omitempty"`
}

// InvoiceService prices print jobs and project trees and manages the invoice lifecycle
type InvoiceService interface {
	// QuotePrintJob runs the cost pipeline without saving anything
	QuotePrintJob(ctx context.Context, printJobID int64, params InvoiceParams) (pricing.Breakdown, error)

	// InvoicePrintJob saves a draft invoice with one line per cost layer
	InvoicePrintJob(ctx context.Context, printJobID int64, params InvoiceParams) (*domain.Invoice, error)

	// QuoteProject prices a project and all of its descendants
	QuoteProject(ctx context.Context, projectID int64, params InvoiceParams) (pricing.ProjectTotals, error)

	// InvoiceProject saves a draft invoice with one line per project in the tree
	InvoiceProject(ctx context.Context, projectID int64, params InvoiceParams) (*domain.Invoice, error)

	// Finalize locks a draft invoice
	Finalize(ctx context.Context, invoiceID int64) error

	// MarkSent updates invoice status to sent
	MarkSent(ctx context.Context, invoiceID int64) error

	// MarkPaid updates invoice status to paid with payment date
	MarkPaid(ctx context.Context, invoiceID int64, paidDate time.Time) error

	// CheckOverdue flags sent invoices past their due date and returns how many changed
	CheckOverdue(ctx context.Context) (int, error)

	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, customerID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	printJobRepo repository.PrintJobRepository
	projectRepo  repository.ProjectRepository
	rateCardRepo repository.RateCardRepository
	customerRepo repository.CustomerRepository
	logRepo      repository.TimeLogRepository
	settings     InvoiceSettings
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	printJobRepo repository.PrintJobRepository,
	projectRepo repository.ProjectRepository,
	rateCardRepo repository.RateCardRepository,
	customerRepo repository.CustomerRepository,
	logRepo repository.TimeLogRepository,
	settings InvoiceSettings,
	logger *zap.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		printJobRepo: printJobRepo,
		projectRepo:  projectRepo,
		rateCardRepo: rateCardRepo,
		customerRepo: customerRepo,
		logRepo:      logRepo,
		settings:     settings,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *invoiceService) QuotePrintJob(ctx context.Context, printJobID int64, params InvoiceParams) (pricing.Breakdown, error) {
	job, err := s.printJobRepo.GetByID(ctx, printJobID)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	in, err := s.printJobInput(ctx, job, params)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	return pricing.PrintJobBreakdown(in, s.settings.Pipeline), nil
}

func (s *invoiceService) InvoicePrintJob(ctx context.Context, printJobID int64, params InvoiceParams) (*domain.Invoice, error) {
	job, err := s.printJobRepo.GetByID(ctx, printJobID)
	if err != nil {
		return nil, err
	}

	in, err := s.printJobInput(ctx, job, params)
	if err != nil {
		return nil, err
	}
	b := pricing.PrintJobBreakdown(in, s.settings.Pipeline)

	invoice, err := s.newDraft(ctx, job.CustomerID, job.Subject())
	if err != nil {
		return nil, err
	}

	for _, l := range b.ChargeLayers() {
		item := &domain.InvoiceLineItem{
			Layer:       l.Name,
			Description: fmt.Sprintf("%s: %s", job.Name, layerTitle(l.Name)),
			Amount:      l.Cost,
		}
		if l.Name == pricing.LayerElectricity {
			item.Hours = in.PrintHours
			item.Rate = in.ElectricityRatePerHour
		}
		invoice.LineItems = append(invoice.LineItems, item)
	}

	invoice.Subtotal = b.Margin.Total
	invoice.DiscountPercent = in.DiscountPercent
	invoice.DiscountAmount = -b.Discount.Cost
	invoice.TaxRate = in.TaxRate
	invoice.TaxAmount = b.Tax.Cost
	invoice.Total = b.Total()

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("print job invoiced",
		zap.String("invoice", invoice.InvoiceNumber),
		zap.Int64("print_job_id", job.ID),
		zap.Float64("total", invoice.Total),
	)

	return invoice, nil
}

func (s *invoiceService) QuoteProject(ctx context.Context, projectID int64, params InvoiceParams) (pricing.ProjectTotals, error) {
	root, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return pricing.ProjectTotals{}, err
	}

	tier := s.customerTier(ctx, root.CustomerID)

	children := func(id int64) ([]int64, error) {
		return s.projectRepo.Children(ctx, id)
	}
	line := func(id int64) (pricing.ProjectLine, error) {
		return s.projectLine(ctx, id, tier)
	}

	return pricing.ProjectTreeTotals(root.ID, children, line, params.DiscountPercent, s.taxRate(params))
}

func (s *invoiceService) InvoiceProject(ctx context.Context, projectID int64, params InvoiceParams) (*domain.Invoice, error) {
	root, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totals, err := s.QuoteProject(ctx, projectID, params)
	if err != nil {
		return nil, err
	}

	invoice, err := s.newDraft(ctx, root.CustomerID, root.Subject())
	if err != nil {
		return nil, err
	}

	for _, l := range totals.Lines {
		invoice.LineItems = append(invoice.LineItems, &domain.InvoiceLineItem{
			Description: l.Name,
			Hours:       l.Hours,
			Rate:        l.Rate,
			Amount:      l.Amount,
		})
	}

	invoice.Subtotal = totals.Subtotal
	invoice.DiscountPercent = totals.DiscountPercent
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.TaxRate = totals.TaxRate
	invoice.TaxAmount = totals.TaxAmount
	invoice.Total = totals.Total

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("project invoiced",
		zap.String("invoice", invoice.InvoiceNumber),
		zap.Int64("project_id", root.ID),
		zap.Int("projects", len(totals.Lines)),
		zap.Float64("total", invoice.Total),
	)

	return invoice, nil
}

func (s *invoiceService) Finalize(ctx context.Context, invoiceID int64) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if !invoice.CanEdit() {
		return ErrInvoiceNotEditable
	}

	if len(invoice.LineItems) == 0 {
		return ErrInvoiceEmpty
	}

	invoice.Finalize()
	return s.invoiceRepo.Update(ctx, invoice)
}

func (s *invoiceService) MarkSent(ctx context.Context, invoiceID int64) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if invoice.Status == domain.InvoiceStatusDraft {
		return ErrInvoiceNotFinalized
	}

	invoice.Status = domain.InvoiceStatusSent
	invoice.UpdatedAt = s.now()

	return s.invoiceRepo.Update(ctx, invoice)
}

func (s *invoiceService) MarkPaid(ctx context.Context, invoiceID int64, paidDate time.Time) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidDate = &paidDate
	invoice.UpdatedAt = s.now()

	return s.invoiceRepo.Update(ctx, invoice)
}

func (s *invoiceService) CheckOverdue(ctx context.Context) (int, error) {
	sentStatus := domain.InvoiceStatusSent
	invoices, err := s.invoiceRepo.List(ctx, nil, &sentStatus)
	if err != nil {
		return 0, err
	}

	now := s.now()
	changed := 0
	for _, invoice := range invoices {
		if invoice.DueDate != nil && now.After(*invoice.DueDate) {
			invoice.Status = domain.InvoiceStatusOverdue
			invoice.UpdatedAt = now
			if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
				return changed, err
			}
			changed++
		}
	}

	return changed, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) ListInvoices(
	ctx context.Context,
	customerID *int64,
	status *domain.InvoiceStatus,
) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx, customerID, status)
}

func (s *invoiceService) newDraft(ctx context.Context, customerID int64, subject domain.Subject) (*domain.Invoice, error) {
	now := s.now()
	number, err := s.invoiceRepo.GetNextInvoiceNumber(ctx, s.settings.Prefix, now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	invoice := domain.NewInvoice(number, customerID, subject)
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	if s.settings.DueDays > 0 {
		due := now.AddDate(0, 0, s.settings.DueDays)
		invoice.DueDate = &due
	}
	return invoice, nil
}

// printJobInput collects the pipeline inputs. Print hours fall back to the
// tracked time when the job has none recorded.
func (s *invoiceService) printJobInput(ctx context.Context, job *domain.PrintJob, params InvoiceParams) (pricing.PrintJobInput, error) {
	hours := job.PrintHours
	if hours == 0 {
		subject := job.Subject()
		logs, err := s.logRepo.List(ctx, repository.TimeLogFilter{Subject: &subject, ClosedOnly: true})
		if err != nil {
			return pricing.PrintJobInput{}, err
		}
		hours = pricing.ExactHours(logs)
	}

	labour := s.settings.LabourBaseCostPerUnit
	if job.RateCardID != nil {
		labour = s.rateFor(ctx, *job.RateCardID, s.customerTier(ctx, job.CustomerID), job.Subject())
	}

	margin := s.settings.MarginRate
	if params.MarginRate != nil {
		margin = *params.MarginRate
	}

	return pricing.PrintJobInput{
		PrintHours:             hours,
		ElectricityRatePerHour: s.settings.ElectricityRatePerHour,
		Quantity:               job.Quantity,
		WeightGrams:            job.WeightGrams,
		PricePerGram:           job.PricePerGram,
		LabourBaseCostPerUnit:  labour,
		MarginRate:             margin,
		DiscountPercent:        params.DiscountPercent,
		TaxRate:                s.taxRate(params),
	}, nil
}

func (s *invoiceService) projectLine(ctx context.Context, projectID int64, tier domain.TierName) (pricing.ProjectLine, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return pricing.ProjectLine{}, err
	}

	subject := project.Subject()
	logs, err := s.logRepo.List(ctx, repository.TimeLogFilter{Subject: &subject, ClosedOnly: true})
	if err != nil {
		return pricing.ProjectLine{}, err
	}

	var rate *float64
	if project.RateCardID != nil {
		r := s.rateFor(ctx, *project.RateCardID, tier, subject)
		rate = &r
	} else {
		s.logger.Warn("project has no rate card, billing at zero", zap.Int64("project_id", project.ID))
	}

	return pricing.ProjectLine{
		ProjectID: project.ID,
		Name:      project.Name,
		Hours:     pricing.ExactHours(logs),
		Rate:      pricing.RateOrZero(rate),
		Amount:    pricing.AmountForLogs(logs, rate),
	}, nil
}

// rateFor looks up the tier rate of a rate card. Lookup failures bill at zero.
func (s *invoiceService) rateFor(ctx context.Context, rateCardID int64, tier domain.TierName, subject domain.Subject) float64 {
	card, err := s.rateCardRepo.GetByID(ctx, rateCardID)
	if err != nil {
		s.logger.Warn("rate lookup failed, billing at zero",
			zap.Int64("rate_card_id", rateCardID),
			zap.Stringer("subject", subject),
			zap.Error(err),
		)
		return 0
	}
	return card.RateFor(tier)
}

func (s *invoiceService) customerTier(ctx context.Context, customerID int64) domain.TierName {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		s.logger.Warn("customer lookup failed, using standard tier",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
		return domain.TierStandard
	}
	return customer.Tier()
}

func (s *invoiceService) taxRate(params InvoiceParams) float64 {
	if params.TaxRate != nil {
		return *params.TaxRate
	}
	return s.settings.TaxRate
}

func layerTitle(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
