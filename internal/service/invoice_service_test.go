package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
)

var invoiceNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func testSettings() InvoiceSettings {
	return InvoiceSettings{
		Prefix:                 "WB",
		DueDays:                30,
		TaxRate:                0.21,
		ElectricityRatePerHour: 0.35,
		LabourBaseCostPerUnit:  5,
		MarginRate:             0.25,
	}
}

type invoiceFixture struct {
	svc      *invoiceService
	invoices *mockInvoiceRepo
	cards    *mockRateCardRepo
	logs     *mockTimeLogRepo
	job      *domain.PrintJob
}

func newInvoiceFixture() *invoiceFixture {
	job := &domain.PrintJob{
		ID: 7, Name: "Bracket", CustomerID: 1,
		Quantity: 2, WeightGrams: 50, PricePerGram: 0.03, PrintHours: 2,
		Status: domain.PrintJobDone,
	}

	standard := domain.NewRateCard("Design", "studio", 50)
	standard.ID = 1
	standard.Friends = domain.FixedTier(4)

	root := &domain.Project{ID: 1, Name: "Website", CustomerID: 1, RateCardID: ptrInt64(1)}
	child := &domain.Project{ID: 2, Name: "Backend", CustomerID: 1, RateCardID: ptrInt64(1), ParentID: ptrInt64(1)}
	unpriced := &domain.Project{ID: 3, Name: "Hosting", CustomerID: 1, ParentID: ptrInt64(1)}

	f := &invoiceFixture{
		invoices: newMockInvoiceRepo(),
		cards:    &mockRateCardRepo{cards: map[int64]*domain.RateCard{1: standard}},
		logs: newMockTimeLogRepo(
			closed(domain.ProjectSubject(1), invoiceNow.Add(-48*time.Hour), 2*time.Hour),
			closed(domain.ProjectSubject(2), invoiceNow.Add(-47*time.Hour), 90*time.Minute),
			closed(domain.ProjectSubject(3), invoiceNow.Add(-46*time.Hour), time.Hour),
			domain.NewTimeLog(domain.ProjectSubject(1), 1, invoiceNow.Add(-time.Hour)),
		),
		job: job,
	}

	f.svc = &invoiceService{
		invoiceRepo:  f.invoices,
		printJobRepo: &mockPrintJobRepo{jobs: map[int64]*domain.PrintJob{job.ID: job}},
		projectRepo:  &mockProjectRepo{projects: map[int64]*domain.Project{1: root, 2: child, 3: unpriced}},
		rateCardRepo: f.cards,
		customerRepo: &mockCustomerRepo{customers: map[int64]*domain.Customer{
			1: {ID: 1, Name: "ACME"},
			2: {ID: 2, Name: "Pat", IsFriend: true},
		}},
		logRepo:  f.logs,
		settings: testSettings(),
		logger:   zap.NewNop(),
		now:      func() time.Time { return invoiceNow },
	}
	return f
}

func closed(subject domain.Subject, start time.Time, d time.Duration) *domain.TimeLog {
	l := domain.NewTimeLog(subject, 1, start)
	l.Close(start.Add(d))
	return l
}

func TestInvoicePrintJob_OneLinePerChargeLayer(t *testing.T) {
	f := newInvoiceFixture()

	inv, err := f.svc.InvoicePrintJob(context.Background(), 7, InvoiceParams{DiscountPercent: 10})
	require.NoError(t, err)

	assert.Equal(t, "WB-2024-001", inv.InvoiceNumber)
	assert.Equal(t, domain.PrintJobSubject(7), inv.Subject)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	require.NotNil(t, inv.DueDate)
	assert.True(t, inv.DueDate.Equal(invoiceNow.AddDate(0, 0, 30)))

	require.Len(t, inv.LineItems, 4)
	wantLayers := []string{"electricity", "material", "labour", "margin"}
	var sum float64
	for i, item := range inv.LineItems {
		assert.Equal(t, wantLayers[i], item.Layer)
		sum += item.Amount
	}
	// discount and tax only appear once, below the subtotal
	assert.InDelta(t, inv.Subtotal, sum, 1e-9)
	assert.InDelta(t, 2.0, inv.LineItems[0].Hours, 1e-9)

	assert.InDelta(t, 17.13, inv.Subtotal, 1e-9)
	assert.InDelta(t, 1.71, inv.DiscountAmount, 1e-9)
	assert.InDelta(t, 3.24, inv.TaxAmount, 1e-9)
	assert.InDelta(t, 18.66, inv.Total, 1e-9)
	assert.Len(t, f.invoices.created, 1)
}

func TestQuotePrintJob_FriendsTierLabour(t *testing.T) {
	f := newInvoiceFixture()
	f.job.CustomerID = 2
	f.job.RateCardID = ptrInt64(1)

	b, err := f.svc.QuotePrintJob(context.Background(), 7, InvoiceParams{})
	require.NoError(t, err)

	assert.InDelta(t, 8.0, b.Labour.Cost, 1e-9) // 2 units at the friends rate of 4
	assert.InDelta(t, 11.70, b.Labour.Total, 1e-9)
	assert.Empty(t, f.invoices.created, "quotes are not persisted")
}

func TestQuotePrintJob_RateLookupFailureBillsZero(t *testing.T) {
	f := newInvoiceFixture()
	f.job.RateCardID = ptrInt64(1)
	f.cards.err = errors.New("store down")

	b, err := f.svc.QuotePrintJob(context.Background(), 7, InvoiceParams{})
	require.NoError(t, err)
	assert.Zero(t, b.Labour.Cost)
	assert.InDelta(t, 3.70, b.Labour.Total, 1e-9)
}

func TestQuotePrintJob_FallsBackToTrackedHours(t *testing.T) {
	f := newInvoiceFixture()
	f.job.PrintHours = 0
	f.logs.Create(context.Background(), closed(domain.PrintJobSubject(7), invoiceNow.Add(-5*time.Hour), 2*time.Hour))

	b, err := f.svc.QuotePrintJob(context.Background(), 7, InvoiceParams{})
	require.NoError(t, err)
	assert.InDelta(t, 0.70, b.Electricity.Total, 1e-9)
}

func TestQuotePrintJob_LegacyMaterialDoubling(t *testing.T) {
	f := newInvoiceFixture()
	f.svc.settings.Pipeline = pricing.PipelineOptions{LegacyMaterialDoubling: true}

	b, err := f.svc.QuotePrintJob(context.Background(), 7, InvoiceParams{DiscountPercent: 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.40, b.Material.Total, 1e-9)
}

func TestInvoiceProject_WalksTree(t *testing.T) {
	f := newInvoiceFixture()

	inv, err := f.svc.InvoiceProject(context.Background(), 1, InvoiceParams{DiscountPercent: 10, TaxRate: ptrFloat(0.2)})
	require.NoError(t, err)

	require.Len(t, inv.LineItems, 3)
	assert.Equal(t, "Website", inv.LineItems[0].Description)
	assert.InDelta(t, 100.0, inv.LineItems[0].Amount, 1e-9) // 2h at 50, open log ignored
	assert.InDelta(t, 75.0, inv.LineItems[1].Amount, 1e-9)
	assert.Zero(t, inv.LineItems[2].Amount, "project without a rate card bills nothing")

	assert.InDelta(t, 175.0, inv.Subtotal, 1e-9)
	assert.InDelta(t, 17.5, inv.DiscountAmount, 1e-9)
	assert.InDelta(t, 31.5, inv.TaxAmount, 1e-9)
	assert.InDelta(t, 189.0, inv.Total, 1e-9)
}

func TestQuoteProject_Cycle(t *testing.T) {
	f := newInvoiceFixture()
	projects := f.svc.projectRepo.(*mockProjectRepo).projects
	projects[1].ParentID = ptrInt64(2)

	_, err := f.svc.QuoteProject(context.Background(), 1, InvoiceParams{})
	assert.ErrorIs(t, err, pricing.ErrProjectCycle)
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()
	empty := domain.NewInvoice("WB-2024-001", 1, domain.ProjectSubject(1))
	empty.ID = 1
	full := domain.NewInvoice("WB-2024-002", 1, domain.ProjectSubject(1))
	full.ID = 2
	full.LineItems = append(full.LineItems, &domain.InvoiceLineItem{Description: "Website", Amount: 10})

	f := newInvoiceFixture()
	f.svc.invoiceRepo = newMockInvoiceRepo(empty, full)

	assert.ErrorIs(t, f.svc.Finalize(ctx, 1), ErrInvoiceEmpty)

	require.NoError(t, f.svc.Finalize(ctx, 2))
	assert.Equal(t, domain.InvoiceStatusFinalized, full.Status)

	assert.ErrorIs(t, f.svc.Finalize(ctx, 2), ErrInvoiceNotEditable)
}

func TestMarkSent_RequiresFinalized(t *testing.T) {
	ctx := context.Background()
	inv := domain.NewInvoice("WB-2024-001", 1, domain.ProjectSubject(1))
	inv.ID = 1

	f := newInvoiceFixture()
	f.svc.invoiceRepo = newMockInvoiceRepo(inv)

	assert.ErrorIs(t, f.svc.MarkSent(ctx, 1), ErrInvoiceNotFinalized)

	inv.Finalize()
	require.NoError(t, f.svc.MarkSent(ctx, 1))
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)

	paid := invoiceNow.Add(time.Hour)
	require.NoError(t, f.svc.MarkPaid(ctx, 1, paid))
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.PaidDate.Equal(paid))
}

func TestCheckOverdue(t *testing.T) {
	past := invoiceNow.AddDate(0, 0, -1)
	future := invoiceNow.AddDate(0, 0, 1)

	late := domain.NewInvoice("WB-2024-001", 1, domain.ProjectSubject(1))
	late.ID, late.Status, late.DueDate = 1, domain.InvoiceStatusSent, &past
	onTime := domain.NewInvoice("WB-2024-002", 1, domain.ProjectSubject(1))
	onTime.ID, onTime.Status, onTime.DueDate = 2, domain.InvoiceStatusSent, &future

	f := newInvoiceFixture()
	f.svc.invoiceRepo = newMockInvoiceRepo(late, onTime)

	n, err := f.svc.CheckOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.InvoiceStatusOverdue, late.Status)
	assert.Equal(t, domain.InvoiceStatusSent, onTime.Status)
}
