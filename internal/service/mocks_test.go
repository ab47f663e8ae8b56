package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/repository"
)

// mock implementations

type mockTimeLogRepo struct {
	logs         map[int64]*domain.TimeLog
	nextID       int64
	conflictNext bool // simulate a racing writer winning the unique index
}

func newMockTimeLogRepo(logs ...*domain.TimeLog) *mockTimeLogRepo {
	m := &mockTimeLogRepo{logs: map[int64]*domain.TimeLog{}}
	for _, l := range logs {
		m.nextID++
		if l.ID == 0 {
			l.ID = m.nextID
		}
		m.logs[l.ID] = l
	}
	return m
}

func (m *mockTimeLogRepo) Create(ctx context.Context, log *domain.TimeLog) error {
	if m.conflictNext {
		m.conflictNext = false
		return fmt.Errorf("open time log: %w", repository.ErrConflict)
	}
	m.nextID++
	log.ID = m.nextID
	m.logs[log.ID] = log
	return nil
}

func (m *mockTimeLogRepo) GetByID(ctx context.Context, id int64) (*domain.TimeLog, error) {
	if l, ok := m.logs[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("time log %w", repository.ErrNotFound)
}

func (m *mockTimeLogRepo) FindOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error) {
	var newest *domain.TimeLog
	for _, l := range m.logs {
		if l.IsOpen() && l.Subject() == subject && l.UserID == userID {
			if newest == nil || l.StartTime.After(newest.StartTime) {
				newest = l
			}
		}
	}
	return newest, nil
}

func (m *mockTimeLogRepo) End(ctx context.Context, id int64, at time.Time) (*domain.TimeLog, error) {
	l, ok := m.logs[id]
	if !ok || !l.Close(at) {
		return nil, nil
	}
	return l, nil
}

func (m *mockTimeLogRepo) List(ctx context.Context, f repository.TimeLogFilter) ([]*domain.TimeLog, error) {
	out := make([]*domain.TimeLog, 0)
	for _, l := range m.logs {
		if f.Subject != nil && l.Subject() != *f.Subject {
			continue
		}
		if f.UserID != nil && l.UserID != *f.UserID {
			continue
		}
		if f.OpenOnly && !l.IsOpen() {
			continue
		}
		if f.ClosedOnly && l.IsOpen() {
			continue
		}
		if f.StartedFrom != nil && l.StartTime.Before(*f.StartedFrom) {
			continue
		}
		if f.StartedBefore != nil && !l.StartTime.Before(*f.StartedBefore) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *mockTimeLogRepo) UpdateNote(ctx context.Context, id int64, note string) error {
	l, ok := m.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Note = note
	return nil
}

func (m *mockTimeLogRepo) Delete(ctx context.Context, id int64) error {
	delete(m.logs, id)
	return nil
}

type mockProjectRepo struct {
	projects map[int64]*domain.Project
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error { return nil }
func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("project %w", repository.ErrNotFound)
}
func (m *mockProjectRepo) List(ctx context.Context, customerID *int64, includeArchived bool) ([]*domain.Project, error) {
	return nil, nil
}
func (m *mockProjectRepo) Children(ctx context.Context, parentID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for _, p := range m.projects {
		if p.ParentID != nil && *p.ParentID == parentID {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error { return nil }
func (m *mockProjectRepo) Archive(ctx context.Context, id int64) error         { return nil }
func (m *mockProjectRepo) Delete(ctx context.Context, id int64) error          { return nil }

type mockPrintJobRepo struct {
	jobs map[int64]*domain.PrintJob
}

func (m *mockPrintJobRepo) Create(ctx context.Context, j *domain.PrintJob) error { return nil }
func (m *mockPrintJobRepo) GetByID(ctx context.Context, id int64) (*domain.PrintJob, error) {
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("print job %w", repository.ErrNotFound)
}
func (m *mockPrintJobRepo) List(ctx context.Context, customerID *int64, status *domain.PrintJobStatus) ([]*domain.PrintJob, error) {
	return nil, nil
}
func (m *mockPrintJobRepo) Update(ctx context.Context, j *domain.PrintJob) error { return nil }
func (m *mockPrintJobRepo) Delete(ctx context.Context, id int64) error           { return nil }

type mockRateCardRepo struct {
	cards map[int64]*domain.RateCard
	err   error
}

func (m *mockRateCardRepo) Create(ctx context.Context, c *domain.RateCard) error { return nil }
func (m *mockRateCardRepo) GetByID(ctx context.Context, id int64) (*domain.RateCard, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.cards[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("rate card %w", repository.ErrNotFound)
}
func (m *mockRateCardRepo) GetByService(ctx context.Context, service string) (*domain.RateCard, error) {
	return nil, repository.ErrNotFound
}
func (m *mockRateCardRepo) List(ctx context.Context) ([]*domain.RateCard, error)    { return nil, nil }
func (m *mockRateCardRepo) Update(ctx context.Context, c *domain.RateCard) error { return nil }
func (m *mockRateCardRepo) Delete(ctx context.Context, id int64) error           { return nil }

type mockCustomerRepo struct {
	customers map[int64]*domain.Customer
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *domain.Customer) error { return nil }
func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return &domain.Customer{ID: id, Name: "ACME"}, nil
}
func (m *mockCustomerRepo) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	return nil, repository.ErrNotFound
}
func (m *mockCustomerRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Customer, error) {
	return nil, nil
}
func (m *mockCustomerRepo) Update(ctx context.Context, c *domain.Customer) error { return nil }
func (m *mockCustomerRepo) Archive(ctx context.Context, id int64) error          { return nil }
func (m *mockCustomerRepo) Unarchive(ctx context.Context, id int64) error        { return nil }

type mockInvoiceRepo struct {
	invoices map[int64]*domain.Invoice
	created  []*domain.Invoice
	updated  *domain.Invoice
}

func newMockInvoiceRepo(invoices ...*domain.Invoice) *mockInvoiceRepo {
	m := &mockInvoiceRepo{invoices: map[int64]*domain.Invoice{}}
	for _, inv := range invoices {
		m.invoices[inv.ID] = inv
	}
	return m
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	invoice.ID = int64(len(m.invoices) + 1)
	m.invoices[invoice.ID] = invoice
	m.created = append(m.created, invoice)
	return nil
}
func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, fmt.Errorf("invoice %w", repository.ErrNotFound)
}
func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return nil, repository.ErrNotFound
}
func (m *mockInvoiceRepo) List(ctx context.Context, customerID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0)
	for _, inv := range m.invoices {
		if status != nil && inv.Status != *status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}
func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	m.updated = invoice
	return nil
}
func (m *mockInvoiceRepo) Delete(ctx context.Context, id int64) error { return nil }
func (m *mockInvoiceRepo) AddLineItem(ctx context.Context, invoiceID int64, item *domain.InvoiceLineItem) error {
	return nil
}
func (m *mockInvoiceRepo) DeleteLineItem(ctx context.Context, invoiceID int64, lineItemID int64) error {
	return errors.New("not supported")
}
func (m *mockInvoiceRepo) GetLineItems(ctx context.Context, invoiceID int64) ([]*domain.InvoiceLineItem, error) {
	return nil, nil
}
func (m *mockInvoiceRepo) GetNextInvoiceNumber(ctx context.Context, prefix string, year int) (string, error) {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, len(m.invoices)+1), nil
}

func ptrInt64(v int64) *int64 { return &v }

func ptrFloat(v float64) *float64 { return &v }
