package repository

import (
	"context"
	"time"

	"github.com/andy/workbench/internal/domain"
)

// TimeLogFilter narrows a time log query. Zero fields do not filter.
type TimeLogFilter struct {
	Subject       *domain.Subject
	ProjectIDs    []int64 // project_id IN (...)
	UserID        *int64
	ExcludeID     *int64     // id != ExcludeID
	StartedFrom   *time.Time // start_time >= StartedFrom
	StartedBefore *time.Time // start_time < StartedBefore
	OpenOnly      bool
	ClosedOnly    bool
}

// TimeLogRepository manages time log persistence
type TimeLogRepository interface {
	// Create inserts the log. A second open log for the same subject and
	// user fails with ErrConflict.
	Create(ctx context.Context, log *domain.TimeLog) error
	GetByID(ctx context.Context, id int64) (*domain.TimeLog, error)
	// FindOpen returns the newest open log, or nil if there is none
	FindOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error)
	// End closes an open log at the given time. It returns nil when the log
	// does not exist or was already closed.
	End(ctx context.Context, id int64, at time.Time) (*domain.TimeLog, error)
	List(ctx context.Context, filter TimeLogFilter) ([]*domain.TimeLog, error)
	UpdateNote(ctx context.Context, id int64, note string) error
	Delete(ctx context.Context, id int64) error
}

// CustomerRepository manages customer persistence
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Archive(ctx context.Context, id int64) error
	Unarchive(ctx context.Context, id int64) error
}

// RateCardRepository manages rate card persistence
type RateCardRepository interface {
	Create(ctx context.Context, card *domain.RateCard) error
	GetByID(ctx context.Context, id int64) (*domain.RateCard, error)
	GetByService(ctx context.Context, service string) (*domain.RateCard, error)
	List(ctx context.Context) ([]*domain.RateCard, error)
	Update(ctx context.Context, card *domain.RateCard) error
	Delete(ctx context.Context, id int64) error
}

// ProjectRepository manages project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, customerID *int64, includeArchived bool) ([]*domain.Project, error)
	// Children returns the IDs of the direct children of a project
	Children(ctx context.Context, parentID int64) ([]int64, error)
	Update(ctx context.Context, project *domain.Project) error
	Archive(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// PrintJobRepository manages print job persistence
type PrintJobRepository interface {
	Create(ctx context.Context, job *domain.PrintJob) error
	GetByID(ctx context.Context, id int64) (*domain.PrintJob, error)
	List(ctx context.Context, customerID *int64, status *domain.PrintJobStatus) ([]*domain.PrintJob, error)
	Update(ctx context.Context, job *domain.PrintJob) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository manages the local users time is tracked for
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// EnsureByName returns the user with the name, creating it if needed
	EnsureByName(ctx context.Context, name string) (*domain.User, error)
}

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	// Create inserts the invoice together with its line items
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	List(ctx context.Context, customerID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id int64) error
	AddLineItem(ctx context.Context, invoiceID int64, item *domain.InvoiceLineItem) error
	DeleteLineItem(ctx context.Context, invoiceID int64, lineItemID int64) error
	GetLineItems(ctx context.Context, invoiceID int64) ([]*domain.InvoiceLineItem, error)
	GetNextInvoiceNumber(ctx context.Context, prefix string, year int) (string, error)
}
