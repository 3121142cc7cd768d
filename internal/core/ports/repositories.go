package ports

import (
	"context"
	"time"

	"github.com/lawdesk/crm/internal/core/domain"
)

// UserPatch carries the fields of a partial user update; nil means unchanged.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIdentity(ctx context.Context, identity string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
}

// ClientPatch carries the fields of a partial client update; nil means unchanged.
type ClientPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// ClientFilter narrows List. Zero times leave the range unbounded.
type ClientFilter struct {
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// ClientRepository persists clients. AppendDocument and AddCase are single
// atomic array updates on the client record.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]*domain.Client, error)
	Update(ctx context.Context, id string, patch ClientPatch) (*domain.Client, error)
	AppendDocument(ctx context.Context, id string, doc domain.Document) (*domain.Client, error)
	// AddCase adds caseID to the client's case set. Repeating the call is a no-op.
	AddCase(ctx context.Context, clientID, caseID string) error
}

// CasePatch carries the fields of a partial case update; nil means unchanged.
// ClosedAt is applied whenever Status is set.
type CasePatch struct {
	Title       *string
	Description *string
	Status      *domain.CaseStatus
	ClosedAt    *time.Time
}

// CaseFilter narrows List.
type CaseFilter struct {
	ClientID    string
	AssociateID string
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// CaseRepository persists cases.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	FindByID(ctx context.Context, id string) (*domain.Case, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]*domain.Case, error)
	Update(ctx context.Context, id string, patch CasePatch) (*domain.Case, error)
	AppendUpdate(ctx context.Context, id string, update domain.CaseUpdate) (*domain.Case, error)
	MarkLinked(ctx context.Context, id string) error
	// FindPendingLinks returns cases still in LinkPending created before the cutoff.
	FindPendingLinks(ctx context.Context, createdBefore time.Time) ([]*domain.Case, error)
}

// InvoiceFilter narrows List.
type InvoiceFilter struct {
	ClientID    string
	CaseID      string
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	// UpdateStatus sets the status and replaces paid_at (nil clears it).
	UpdateStatus(ctx context.Context, id string, status domain.InvoiceStatus, paidAt *time.Time) (*domain.Invoice, error)
}

// AttendanceFilter narrows List. An empty UserID matches every user.
type AttendanceFilter struct {
	UserID string
	From   time.Time
	To     time.Time
}

// AttendanceRepository persists attendance records. List returns records in
// ascending timestamp order.
type AttendanceRepository interface {
	Create(ctx context.Context, a *domain.Attendance) error
	List(ctx context.Context, filter AttendanceFilter) ([]*domain.Attendance, error)
}
