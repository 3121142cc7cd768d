package ports

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lawdesk/crm/internal/core/domain"
)

// ReportDocument is re-exported so renderers only depend on ports.
type ReportDocument = domain.ReportDocument

// --- Users ---

type RegisterUserInput struct {
	Name  string
	Email string
	Role  domain.Role
}

type UpdateProfileInput struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

type UserService interface {
	Register(ctx context.Context, caller domain.Caller, in RegisterUserInput) (*domain.User, error)
	Profile(ctx context.Context, caller domain.Caller) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, in UpdateProfileInput) (*domain.User, error)
	// Lookup resolves the user bound to an external identity.
	Lookup(ctx context.Context, identity string) (*domain.User, error)
}

// --- Clients ---

type CreateClientInput struct {
	Name  string
	Email string
	Phone string
}

type UpdateClientInput struct {
	Name  *string
	Email *string
	Phone *string
}

type AddDocumentInput struct {
	URL  string
	Name string
}

type UploadDocumentInput struct {
	Name        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ClientView is a client with its case references expanded.
type ClientView struct {
	Client *domain.Client
	Cases  []*domain.Case
}

type ClientService interface {
	Create(ctx context.Context, in CreateClientInput) (*domain.Client, error)
	List(ctx context.Context) ([]ClientView, error)
	Get(ctx context.Context, id string) (*ClientView, error)
	Update(ctx context.Context, id string, in UpdateClientInput) (*domain.Client, error)
	AddDocument(ctx context.Context, id string, in AddDocumentInput) (*domain.Client, error)
	UploadDocument(ctx context.Context, id string, in UploadDocumentInput) (*domain.Client, error)
}

// --- Cases ---

type CreateCaseInput struct {
	ClientID    string
	Title       string
	Description string
}

type UpdateCaseInput struct {
	Title       *string
	Description *string
	Status      *domain.CaseStatus
}

// CaseView is a case with its client and associate expanded. Either may be
// nil when the reference no longer resolves.
type CaseView struct {
	Case      *domain.Case
	Client    *domain.Client
	Associate *domain.User
}

type CaseService interface {
	Create(ctx context.Context, caller domain.Caller, in CreateCaseInput) (*domain.Case, error)
	List(ctx context.Context) ([]CaseView, error)
	Get(ctx context.Context, id string) (*CaseView, error)
	Update(ctx context.Context, id string, in UpdateCaseInput) (*domain.Case, error)
	AddUpdate(ctx context.Context, caller domain.Caller, id, content string) (*domain.Case, error)
}

// --- Invoices ---

type CreateInvoiceInput struct {
	ClientID string
	CaseID   string
	Amount   decimal.Decimal
	DueDate  time.Time
}

// InvoiceView is an invoice with its client and case expanded.
type InvoiceView struct {
	Invoice *domain.Invoice
	Client  *domain.Client
	Case    *domain.Case
}

type InvoiceService interface {
	Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error)
	List(ctx context.Context) ([]InvoiceView, error)
	Get(ctx context.Context, id string) (*InvoiceView, error)
	UpdateStatus(ctx context.Context, caller domain.Caller, id string, status domain.InvoiceStatus) (*domain.Invoice, error)
}

// --- Attendance ---

type AttendanceService interface {
	CheckIn(ctx context.Context, caller domain.Caller) (*domain.Attendance, error)
	CheckOut(ctx context.Context, caller domain.Caller) (*domain.Attendance, error)
	Report(ctx context.Context, caller domain.Caller, r domain.DayRange) ([]*domain.Attendance, error)
}

// --- Reports ---

type ReportConfig struct {
	Metrics       []domain.Metric
	Format        domain.ReportFormat
	IncludeCharts bool
}

type GenerateReportInput struct {
	Type   string
	Range  domain.DayRange
	Config ReportConfig
}

// MonthlyRevenue is one point of the revenue trend series.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthlyClients is one point of the client acquisition series.
type MonthlyClients struct {
	Month      string `json:"month"`
	NewClients int    `json:"new_clients"`
}

type ReportService interface {
	Generate(ctx context.Context, caller domain.Caller, in GenerateReportInput) (*domain.ReportArtifact, error)
	RevenueSeries(ctx context.Context, r domain.DayRange) ([]MonthlyRevenue, error)
	CaseStatusSeries(ctx context.Context, r domain.DayRange) ([]domain.ChartPoint, error)
	ClientSeries(ctx context.Context, r domain.DayRange) ([]MonthlyClients, error)
}

// --- Email ---

type EmailService interface {
	SendTest(ctx context.Context) error
}
