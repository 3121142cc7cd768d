package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/api/middleware"
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

var (
	adminCaller     = domain.Caller{Subject: "uid-admin", Email: "admin@lawdesk.test", UserID: "user_001", Role: domain.RoleAdmin}
	associateCaller = domain.Caller{Subject: "uid-assoc", Email: "assoc@lawdesk.test", UserID: "user_002", Role: domain.RoleAssociate}
)

// newTestContext builds an echo context with the production validator and,
// when caller is non-nil, an authenticated caller.
func newTestContext(method, target, body string, caller *domain.Caller) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != nil {
		middleware.SetCaller(c, *caller)
	}
	return c, rec
}

// ---- service stubs ----

type stubUserService struct {
	registerFn func(ctx context.Context, caller domain.Caller, in ports.RegisterUserInput) (*domain.User, error)
	profileFn  func(ctx context.Context, caller domain.Caller) (*domain.User, error)
	updateFn   func(ctx context.Context, caller domain.Caller, in ports.UpdateProfileInput) (*domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, caller domain.Caller, in ports.RegisterUserInput) (*domain.User, error) {
	return s.registerFn(ctx, caller, in)
}
func (s *stubUserService) Profile(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	return s.profileFn(ctx, caller)
}
func (s *stubUserService) UpdateProfile(ctx context.Context, caller domain.Caller, in ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateFn(ctx, caller, in)
}
func (s *stubUserService) Lookup(ctx context.Context, identity string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

type stubClientService struct {
	createFn func(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error)
	listFn   func(ctx context.Context) ([]ports.ClientView, error)
	getFn    func(ctx context.Context, id string) (*ports.ClientView, error)
	updateFn func(ctx context.Context, id string, in ports.UpdateClientInput) (*domain.Client, error)
	addDocFn func(ctx context.Context, id string, in ports.AddDocumentInput) (*domain.Client, error)
	uploadFn func(ctx context.Context, id string, in ports.UploadDocumentInput) (*domain.Client, error)
}

func (s *stubClientService) Create(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	return s.createFn(ctx, in)
}
func (s *stubClientService) List(ctx context.Context) ([]ports.ClientView, error) {
	return s.listFn(ctx)
}
func (s *stubClientService) Get(ctx context.Context, id string) (*ports.ClientView, error) {
	return s.getFn(ctx, id)
}
func (s *stubClientService) Update(ctx context.Context, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, id, in)
}
func (s *stubClientService) AddDocument(ctx context.Context, id string, in ports.AddDocumentInput) (*domain.Client, error) {
	return s.addDocFn(ctx, id, in)
}
func (s *stubClientService) UploadDocument(ctx context.Context, id string, in ports.UploadDocumentInput) (*domain.Client, error) {
	return s.uploadFn(ctx, id, in)
}

type stubCaseService struct {
	createFn    func(ctx context.Context, caller domain.Caller, in ports.CreateCaseInput) (*domain.Case, error)
	listFn      func(ctx context.Context) ([]ports.CaseView, error)
	getFn       func(ctx context.Context, id string) (*ports.CaseView, error)
	updateFn    func(ctx context.Context, id string, in ports.UpdateCaseInput) (*domain.Case, error)
	addUpdateFn func(ctx context.Context, caller domain.Caller, id, content string) (*domain.Case, error)
}

func (s *stubCaseService) Create(ctx context.Context, caller domain.Caller, in ports.CreateCaseInput) (*domain.Case, error) {
	return s.createFn(ctx, caller, in)
}
func (s *stubCaseService) List(ctx context.Context) ([]ports.CaseView, error) {
	return s.listFn(ctx)
}
func (s *stubCaseService) Get(ctx context.Context, id string) (*ports.CaseView, error) {
	return s.getFn(ctx, id)
}
func (s *stubCaseService) Update(ctx context.Context, id string, in ports.UpdateCaseInput) (*domain.Case, error) {
	return s.updateFn(ctx, id, in)
}
func (s *stubCaseService) AddUpdate(ctx context.Context, caller domain.Caller, id, content string) (*domain.Case, error) {
	return s.addUpdateFn(ctx, caller, id, content)
}

type stubInvoiceService struct {
	createFn func(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error)
	listFn   func(ctx context.Context) ([]ports.InvoiceView, error)
	getFn    func(ctx context.Context, id string) (*ports.InvoiceView, error)
	statusFn func(ctx context.Context, caller domain.Caller, id string, status domain.InvoiceStatus) (*domain.Invoice, error)
}

func (s *stubInvoiceService) Create(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	return s.createFn(ctx, in)
}
func (s *stubInvoiceService) List(ctx context.Context) ([]ports.InvoiceView, error) {
	return s.listFn(ctx)
}
func (s *stubInvoiceService) Get(ctx context.Context, id string) (*ports.InvoiceView, error) {
	return s.getFn(ctx, id)
}
func (s *stubInvoiceService) UpdateStatus(ctx context.Context, caller domain.Caller, id string, status domain.InvoiceStatus) (*domain.Invoice, error) {
	return s.statusFn(ctx, caller, id, status)
}

type stubAttendanceService struct {
	records  []*domain.Attendance
	gotType  domain.AttendanceType
	gotRange domain.DayRange
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, caller domain.Caller) (*domain.Attendance, error) {
	s.gotType = domain.CheckIn
	return &domain.Attendance{ID: "att_001", UserID: caller.UserID, Type: domain.CheckIn}, nil
}
func (s *stubAttendanceService) CheckOut(ctx context.Context, caller domain.Caller) (*domain.Attendance, error) {
	s.gotType = domain.CheckOut
	return &domain.Attendance{ID: "att_002", UserID: caller.UserID, Type: domain.CheckOut}, nil
}
func (s *stubAttendanceService) Report(ctx context.Context, caller domain.Caller, r domain.DayRange) ([]*domain.Attendance, error) {
	s.gotRange = r
	return s.records, nil
}

type stubReportService struct {
	generateFn func(ctx context.Context, caller domain.Caller, in ports.GenerateReportInput) (*domain.ReportArtifact, error)
	gotRange   domain.DayRange
}

func (s *stubReportService) Generate(ctx context.Context, caller domain.Caller, in ports.GenerateReportInput) (*domain.ReportArtifact, error) {
	return s.generateFn(ctx, caller, in)
}
func (s *stubReportService) RevenueSeries(ctx context.Context, r domain.DayRange) ([]ports.MonthlyRevenue, error) {
	s.gotRange = r
	return []ports.MonthlyRevenue{}, nil
}
func (s *stubReportService) CaseStatusSeries(ctx context.Context, r domain.DayRange) ([]domain.ChartPoint, error) {
	s.gotRange = r
	return []domain.ChartPoint{{Label: "open", Value: 2}}, nil
}
func (s *stubReportService) ClientSeries(ctx context.Context, r domain.DayRange) ([]ports.MonthlyClients, error) {
	s.gotRange = r
	return []ports.MonthlyClients{}, nil
}

type stubEmailService struct {
	err error
}

func (s *stubEmailService) SendTest(ctx context.Context) error { return s.err }
