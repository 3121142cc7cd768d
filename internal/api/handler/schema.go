package handler

import (
	"github.com/shopspring/decimal"

	"github.com/lawdesk/crm/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the central error
// handler.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Users ---

type registerUserRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required,oneof=admin associate"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role"  validate:"omitempty,oneof=admin associate"`
}

// --- Clients ---

type createClientRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type updateClientRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,min=1"`
}

type addDocumentRequest struct {
	URL  string `json:"url"  validate:"required,url"`
	Name string `json:"name" validate:"required"`
}

// --- Cases ---

type createCaseRequest struct {
	ClientID    string `json:"client_id"   validate:"required"`
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
}

type updateCaseRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status"      validate:"omitempty,oneof=open in_progress closed"`
}

type caseUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

// --- Invoices ---

type createInvoiceRequest struct {
	ClientID string          `json:"client_id" validate:"required"`
	CaseID   string          `json:"case_id"   validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  string          `json:"due_date"  validate:"required"`
}

type invoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid overdue"`
}

// --- Reports ---

type reportConfigRequest struct {
	Metrics       []string `json:"metrics"`
	Format        string   `json:"format"`
	IncludeCharts bool     `json:"includeCharts"`
}

type generateReportRequest struct {
	Type      string              `json:"type"`
	StartDate string              `json:"startDate" validate:"required"`
	EndDate   string              `json:"endDate"   validate:"required"`
	Config    reportConfigRequest `json:"config"`
}
