package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/api/metrics"
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

var dueDateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// InvoiceHandler handles invoice creation, reads and status transitions.
type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Create handles POST /api/invoices.
//
// @Summary      Bill a client for a case
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvoiceRequest  true  "Invoice"
// @Success      201   {object}  domain.Invoice
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req createInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	due, ok := parseDueDate(req.DueDate)
	if !ok {
		return domain.NewValidationError("due_date", "must be a date (YYYY-MM-DD)")
	}

	inv, err := h.service.Create(c.Request().Context(), ports.CreateInvoiceInput{
		ClientID: req.ClientID,
		CaseID:   req.CaseID,
		Amount:   req.Amount,
		DueDate:  due,
	})
	if err != nil {
		return err
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("invoice").Inc()
	return c.JSON(http.StatusCreated, inv)
}

// List handles GET /api/invoices.
//
// @Summary      List invoices with client and case
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   invoiceView
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapAll(views, toInvoiceView))
}

// Get handles GET /api/invoices/:id.
//
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice id"
// @Success      200  {object}  invoiceView
// @Failure      404  {object}  errorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInvoiceView(*view))
}

// UpdateStatus handles PUT /api/invoices/:id/status.
//
// @Summary      Transition an invoice status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Invoice id"
// @Param        body  body      invoiceStatusRequest  true  "New status"
// @Success      200   {object}  domain.Invoice
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req invoiceStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	inv, err := h.service.UpdateStatus(c.Request().Context(), caller, c.Param("id"), domain.InvoiceStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// parseDueDate accepts a calendar date or an RFC 3339 timestamp. Calendar
// dates are read as midnight UTC.
func parseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
