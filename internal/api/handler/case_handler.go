package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/api/metrics"
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

// CaseHandler handles case CRUD and progress updates.
type CaseHandler struct {
	service ports.CaseService
}

func NewCaseHandler(service ports.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// Create handles POST /api/cases. The caller becomes the case associate.
// When the case is stored but its client link is deferred, the response is
// 202 with the case and a warning; the link is repaired in the background.
//
// @Summary      Open a case for a client
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCaseRequest     true  "Case"
// @Success      201   {object}  domain.Case
// @Success      202   {object}  caseAcceptedResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/cases [post]
func (h *CaseHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req createCaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	kase, err := h.service.Create(c.Request().Context(), caller, ports.CreateCaseInput{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
	})
	if errors.Is(err, domain.ErrCaseLinkPending) && kase != nil {
		metrics.EntitiesCreatedTotal.WithLabelValues("case").Inc()
		metrics.CaseLinksPendingTotal.Inc()
		return c.JSON(http.StatusAccepted, caseAcceptedResponse{Case: kase, Warning: domain.ErrCaseLinkPending.Error()})
	}
	if err != nil {
		return err
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("case").Inc()
	return c.JSON(http.StatusCreated, kase)
}

// List handles GET /api/cases.
//
// @Summary      List cases with client and associate
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   caseView
// @Router       /api/cases [get]
func (h *CaseHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapAll(views, toCaseView))
}

// Get handles GET /api/cases/:id.
//
// @Summary      Get a case
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case id"
// @Success      200  {object}  caseView
// @Failure      404  {object}  errorResponse
// @Router       /api/cases/{id} [get]
func (h *CaseHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseView(*view))
}

// Update handles PUT /api/cases/:id.
//
// @Summary      Update a case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Case id"
// @Param        body  body      updateCaseRequest  true  "Fields to change"
// @Success      200   {object}  domain.Case
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/cases/{id} [put]
func (h *CaseHandler) Update(c echo.Context) error {
	var req updateCaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in := ports.UpdateCaseInput{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		status := domain.CaseStatus(*req.Status)
		in.Status = &status
	}
	kase, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, kase)
}

// AddUpdate handles POST /api/cases/:id/updates.
//
// @Summary      Append a progress note to a case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Case id"
// @Param        body  body      caseUpdateRequest  true  "Note"
// @Success      200   {object}  domain.Case
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/cases/{id}/updates [post]
func (h *CaseHandler) AddUpdate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req caseUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	kase, err := h.service.AddUpdate(c.Request().Context(), caller, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, kase)
}
