package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/api/metrics"
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

// ClientHandler handles client CRUD and document attachment.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create handles POST /api/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client"
// @Success      201   {object}  domain.Client
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	client, err := h.service.Create(c.Request().Context(), ports.CreateClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("client").Inc()
	return c.JSON(http.StatusCreated, client)
}

// List handles GET /api/clients.
//
// @Summary      List clients with their cases
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   clientView
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapAll(views, toClientView))
}

// Get handles GET /api/clients/:id.
//
// @Summary      Get a client with its cases
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientView
// @Failure      404  {object}  errorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientView(*view))
}

// Update handles PUT /api/clients/:id.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Client id"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  domain.Client
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	client, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// AddDocument handles POST /api/clients/:id/documents.
//
// @Summary      Attach a document reference to a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Client id"
// @Param        body  body      addDocumentRequest  true  "Document"
// @Success      200   {object}  domain.Client
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/clients/{id}/documents [post]
func (h *ClientHandler) AddDocument(c echo.Context) error {
	var req addDocumentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	client, err := h.service.AddDocument(c.Request().Context(), c.Param("id"), ports.AddDocumentInput{
		URL:  req.URL,
		Name: req.Name,
	})
	if err != nil {
		return err
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("document").Inc()
	return c.JSON(http.StatusOK, client)
}

// UploadDocument handles POST /api/clients/:id/documents/upload. The file is
// read from the multipart field "file"; the optional "name" field overrides
// the display name.
//
// @Summary      Upload a document for a client
// @Tags         clients
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Client id"
// @Param        file  formData  file    true   "Document"
// @Param        name  formData  string  false  "Display name"
// @Success      200   {object}  domain.Client
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/clients/{id}/documents/upload [post]
func (h *ClientHandler) UploadDocument(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file", "is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name := c.FormValue("name")
	if name == "" {
		name = fh.Filename
	}
	client, err := h.service.UploadDocument(c.Request().Context(), c.Param("id"), ports.UploadDocumentInput{
		Name:        name,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("document").Inc()
	return c.JSON(http.StatusOK, client)
}
