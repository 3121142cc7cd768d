package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/core/ports"
)

// EmailHandler exposes the outbound mail smoke test.
type EmailHandler struct {
	service ports.EmailService
}

func NewEmailHandler(service ports.EmailService) *EmailHandler {
	return &EmailHandler{service: service}
}

// SendTest handles POST /api/email/test.
//
// @Summary      Send a test email to the configured recipient
// @Tags         email
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      500  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/email/test [post]
func (h *EmailHandler) SendTest(c echo.Context) error {
	if err := h.service.SendTest(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "test email sent"})
}
