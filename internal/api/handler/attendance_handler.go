package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/api/metrics"
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

// AttendanceHandler records check-ins and check-outs of the calling user.
type AttendanceHandler struct {
	service ports.AttendanceService
	loc     *time.Location
}

// NewAttendanceHandler creates an AttendanceHandler. Report day boundaries are
// computed in loc.
func NewAttendanceHandler(service ports.AttendanceService, loc *time.Location) *AttendanceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceHandler{service: service, loc: loc}
}

// CheckIn handles POST /api/attendance/check-in.
//
// @Summary      Record a check-in
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Attendance
// @Failure      403  {object}  errorResponse
// @Router       /api/attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	return h.record(c, h.service.CheckIn)
}

// CheckOut handles POST /api/attendance/check-out.
//
// @Summary      Record a check-out
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Attendance
// @Failure      403  {object}  errorResponse
// @Router       /api/attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	return h.record(c, h.service.CheckOut)
}

func (h *AttendanceHandler) record(c echo.Context, fn func(ctx context.Context, caller domain.Caller) (*domain.Attendance, error)) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	rec, err := fn(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	metrics.EntitiesCreatedTotal.WithLabelValues("attendance").Inc()
	return c.JSON(http.StatusCreated, rec)
}

// Report handles GET /api/attendance/report?startDate=&endDate=.
//
// @Summary      List the caller's attendance records in a date range
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query     string  true  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  true  "Last day (YYYY-MM-DD)"
// @Success      200        {array}   domain.Attendance
// @Failure      403        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /api/attendance/report [get]
func (h *AttendanceHandler) Report(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	r, err := domain.ParseDayRange(c.QueryParam("startDate"), c.QueryParam("endDate"), h.loc)
	if err != nil {
		return err
	}
	records, err := h.service.Report(c.Request().Context(), caller, r)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*domain.Attendance{}
	}
	return c.JSON(http.StatusOK, records)
}
