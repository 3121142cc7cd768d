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

// seriesMonths is the default dashboard window when no dates are given.
const seriesMonths = 6

// ReportHandler serves report artifacts and dashboard series.
type ReportHandler struct {
	service ports.ReportService
	loc     *time.Location
	now     func() time.Time
}

// NewReportHandler creates a ReportHandler. Day boundaries are computed in loc.
func NewReportHandler(service ports.ReportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{service: service, loc: loc, now: time.Now}
}

// Generate handles POST /api/reports/generate and streams the artifact.
//
// @Summary      Generate a report
// @Tags         reports
// @Accept       json
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Security     BearerAuth
// @Param        body  body      generateReportRequest  true  "Report request"
// @Success      200   {file}    binary
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/reports/generate [post]
func (h *ReportHandler) Generate(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req generateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := domain.ParseDayRange(req.StartDate, req.EndDate, h.loc)
	if err != nil {
		return err
	}

	in := ports.GenerateReportInput{
		Type:  req.Type,
		Range: r,
		Config: ports.ReportConfig{
			Format:        domain.ReportFormat(strings.ToLower(strings.TrimSpace(req.Config.Format))),
			IncludeCharts: req.Config.IncludeCharts,
		},
	}
	for _, m := range req.Config.Metrics {
		in.Config.Metrics = append(in.Config.Metrics, domain.Metric(strings.ToLower(strings.TrimSpace(m))))
	}

	start := time.Now()
	artifact, err := h.service.Generate(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	kind := strings.ToLower(strings.TrimSpace(req.Type))
	metrics.ReportGenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.ReportsGeneratedTotal.WithLabelValues(kind, artifactFormat(artifact)).Inc()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+artifact.Filename+`"`)
	return c.Blob(http.StatusOK, artifact.ContentType, artifact.Body)
}

// Revenue handles GET /api/reports/revenue.
//
// @Summary      Monthly revenue series
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query     string  false  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200        {array}   ports.MonthlyRevenue
// @Failure      422        {object}  errorResponse
// @Router       /api/reports/revenue [get]
func (h *ReportHandler) Revenue(c echo.Context) error {
	r, err := h.seriesRange(c)
	if err != nil {
		return err
	}
	series, err := h.service.RevenueSeries(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, series)
}

// Cases handles GET /api/reports/cases.
//
// @Summary      Case status distribution
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query     string  false  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200        {array}   domain.ChartPoint
// @Failure      422        {object}  errorResponse
// @Router       /api/reports/cases [get]
func (h *ReportHandler) Cases(c echo.Context) error {
	r, err := h.seriesRange(c)
	if err != nil {
		return err
	}
	series, err := h.service.CaseStatusSeries(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, series)
}

// Clients handles GET /api/reports/clients.
//
// @Summary      Monthly client acquisition
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query     string  false  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "Last day (YYYY-MM-DD)"
// @Success      200        {array}   ports.MonthlyClients
// @Failure      422        {object}  errorResponse
// @Router       /api/reports/clients [get]
func (h *ReportHandler) Clients(c echo.Context) error {
	r, err := h.seriesRange(c)
	if err != nil {
		return err
	}
	series, err := h.service.ClientSeries(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, series)
}

// seriesRange reads the optional startDate/endDate pair. With neither given
// it falls back to the trailing six months.
func (h *ReportHandler) seriesRange(c echo.Context) (domain.DayRange, error) {
	start, end := c.QueryParam("startDate"), c.QueryParam("endDate")
	if start == "" && end == "" {
		return domain.TrailingMonths(h.now(), seriesMonths, h.loc), nil
	}
	return domain.ParseDayRange(start, end, h.loc)
}

func artifactFormat(a *domain.ReportArtifact) string {
	switch {
	case strings.HasSuffix(a.Filename, ".xlsx"):
		return string(domain.FormatExcel)
	case strings.HasSuffix(a.Filename, ".csv"):
		return string(domain.FormatCSV)
	default:
		return string(domain.FormatPDF)
	}
}
