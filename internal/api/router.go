package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/lawdesk/crm/internal/api/handler"
	"github.com/lawdesk/crm/internal/api/middleware"
	"github.com/lawdesk/crm/internal/core/ports"
)

const uploadBodyLimit = "20M"

// Dependencies is everything the router needs to serve the API.
type Dependencies struct {
	Users      ports.UserService
	Clients    ports.ClientService
	Cases      ports.CaseService
	Invoices   ports.InvoiceService
	Attendance ports.AttendanceService
	Reports    ports.ReportService
	Email      ports.EmailService

	Verifier middleware.TokenVerifier
	// Limiter throttles /api requests; nil disables rate limiting.
	Limiter   middleware.Limiter
	Readiness []handler.DependencyCheck

	Location       *time.Location
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         zerolog.Logger

	// MetricsRegisterer and MetricsGatherer default to the Prometheus
	// default registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer, gatherer := deps.MetricsRegisterer, deps.MetricsGatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.OPTIONS},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "crm",
		Registerer: registerer,
	}))
	if deps.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
			Timeout: deps.RequestTimeout,
			// Leave deadline errors to the central handler.
			ErrorHandler: func(err error, c echo.Context) error { return err },
		}))
	}

	// --- Probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	emailHandler := handler.NewEmailHandler(deps.Email)
	api.POST("/email/test", emailHandler.SendTest)

	// --- Authenticated routes ---
	authed := api.Group("", middleware.Authenticate(deps.Verifier))
	if deps.Limiter != nil {
		authed.Use(middleware.RateLimit(deps.Limiter, deps.Logger))
	}
	authed.Use(middleware.ResolveCaller(deps.Users))

	userHandler := handler.NewUserHandler(deps.Users)
	authed.POST("/users/register", userHandler.Register)
	authed.GET("/users/profile", userHandler.Profile)
	authed.PUT("/users/profile", userHandler.UpdateProfile)

	clientHandler := handler.NewClientHandler(deps.Clients)
	authed.POST("/clients", clientHandler.Create)
	authed.GET("/clients", clientHandler.List)
	authed.GET("/clients/:id", clientHandler.Get)
	authed.PUT("/clients/:id", clientHandler.Update)
	authed.POST("/clients/:id/documents", clientHandler.AddDocument)
	authed.POST("/clients/:id/documents/upload", clientHandler.UploadDocument, echomiddleware.BodyLimit(uploadBodyLimit))

	caseHandler := handler.NewCaseHandler(deps.Cases)
	authed.POST("/cases", caseHandler.Create)
	authed.GET("/cases", caseHandler.List)
	authed.GET("/cases/:id", caseHandler.Get)
	authed.PUT("/cases/:id", caseHandler.Update)
	authed.POST("/cases/:id/updates", caseHandler.AddUpdate)

	invoiceHandler := handler.NewInvoiceHandler(deps.Invoices)
	authed.POST("/invoices", invoiceHandler.Create)
	authed.GET("/invoices", invoiceHandler.List)
	authed.GET("/invoices/:id", invoiceHandler.Get)
	authed.PUT("/invoices/:id/status", invoiceHandler.UpdateStatus)

	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance, deps.Location)
	authed.POST("/attendance/check-in", attendanceHandler.CheckIn)
	authed.POST("/attendance/check-out", attendanceHandler.CheckOut)
	authed.GET("/attendance/report", attendanceHandler.Report)

	reportHandler := handler.NewReportHandler(deps.Reports, deps.Location)
	authed.POST("/reports/generate", reportHandler.Generate)
	authed.GET("/reports/revenue", reportHandler.Revenue)
	authed.GET("/reports/cases", reportHandler.Cases)
	authed.GET("/reports/clients", reportHandler.Clients)

	return e
}

// requestLogger writes one structured access log event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
