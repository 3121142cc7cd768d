// Command server runs the law firm CRM API.
//
// @title                       Law Firm CRM API
// @version                     1.0
// @description                 Clients, cases, invoices, attendance and reports for a law practice.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/lawdesk/crm/docs"
	"github.com/lawdesk/crm/internal/api"
	"github.com/lawdesk/crm/internal/api/handler"
	"github.com/lawdesk/crm/internal/api/middleware"
	"github.com/lawdesk/crm/internal/core/ports"
	"github.com/lawdesk/crm/internal/core/service"
	"github.com/lawdesk/crm/internal/infrastructure/config"
	"github.com/lawdesk/crm/internal/infrastructure/db/mongo"
	"github.com/lawdesk/crm/internal/infrastructure/db/redis"
	"github.com/lawdesk/crm/internal/infrastructure/mail"
	"github.com/lawdesk/crm/internal/infrastructure/oidc"
	"github.com/lawdesk/crm/internal/infrastructure/queue"
	"github.com/lawdesk/crm/internal/infrastructure/render"
	"github.com/lawdesk/crm/internal/infrastructure/storage"
	"github.com/lawdesk/crm/pkg/logger"
)

const serviceName = "crm-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	readiness := []handler.DependencyCheck{{
		Name: "mongodb",
		Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}}

	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)
		limiter = redis.NewFixedWindowLimiter(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window)
		readiness = append(readiness, handler.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	log.Info().Str("backend", limiter.Backend()).Msg("rate limiter ready")

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	var objects ports.ObjectStorage
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, storage.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return err
		}
		objects = s
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, document uploads disabled")
	}

	// --- Mail ---
	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var (
		mailer   ports.Mailer
		notifier ports.Notifier
	)
	if cfg.SMTP.Host != "" {
		m, err := mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return err
		}
		mailer = m
		dispatcher := queue.NewDispatcher(cfg.SMTP.NotifyWorkers, m, logger.Component("notifications"))
		dispatcher.Start(workersCtx)
		defer dispatcher.Close()
		notifier = dispatcher
	} else {
		log.Warn().Msg("SMTP_HOST not set, email notifications disabled")
	}

	// --- Services ---
	users := mongo.NewUserRepository(db)
	clients := mongo.NewClientRepository(db)
	cases := mongo.NewCaseRepository(db)
	invoices := mongo.NewInvoiceRepository(db)
	attendance := mongo.NewAttendanceRepository(db)
	money := service.MoneyFormatter{Symbol: cfg.Reports.CurrencySymbol}

	reconciler := service.NewCaseLinkReconciler(cases, clients, cfg.Reconcile.Grace, logger.Component("reconciler"))
	go queue.RunReconciler(workersCtx, cfg.Reconcile.Interval, reconciler, logger.Component("reconciler"))

	e := api.NewRouter(api.Dependencies{
		Users:      service.NewUserService(users, logger.Component("users")),
		Clients:    service.NewClientService(clients, cases, objects, logger.Component("clients")),
		Cases:      service.NewCaseService(cases, clients, users, logger.Component("cases")),
		Invoices:   service.NewInvoiceService(invoices, clients, cases, notifier, money, logger.Component("invoices")),
		Attendance: service.NewAttendanceService(attendance, logger.Component("attendance")),
		Reports: service.NewReportService(service.ReportSources{
			Invoices:   invoices,
			Cases:      cases,
			Clients:    clients,
			Users:      users,
			Attendance: attendance,
		}, render.Renderers(), money, logger.Component("reports")),
		Email: service.NewEmailService(mailer, cfg.SMTP.TestTo, logger.Component("email")),

		Verifier:  verifier,
		Limiter:   limiter,
		Readiness: readiness,

		Location:       cfg.Location(),
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	// --- Serve ---
	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}

// newVerifier prefers OIDC when an issuer is configured.
func newVerifier(ctx context.Context, cfg config.AuthConfig) (middleware.TokenVerifier, error) {
	if cfg.OIDCIssuer != "" {
		v, err := oidc.NewVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, fmt.Errorf("oidc: %w", err)
		}
		return v, nil
	}
	return middleware.NewHS256Verifier(cfg.JWTSecret), nil
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
