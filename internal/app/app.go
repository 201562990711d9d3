package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"reqcheck/internal/auth"
	"reqcheck/internal/config"
	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/exporter"
	"reqcheck/internal/infrastructure"
	customMiddleware "reqcheck/internal/middleware"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/services"
	handlers "reqcheck/internal/transport/http"
	"reqcheck/pkg/contracts"
)

// AppName is the name reported in startup logs.
const AppName = "reqcheck"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Sessions      *auth.Store
	Gate          *auth.Gate
	ReportService *services.ReportService
	HealthService *services.HealthService
	Metrics       *infrastructure.BusinessMetrics
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger
}

// NewApplication wires every component from cfg. The logger is expected to be
// the one returned by infrastructure.InitializeLogger.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetFullVersionString()))

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}

	if err := app.initializeServices(); err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	sec := a.Config.Security
	gate, err := auth.NewGate(sec.PasswordHash, auth.NewThrottle(sec.LoginRate, sec.LoginBurst), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize access gate: %w", err)
	}
	if !gate.Enabled() {
		a.Logger.Warn("No access password configured, every login will be refused",
			slog.String("hint", "run \"reqcheck hash-password\" and set REQCHECK_SECURITY_PASSWORD_HASH"))
	}
	a.Gate = gate

	a.Sessions = auth.NewStore(sec.SessionTTL, auth.Preferences{
		ExportFormat: a.Config.Report.ExportFormat,
		ShowDebug:    a.Config.Report.ShowDebug,
	}, a.Logger)

	reportService, err := NewReportService(a.Config.Report, a.OTelProviders.Tracer, metrics, a.Logger)
	if err != nil {
		return err
	}
	a.ReportService = reportService

	a.HealthService = services.NewHealthService(contracts.GetVersionInfo(), a.Sessions, a.Gate, reportService, a.Logger)
	return nil
}

// NewReportService builds the report service from the report settings. The
// batch CLI uses it too, so both entry points export identically.
func NewReportService(cfg config.ReportConfig, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*services.ReportService, error) {
	order, err := reconcile.ParsePeriodOrder(cfg.PeriodOrder)
	if err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	exp := exporter.New(exporter.Options{
		SheetName:      cfg.SheetName,
		MaxColumnWidth: cfg.MaxColumnWidth,
		FilePrefix:     cfg.FilePrefix,
	}, exporter.NewCache(cfg.ExportCacheSize), logger)

	service, err := services.NewReportService(exp, tracer, metrics, services.ReportOptions{
		Metrics: reconcile.MetricsOptions{
			TopCourses:  cfg.TopCourses,
			PeriodOrder: order,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report service: %w", err)
	}
	return service, nil
}

// setupRouter configures the chi router. Middleware order: RequestID, RealIP,
// OTel, Logger, Recoverer, security headers, rate limit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if rl := a.Config.Security.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	if a.OTelProviders.MetricsHandler != nil {
		r.Handle("/metrics", a.OTelProviders.MetricsHandler)
	}

	a.setupAPIRoutes(r, errorHandler)
	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
	guard := customMiddleware.NewSessionGuard(a.Sessions, a.Config.Security.SessionCookie, errorHandler, a.Logger)
	failures := apierrors.NewFailureLog(errorHandler, a.Logger)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	authHandler := handlers.NewAuthHandler(a.Gate, a.Sessions, handlers.CookieConfig{
		Name:   a.Config.Security.SessionCookie,
		Secure: a.Config.Security.SecureCookie,
	}, a.Metrics, validator, errorHandler, a.Logger)
	sessionHandler := handlers.NewSessionHandler(a.Sessions, validator, errorHandler, a.Logger)
	reportHandler := handlers.NewReportHandler(a.ReportService, a.Sessions, a.Config.Security.MaxUploadBytes, errorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.With(failures.Handler).Mount("/auth", authHandler.Routes())

		// Everything below needs a live session
		r.Group(func(r chi.Router) {
			r.Use(guard.Handler)
			r.Use(customMiddleware.AuditLog(a.Logger))
			// Must run on the same request the handlers parse uploads from
			r.Use(failures.Handler)

			r.Get("/session", sessionHandler.Get)
			r.With(customMiddleware.ContentTypeValidator("application/json"), validator.ValidateRequest).
				Put("/session/preferences", sessionHandler.UpdatePreferences)
			r.Mount("/reports", reportHandler.Routes())
		})
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Server listening",
		slog.String("address", ln.Addr().String()),
		slog.Bool("access_gate", a.Gate.Enabled()),
		slog.Bool("metrics", a.OTelProviders.MetricsHandler != nil))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			_ = a.shutdownTelemetry(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested")
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.shutdownTelemetry(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Int("sessions", a.Sessions.Len()))
	return errors.Join(errs...)
}

func (a *Application) shutdownTelemetry(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	return a.OTelProviders.Shutdown(ctx)
}
