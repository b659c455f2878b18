// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/innercircle-portal/internal/apiclient"
	"github.com/olegiv/innercircle-portal/internal/cache"
	"github.com/olegiv/innercircle-portal/internal/config"
	"github.com/olegiv/innercircle-portal/internal/handler"
	"github.com/olegiv/innercircle-portal/internal/logging"
	"github.com/olegiv/innercircle-portal/internal/metrics"
	"github.com/olegiv/innercircle-portal/internal/middleware"
	"github.com/olegiv/innercircle-portal/internal/render"
	"github.com/olegiv/innercircle-portal/internal/scheduler"
	"github.com/olegiv/innercircle-portal/internal/service"
	"github.com/olegiv/innercircle-portal/internal/session"
	"github.com/olegiv/innercircle-portal/internal/store"
	"github.com/olegiv/innercircle-portal/internal/version"
	"github.com/olegiv/innercircle-portal/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Paige's Inner Circle member portal\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNER_API_BASE_URL      Inner Circle API base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNER_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNER_DB_PATH           SQLite session database (default: ./data/portal.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNER_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNER_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNER_REDIS_URL         Redis URL for the catalog cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	isDev := cfg.IsDevelopment()

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel), isDev)
	slog.SetDefault(logger)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	sessionStore := session.NewStore(db, isDev)
	portalMetrics := metrics.New()

	client, err := apiclient.New(apiclient.Config{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Recorder: portalMetrics,
	})
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	sessions := session.NewManager(client,
		session.NewCookieTokenStore(cfg.TokenTTL, !isDev),
		session.NewSCSProfileStore(sessionStore),
		logger)
	client.OnUnauthorized(sessions)

	ctx := context.Background()
	catalogCache := cache.New(ctx, cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		MaxItems:        cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() {
		if err := catalogCache.Cache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	catalog := service.NewCatalog(client, catalogCache.Cache, cfg.CacheTTL, logger)

	jobs := scheduler.New(logger)
	if err := jobs.RegisterCatalogWarmup(catalog); err != nil {
		return fmt.Errorf("registering catalog warmup: %w", err)
	}
	if err := jobs.TriggerNow(ctx, scheduler.CatalogWarmupJob); err != nil {
		slog.Warn("initial catalog warmup failed", "error", err)
	}
	jobs.Start()
	defer jobs.Stop()

	policy := middleware.AdminPolicy{EmailDomain: cfg.AdminEmailDomain}
	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sessionStore,
		IsAdmin:        policy.IsAdmin,
		IsDev:          isDev,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	guard := middleware.NewGuard(policy, renderer, portalMetrics)
	protection := middleware.NewAccessProtection(middleware.DefaultAccessProtectionConfig())
	defer protection.Close()
	publicRateLimiter := middleware.NewRateLimiter(10.0, 20)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), isDev, cfg.ServerPort)
	csrfConfig.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.WarnContext(r.Context(), "csrf validation failed", "reason", middleware.CSRFFailureReason(r))
		renderer.Error(w, r, http.StatusForbidden, "This form has expired. Please go back and try again.")
	})

	publicHandler := handler.NewPublicHandler(renderer, catalog)
	authHandler := handler.NewAuthHandler(renderer, sessions, protection)
	memberHandler := handler.NewMemberHandler(renderer, client, catalog)
	paymentHandler := handler.NewPaymentHandler(renderer, client, catalog)
	passHandler := handler.NewPassHandler(renderer, client)
	adminHandler := handler.NewAdminHandler(renderer, client, catalog)
	healthHandler := handler.NewHealthHandler(handler.HealthConfig{
		DB:      db,
		API:     client,
		Cache:   catalogCache,
		Jobs:    jobs,
		Version: versionInfo,
		Policy:  policy,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(portalMetrics.Middleware)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev, cfg.APIOrigin())))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// Probes and static assets skip sessions and CSRF.
	r.Get(handler.RouteHealthLive, healthHandler.Liveness)
	r.Handle(handler.RouteMetrics, portalMetrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))

	r.Group(func(r chi.Router) {
		r.Use(sessionStack(sessionStore, csrfConfig, sessions)...)

		r.Get(handler.RouteHealth, healthHandler.Health)

		r.Group(func(r chi.Router) {
			r.Use(publicRateLimiter.Middleware)
			r.Get(handler.RouteRoot, publicHandler.Home)
			r.Get(handler.RouteAccess, authHandler.AccessForm)
			r.With(protection.Middleware).Post(handler.RouteAccess, authHandler.Access)
			r.Post(handler.RouteLogout, authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireMember)
			r.Get(handler.RouteDashboard, memberHandler.Dashboard)
			r.Get(handler.RouteEvent, memberHandler.Event)
			r.Get(handler.RouteRSVP, memberHandler.RSVPForm)
			r.Post(handler.RouteRSVP, memberHandler.SubmitRSVP)
			r.Post(handler.RouteProfileRefresh, authHandler.RefreshProfile)
			r.Get(handler.RoutePayment, paymentHandler.Show)
			r.Post(handler.RoutePayment, paymentHandler.RequestContact)
			r.Get(handler.RoutePass, passHandler.Show)
			r.Get(handler.RoutePassDownload, passHandler.Download)
		})

		r.Route(handler.RouteAdmin, func(r chi.Router) {
			r.Use(guard.RequireAdmin)
			r.Get("/", adminHandler.Dashboard)
			r.Get(handler.RouteMembers, adminHandler.Members)
			r.Get(handler.RouteMembers+handler.RouteSuffixNew, adminHandler.NewMember)
			r.Post(handler.RouteMembers, adminHandler.CreateMember)
			r.Get(handler.RouteRSVPs, adminHandler.RSVPs)
			r.Get(handler.RoutePayments, adminHandler.Payments)
			r.Post(handler.RoutePayments+handler.RouteSuffixVerify, adminHandler.VerifyPayment)
			r.Post(handler.RouteCatalogRefresh, adminHandler.RefreshCatalog)
		})

		r.NotFound(publicHandler.NotFound)
		r.MethodNotAllowed(publicHandler.MethodNotAllowed)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "api", cfg.APIOrigin())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// sessionStack returns the per-request session middleware in order. CSRF runs
// inside LoadAndSave because its error page reads the flash store.
func sessionStack(sm *scs.SessionManager, csrfConfig middleware.CSRFConfig, sessions *session.Manager) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		sm.LoadAndSave,
		middleware.CSRF(csrfConfig),
		sessions.Middleware,
	}
}
