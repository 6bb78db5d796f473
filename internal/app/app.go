// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/booktrack/booktrack/internal/books"
	bookspostgres "github.com/booktrack/booktrack/internal/books/postgres"
	"github.com/booktrack/booktrack/internal/config"
	"github.com/booktrack/booktrack/internal/health"
	"github.com/booktrack/booktrack/internal/pkg/httputil"
	"github.com/booktrack/booktrack/internal/pkg/metrics"
	"github.com/booktrack/booktrack/internal/pkg/postgres"
	"github.com/booktrack/booktrack/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	state         *health.State
	server        *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance. The lifecycle state flips to
// started as soon as the pool object exists; the database is first
// contacted lazily, so /readyz is the probe that proves reachability.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
	defer poolCancel()

	db, err := postgres.NewPool(poolCtx, postgres.Config{
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		Name:           cfg.DB.Name,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		MinConns:       cfg.DB.MinConns,
		MaxConns:       cfg.DB.MaxConns,
		ConnectTimeout: cfg.DB.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	state := health.NewState()
	state.MarkStarted()

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		state:         state,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	return app, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run() error {
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application. The pool is closed
// exactly once, after the server has drained.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	a.metricsCancel()

	err := a.server.Shutdown(ctx)

	a.db.Close()

	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httputil.RateLimitMiddleware(a.config.Server.RateLimit, a.config.Server.RateBurst))

	healthHandler := health.NewHandler(a.db, a.state)
	healthHandler.RegisterRoutes(r)

	r.Get("/version", a.versionHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>BookTrack API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	booksRepo := bookspostgres.NewRepository(a.db)
	booksService := books.NewService(booksRepo)
	booksHandler := books.NewHandler(booksService)
	booksHandler.RegisterRoutes(r)

	return r
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
