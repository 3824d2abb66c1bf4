package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/swipe-attendance/backend/internal/analytics"
	"github.com/swipe-attendance/backend/internal/api"
	"github.com/swipe-attendance/backend/internal/attendance"
	"github.com/swipe-attendance/backend/internal/calendar"
	"github.com/swipe-attendance/backend/internal/config"
	"github.com/swipe-attendance/backend/internal/ingest"
	"github.com/swipe-attendance/backend/internal/logger"
	"github.com/swipe-attendance/backend/internal/metrics"
	"github.com/swipe-attendance/backend/internal/report"
	"github.com/swipe-attendance/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	defaultConfig := filepath.Join(filepath.Dir(exePath), "AttendanceDashboard.config")

	configPath := flag.String("config", defaultConfig, "path to the XML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, *configPath, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, configPath string, log *zap.Logger) error {
	table, err := storage.NewTableStore(cfg.GetTablePath(), log.Named("storage"))
	if err != nil {
		return fmt.Errorf("failed to initialize table store: %w", err)
	}

	var archive *storage.Archive
	if cfg.Storage.ArchiveUploads {
		archive, err = storage.NewArchive(cfg.GetUploadDir())
		if err != nil {
			return fmt.Errorf("failed to initialize upload archive: %w", err)
		}
	}

	overrides, err := calendar.LoadOverrides(cfg.Calendar.HolidaysFile)
	if err != nil {
		return fmt.Errorf("failed to load holidays: %w", err)
	}
	cal, err := calendar.New(cfg.Calendar.Country, overrides)
	if err != nil {
		return err
	}

	var grouper report.Grouper = report.MemoryGrouper{}
	if cfg.Advanced.AggregationEngine == config.EngineDuckDB {
		duck, err := analytics.NewDuckGrouper(analytics.Options{
			Threads:     cfg.Advanced.DuckDBThreads,
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to start duckdb engine: %w", err)
		}
		defer duck.Close()
		grouper = duck
	}

	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.Advanced.EnableMetrics {
		m = metrics.New()
		metricsHandler = m.Handler()
	}

	svc, err := attendance.New(attendance.Config{
		Table:    table,
		Archive:  archive,
		Grouper:  grouper,
		Calendar: cal,
		Ingest: ingest.Options{
			HeaderScanRows: cfg.Ingestion.HeaderScanRows,
		},
		AllowedTypes: cfg.GetAllowedFileTypes(),
		Metrics:      m,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	// Prime the row gauge and fail early on an unreadable table.
	if _, err := svc.Records(context.Background()); err != nil {
		return fmt.Errorf("failed to read %s: %w", table.Path(), err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))

	httpLog := log.Named("http")
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || path == "/metrics"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				httpLog.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			httpLog.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Workbooks are already zip-compressed.
			return strings.HasSuffix(c.Request().URL.Path, "/export") ||
				strings.HasSuffix(c.Request().URL.Path, "/source")
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, &api.Dependencies{
		Service:       svc,
		Version:       Version,
		Engine:        cfg.Advanced.AggregationEngine,
		Logger:        log,
		Metrics:       metricsHandler,
		AllowDeletion: cfg.Storage.AllowDocumentDeletion,
	})

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Attendance Dashboard Server                     ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Engine:     %-45s║\n", cfg.Advanced.AggregationEngine)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Table:     %-46s║\n", cfg.GetTablePath())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
