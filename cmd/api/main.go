package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velvetrow/salonbook/cmd/mainconfig"
	"github.com/velvetrow/salonbook/internal/api/router"
	"github.com/velvetrow/salonbook/internal/appointments"
	"github.com/velvetrow/salonbook/internal/auth"
	"github.com/velvetrow/salonbook/internal/availability"
	appconfig "github.com/velvetrow/salonbook/internal/config"
	"github.com/velvetrow/salonbook/internal/finance"
	"github.com/velvetrow/salonbook/internal/notify"
	"github.com/velvetrow/salonbook/internal/observability/metrics"
	"github.com/velvetrow/salonbook/internal/reports"
	"github.com/velvetrow/salonbook/internal/schedule"
	"github.com/velvetrow/salonbook/internal/stock"
	"github.com/velvetrow/salonbook/internal/uploads"
	"github.com/velvetrow/salonbook/internal/users"
	"github.com/velvetrow/salonbook/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salonbook API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Repositories.
	scheduleRepo := schedule.NewRepository(pool)
	apptRepo := appointments.NewRepository(pool)
	usersRepo := users.NewRepository(pool)
	stockRepo := stock.NewRepository(pool)
	reportsRepo := reports.NewRepository(pool)
	ledger := finance.NewLedger(pool)
	resets := auth.NewResetRepository(pool, cfg.ResetTokenTTL)

	resolver := availability.NewResolver(scheduleRepo, apptRepo)

	// Inspo image storage: S3 when a bucket is configured, local disk otherwise.
	var (
		inspoStore uploads.Store
		uploadDir  string
	)
	if cfg.InspoBucket != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		inspoStore = uploads.NewS3Store(s3.NewFromConfig(awsCfg), cfg.InspoBucket, "", logger)
		logger.Info("inspo images stored in S3", "bucket", cfg.InspoBucket)
	} else {
		inspoStore = uploads.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL, logger)
		uploadDir = cfg.UploadDir
		logger.Info("inspo images stored on disk", "dir", cfg.UploadDir)
	}

	// Password reset email: stub sender when SendGrid is not configured.
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else {
		emailSender = notify.NewStubEmailSender(logger)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	apptService := appointments.NewService(apptRepo, resolver, inspoStore, bookingMetrics, logger)

	r := router.New(&router.Config{
		Logger: logger,

		Availability: availability.NewHandler(resolver, bookingMetrics, logger),
		Appointments: appointments.NewHandler(apptService, logger),
		Schedule:     schedule.NewHandler(scheduleRepo, logger),
		Finance:      finance.NewHandler(ledger, logger),
		Stock:        stock.NewHandler(stockRepo, logger),
		Reports:      reports.NewHandler(reportsRepo, logger),
		Users:        users.NewHandler(usersRepo, logger),
		Auth:         auth.NewHandler(usersRepo, issuer, resets, emailSender, logger),
		Uploads:      uploads.NewHandler(inspoStore, logger),

		MetricsHandler: promhttp.Handler(),

		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		UploadDir:          uploadDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
