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

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/archive"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/cache"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/config"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/database"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/db"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/handlers"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/health"
	h "github.com/ysenguloglu/On-Muhasebe-Web-App/internal/http"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/mailer"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/middleware"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/realtime"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/renderer"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/scheduler"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/services"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	baseLogger := logger.Must(logger.New(cfg.Logging.Level))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	if err := cfg.Validate(); err != nil {
		baseLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer pool.Close()
	baseLogger.Info("database connected", zap.String("dialect", pool.Dialect().String()))

	if err := database.NewSchemaManager(pool, baseLogger.Named("schema")).InitSchema(ctx); err != nil {
		baseLogger.Fatal("failed to initialise schema", zap.Error(err))
	}

	// Redis is optional: without it every list is read from the database
	if err := cache.Init(cfg.Cache.RedisURL); err != nil {
		baseLogger.Warn("redis unavailable, running without cache", zap.Error(err))
	} else if cache.Enabled() {
		baseLogger.Info("redis cache enabled")
	}
	defer cache.Close()

	// Repositories
	stockRepo := repositories.NewStockRepository(pool)
	accountRepo := repositories.NewAccountRepository(pool)
	orderRepo := repositories.NewWorkOrderRepository(pool)
	processRepo := repositories.NewWorkProcessRepository(pool)

	hub := realtime.NewHub(baseLogger.Named("realtime"))

	// Services
	inventory := services.NewInventoryService(stockRepo, hub, baseLogger.Named("inventory"))
	accounts := services.NewAccountService(accountRepo, hub, baseLogger.Named("accounts"))
	orders := services.NewWorkOrderService(orderRepo, hub, baseLogger.Named("orders"))
	processes := services.NewWorkProcessService(processRepo, hub, baseLogger.Named("processes"))
	sheets := services.NewSpreadsheetService(stockRepo, hub, baseLogger.Named("spreadsheet"))

	var docRenderer services.DocumentRenderer
	if cfg.Renderer.APIKey != "" {
		docRenderer = renderer.NewHTMLRenderer(cfg.Renderer.APIKey, cfg.Renderer.APIURL, cfg.Renderer.TempDir, baseLogger.Named("renderer.html"))
		baseLogger.Info("html2pdf renderer enabled")
	} else {
		docRenderer = renderer.NewPDFRenderer(cfg.Renderer.TempDir, baseLogger.Named("renderer.pdf"))
		baseLogger.Info("PDF_API_KEY not set, using local PDF renderer")
	}

	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Server:   cfg.Mail.SMTPServer,
		Port:     cfg.Mail.SMTPPort,
		User:     cfg.Mail.SMTPUser,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
	}, baseLogger.Named("mailer"))
	if !smtpMailer.Configured() {
		baseLogger.Warn("mail is not configured, work orders are saved without sending")
	}

	// Archive is optional; keep the interface nil when it is off
	var pdfArchive services.Archiver
	s3Archive, err := archive.New(ctx, archive.Config{
		Bucket:    cfg.Archive.Bucket,
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
	}, baseLogger.Named("archive"))
	switch {
	case err == nil:
		pdfArchive = s3Archive
		baseLogger.Info("pdf archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	case errors.Is(err, archive.ErrNoBucket):
	default:
		baseLogger.Warn("pdf archive disabled", zap.Error(err))
	}

	workflow := services.NewWorkflowService(inventory, accounts, orders, docRenderer, smtpMailer, pdfArchive, baseLogger.Named("workflow"))
	monthly := services.NewMonthlyReportService(orderRepo, docRenderer, smtpMailer, pdfArchive, cfg.Mail.To, baseLogger.Named("monthly_report"))

	var sched *scheduler.Scheduler
	if cfg.Report.Enabled {
		sched = scheduler.NewScheduler(monthly, cfg.Report.Schedule, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
	}

	// Handlers
	router := h.NewRouter(h.Handlers{
		Stock:         handlers.NewStockHandler(inventory, sheets),
		Account:       handlers.NewAccountHandler(accounts),
		WorkOrder:     handlers.NewWorkOrderHandler(orders, workflow),
		WorkProcess:   handlers.NewWorkProcessHandler(processes),
		MonthlyReport: handlers.NewMonthlyReportHandler(monthly, cfg.Report.CronSecret),
		Health:        handlers.NewHealthHandler(health.NewHealthChecker(pool)),
		Feed:          hub,
	}, cfg.Server.StaticDir)

	corsMiddleware := middleware.NewCORS(cfg)
	accessLog := middleware.NewAPILoggingMiddleware(baseLogger.Named("http"))

	// Wrap with panic recovery, metrics and access logging
	handler := middleware.PanicRecovery(baseLogger.Named("http"))(
		middleware.MetricsMiddleware(accessLog.Handler(corsMiddleware(router))))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	// Stop cron first so no report starts while the server drains
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
