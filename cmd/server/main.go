package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/application/invoicing"
	"github.com/printshop/backoffice/internal/application/notification"
	"github.com/printshop/backoffice/internal/infrastructure/config"
	"github.com/printshop/backoffice/internal/infrastructure/docstore"
	"github.com/printshop/backoffice/internal/infrastructure/logger"
	"github.com/printshop/backoffice/internal/infrastructure/mail"
	"github.com/printshop/backoffice/internal/infrastructure/storage"
	"github.com/printshop/backoffice/internal/interfaces/http/handler"
	"github.com/printshop/backoffice/internal/interfaces/http/middleware"
	"github.com/printshop/backoffice/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting backoffice",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	backends := map[string]bool{
		"docstore": false,
		"storage":  false,
		"mail":     false,
	}

	// The invoice pipeline is only wired when both the document store
	// and object storage are configured. Without them the endpoint
	// degrades to a configuration error instead of crashing at startup.
	var invoiceService *invoicing.Service
	var store *docstore.Client
	if cfg.DocStore.Configured() && cfg.Storage.Configured() {
		store, err = docstore.New(startupCtx, cfg.DocStore, log.Named("docstore"))
		if err != nil {
			log.Fatal("Failed to connect document store", zap.Error(err))
		}
		backends["docstore"] = true

		artifacts, err := storage.NewS3ArtifactStore(cfg.Storage,
			storage.WithLogger(log.Named("storage")))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := artifacts.EnsureBucket(startupCtx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err))
		}
		backends["storage"] = true

		allocator := invoicing.NewNumberAllocator(store, log.Named("allocator"))
		renderer := invoicing.NewPDFRenderer()
		invoiceService = invoicing.NewService(store, allocator, renderer, artifacts,
			cfg.DocStore.CompanyID, log.Named("invoicing"))
	} else {
		log.Warn("invoice pipeline disabled, store or storage credentials missing")
	}

	var transport notification.Transport
	if cfg.SMTP.Configured() {
		smtp, err := mail.NewSMTPTransport(cfg.SMTP, log.Named("mail"))
		if err != nil {
			log.Fatal("Failed to initialize mail transport", zap.Error(err))
		}
		transport = smtp
		backends["mail"] = true
	} else {
		log.Warn("mail transport disabled, SMTP credentials missing")
	}
	dispatcher := notification.NewDispatcher(transport, log.Named("notification"))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewInvoiceHandler(invoiceService, cfg.HTTP.RequestTimeout))
	r.Register(handler.NewNotificationHandler(dispatcher, cfg.HTTP.RequestTimeout))
	r.Setup()
	handler.NewSystemHandler(backends).RegisterHealthRoute(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("Error closing document store", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
