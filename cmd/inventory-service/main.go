package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/maestranza/inventory-backend/internal/auth"
	authhandler "github.com/maestranza/inventory-backend/internal/auth/handler"
	"github.com/maestranza/inventory-backend/internal/auth/jwt"
	authrepo "github.com/maestranza/inventory-backend/internal/auth/repository"
	authservice "github.com/maestranza/inventory-backend/internal/auth/service"
	"github.com/maestranza/inventory-backend/internal/inventory/events"
	"github.com/maestranza/inventory-backend/internal/inventory/handler"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/config"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
	"github.com/maestranza/inventory-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting inventory service")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// RabbitMQ is optional; without it events are dropped and everything
	// else keeps working.
	var rmq *messaging.RabbitMQ
	var publisher *events.InventoryEventPublisher
	if cfg.RabbitMQ.URL != "" {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewInventoryEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Warn().Msg("rabbitmq url not configured, event publishing disabled")
	}

	// Repositories
	userRepo := authrepo.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	kitRepo := repository.NewKitRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	sysConfigRepo := repository.NewSystemConfigRepository(db)

	// Services
	jwtManager := jwt.NewManager(&cfg.JWT)
	authSvc := authservice.NewAuthService(userRepo, jwtManager, log)
	inventorySvc := service.NewInventoryService(productRepo, batchRepo, categoryRepo, supplierRepo, projectRepo, kitRepo, log)
	stockSvc := service.NewStockService(db, productRepo, batchRepo, movementRepo, alertRepo, kitRepo, sysConfigRepo, publisher, log)
	alertSvc := service.NewAlertService(productRepo, batchRepo, alertRepo, sysConfigRepo, stockSvc, publisher, log)
	reportSvc := service.NewReportService(productRepo, batchRepo, movementRepo, orderRepo, log)
	orderSvc := service.NewPurchaseOrderService(orderRepo, supplierRepo, stockSvc, publisher, log)

	// Handlers
	authHandler := authhandler.NewAuthHandler(authSvc, log)
	productHandler := handler.NewProductHandler(inventorySvc, log)
	batchHandler := handler.NewBatchHandler(inventorySvc, stockSvc, log)
	movementHandler := handler.NewMovementHandler(stockSvc, movementRepo, log)
	alertHandler := handler.NewAlertHandler(alertSvc, log)
	kitHandler := handler.NewKitHandler(inventorySvc, stockSvc, log)
	catalogHandler := handler.NewCatalogHandler(inventorySvc, log)
	orderHandler := handler.NewPurchaseOrderHandler(orderSvc, log)
	reportHandler := handler.NewReportHandler(reportSvc, stockSvc, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background alert generation and expired batch sweep
	scheduler := service.NewAlertScheduler(alertSvc, cfg.Alerts.ScanInterval, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtManager))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole("admin"))
				r.Post("/users", authHandler.CreateUser)
				r.Get("/users", authHandler.ListUsers)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
				r.Get("/sku/{sku}", productHandler.GetBySKU)
				r.Get("/{id}", productHandler.Get)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
				r.Get("/{id}/batches", productHandler.ListBatches)
			})

			r.Route("/batches", func(r chi.Router) {
				r.Post("/", batchHandler.Create)
				r.Get("/expiring", batchHandler.ListExpiring)
				r.Get("/expired", batchHandler.ListExpired)
				r.Post("/sweep", batchHandler.Sweep)
				r.Get("/{id}", batchHandler.Get)
				r.Put("/{id}", batchHandler.Update)
				r.Delete("/{id}", batchHandler.Delete)
			})

			r.Route("/movements", func(r chi.Router) {
				r.Get("/", movementHandler.List)
				r.Post("/", movementHandler.Apply)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.List)
				r.Post("/", alertHandler.Create)
				r.Post("/generate", alertHandler.Generate)
				r.Get("/dashboard", alertHandler.Dashboard)
				r.Get("/statistics", alertHandler.Statistics)
				r.Put("/read-all", alertHandler.MarkAllRead)
				r.Get("/{id}", alertHandler.Get)
				r.Put("/{id}/read", alertHandler.MarkRead)
				r.Put("/{id}/assign", alertHandler.Assign)
			})

			r.Route("/kits", func(r chi.Router) {
				r.Get("/", kitHandler.List)
				r.Post("/", kitHandler.Create)
				r.Get("/{id}", kitHandler.Get)
				r.Put("/{id}", kitHandler.Update)
				r.Delete("/{id}", kitHandler.Delete)
				r.Get("/{id}/availability", kitHandler.Availability)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", catalogHandler.ListCategories)
				r.Post("/", catalogHandler.CreateCategory)
				r.Get("/{id}", catalogHandler.GetCategory)
				r.Put("/{id}", catalogHandler.UpdateCategory)
				r.Delete("/{id}", catalogHandler.DeleteCategory)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", catalogHandler.ListSuppliers)
				r.Post("/", catalogHandler.CreateSupplier)
				r.Get("/{id}", catalogHandler.GetSupplier)
				r.Put("/{id}", catalogHandler.UpdateSupplier)
				r.Delete("/{id}", catalogHandler.DeleteSupplier)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", catalogHandler.ListProjects)
				r.Post("/", catalogHandler.CreateProject)
				r.Get("/{id}", catalogHandler.GetProject)
				r.Put("/{id}", catalogHandler.UpdateProject)
				r.Delete("/{id}", catalogHandler.DeleteProject)
			})

			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Post("/", orderHandler.Create)
				r.Get("/{id}", orderHandler.Get)
				r.Put("/{id}/status", orderHandler.UpdateStatus)
				r.Delete("/{id}", orderHandler.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/inventory", reportHandler.Inventory)
				r.Get("/consumption", reportHandler.Consumption)
				r.Get("/consumption/{id}", reportHandler.ProductConsumption)
				r.Get("/expiry", reportHandler.Expiry)
				r.Get("/suppliers", reportHandler.Suppliers)
				r.Get("/suppliers/{id}/performance", reportHandler.SupplierDetail)
				r.Get("/low-stock", reportHandler.LowStock)
			})
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
