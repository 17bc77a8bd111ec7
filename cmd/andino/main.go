package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/andino-pos/andino-pos/cmd/andino/cli"
	"github.com/andino-pos/andino-pos/internal/app"
	"github.com/andino-pos/andino-pos/internal/auth"
	"github.com/andino-pos/andino-pos/internal/dashboard"
	"github.com/andino-pos/andino-pos/internal/masterdata/categories"
	"github.com/andino-pos/andino-pos/internal/masterdata/products"
	"github.com/andino-pos/andino-pos/internal/masterdata/suppliers"
	"github.com/andino-pos/andino-pos/internal/observability"
	"github.com/andino-pos/andino-pos/internal/platform/cache"
	"github.com/andino-pos/andino-pos/internal/platform/db"
	"github.com/andino-pos/andino-pos/internal/purchases"
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/reports"
	"github.com/andino-pos/andino-pos/internal/roles"
	"github.com/andino-pos/andino-pos/internal/sales"
	"github.com/andino-pos/andino-pos/internal/sales/customers"
	"github.com/andino-pos/andino-pos/internal/shared"
	"github.com/andino-pos/andino-pos/internal/users"
	"github.com/andino-pos/andino-pos/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCommand(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "andino_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, auditLogger)
	rolesHandler := roles.NewHandler(logger, rolesService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService)

	categoryHandler := categories.NewHandler(logger, categories.NewService(categories.NewRepository(dbpool)))
	supplierHandler := suppliers.NewHandler(logger, suppliers.NewService(suppliers.NewRepository(dbpool)))
	productHandler := products.NewHandler(logger, products.NewService(products.NewRepository(dbpool)))
	customerHandler := customers.NewHandler(logger, customers.NewService(customers.NewRepository(dbpool)))

	purchaseService := purchases.NewService(purchases.NewRepository(dbpool), auditLogger)
	purchaseHandler := purchases.NewHandler(logger, purchaseService)

	saleService := sales.NewService(sales.NewRepository(dbpool), auditLogger)
	saleHandler := sales.NewHandler(logger, saleService)

	reportService := reports.NewService(reports.NewRepository(dbpool))
	reportHandler := reports.NewHandler(logger, reportService)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboardRepo, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		RBACMiddleware:   rbacMiddleware,
		Metrics:          metrics,
		AuthHandler:      authHandler,
		RolesHandler:     rolesHandler,
		UsersHandler:     usersHandler,
		CategoryHandler:  categoryHandler,
		SupplierHandler:  supplierHandler,
		ProductHandler:   productHandler,
		CustomerHandler:  customerHandler,
		PurchaseHandler:  purchaseHandler,
		SaleHandler:      saleHandler,
		ReportHandler:    reportHandler,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: andino jobs [trigger <name>|stats]")
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: andino jobs trigger <name>")
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", args[1], info.ID, info.Queue)
		return nil
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return nil
	default:
		return fmt.Errorf("jobs: unknown subcommand %s", args[0])
	}
}
