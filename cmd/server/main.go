// Package main is the entry point for the milkbill settlement engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"milkbill/internal/config"
	"milkbill/internal/domain"
	"milkbill/internal/domain/billing"
	"milkbill/internal/domain/dispatch"
	"milkbill/internal/infrastructure/auth"
	v1 "milkbill/internal/infrastructure/http/v1"
	"milkbill/internal/infrastructure/masterdata"
	"milkbill/internal/infrastructure/storage/postgres"
	"milkbill/internal/infrastructure/storage/postgres/dispatch_repo"
	"milkbill/pkg/dcnumber"
	"milkbill/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting milkbill server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Master data client ---
	masterClient := masterdata.NewClient(masterdata.Config{
		BaseURL: cfg.MasterData.BaseURL,
		APIKey:  cfg.MasterData.APIKey,
		Timeout: cfg.MasterData.Timeout,
	})

	// --- Repositories and services ---
	dispatchRepo := dispatch_repo.NewDispatchRepo(txManager)
	receiptRepo := dispatch_repo.NewReceiptRepo(txManager)

	dcNumbers := dcnumber.New(pool)
	seedSequences(ctx, log, masterClient, dispatchRepo, dcNumbers)

	dispatchService := dispatch.NewService(
		dispatchRepo,
		receiptRepo,
		dcNumbers,
		masterClient,
		txManager,
	)
	registerAuditHooks(dispatchService, auditService)

	billingService := billing.NewService(masterClient)

	// --- JWT validation ---
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		Upstream:        masterClient,
		DispatchService: dispatchService,
		BillingService:  billingService,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// seedSequences raises the DC number counters to at least the highest
// sequence already stored per unit and financial year. Installations that
// previously derived the sequence by scanning dispatch numbers keep their
// numbering after the switch to counters. Best-effort: the master data
// service may not be reachable at startup.
func seedSequences(
	ctx context.Context,
	log *logger.Logger,
	masterClient *masterdata.Client,
	dispatchRepo *dispatch_repo.DispatchRepo,
	dcNumbers *dcnumber.Service,
) {
	branches, err := masterClient.Branches(ctx)
	if err != nil {
		log.Warnw("skipping dc sequence seeding, master data unavailable", "error", err)
		return
	}

	fy := dcnumber.FinancialYear(time.Now())
	for _, branch := range branches {
		if branch.ShortCode == "" {
			continue
		}
		max, err := dispatchRepo.MaxSequence(ctx, branch.ShortCode, fy)
		if err != nil {
			log.Warnw("failed to read max dc sequence", "unit", branch.ShortCode, "error", err)
			continue
		}
		if max == 0 {
			continue
		}
		if err := dcNumbers.SeedFromExisting(ctx, branch.ShortCode, fy, max); err != nil {
			log.Warnw("failed to seed dc sequence", "unit", branch.ShortCode, "error", err)
			continue
		}
		log.Infow("dc sequence seeded", "unit", branch.ShortCode, "fy", fy, "seq", max)
	}
}

// registerAuditHooks records dispatch writes in the audit trail. Settlement
// disputes between units are resolved from it.
func registerAuditHooks(dispatchService *dispatch.Service, auditService *postgres.AuditService) {
	hooks := dispatchService.Hooks()

	hooks.On(domain.AfterCreate, func(ctx context.Context, doc *dispatch.Dispatch) error {
		return auditService.LogChange(ctx, "milk_dispatch", doc.ID, postgres.AuditActionCreate,
			postgres.StructToMap(doc))
	})
	hooks.On(domain.AfterUpdate, func(ctx context.Context, doc *dispatch.Dispatch) error {
		action := postgres.AuditActionUpdate
		if !doc.InTransit {
			action = postgres.AuditActionSettle
		}
		return auditService.LogChange(ctx, "milk_dispatch", doc.ID, action,
			postgres.StructToMap(doc))
	})
}
