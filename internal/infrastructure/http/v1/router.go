// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"milkbill/internal/core/types"
	"milkbill/internal/domain"
	"milkbill/internal/domain/audit"
	"milkbill/internal/domain/billing"
	"milkbill/internal/domain/dispatch"
	"milkbill/internal/infrastructure/http/v1/handlers"
	"milkbill/internal/infrastructure/http/v1/middleware"
	"milkbill/internal/infrastructure/storage/postgres"
	"milkbill/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the PostgreSQL connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Upstream is the master data reachability check for readiness probes
	Upstream handlers.UpstreamPinger

	// DispatchService handles dispatch/receipt documents
	DispatchService *dispatch.Service

	// BillingService handles settlement reads
	BillingService *billing.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Upstream)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	registerDispatchHooks(cfg)

	// API v1 - everything behind JWT auth
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		baseHandler := handlers.NewBaseHandler()

		dispatchHandler := handlers.NewDispatchHandler(baseHandler, cfg.DispatchService)
		dispatchHandler.RegisterRoutes(v1.Group("/dispatches"))

		receiptHandler := handlers.NewReceiptHandler(baseHandler, cfg.DispatchService)
		receiptHandler.RegisterRoutes(v1.Group("/receipts"))

		billingHandler := handlers.NewBillingHandler(baseHandler, cfg.BillingService)
		billingHandler.RegisterRoutes(v1)

		reportsHandler := handlers.NewReportsHandler(baseHandler, cfg.DispatchService)
		reportsHandler.RegisterRoutes(v1.Group("/reports"))
	}

	return router
}

// registerDispatchHooks wires audit enrichment and the locked-period guard
// into the dispatch document lifecycle.
func registerDispatchHooks(cfg RouterConfig) {
	if cfg.DispatchService == nil {
		return
	}
	hooks := cfg.DispatchService.Hooks()

	hooks.On(domain.BeforeCreate, func(ctx context.Context, doc *dispatch.Dispatch) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return guardPeriod(ctx, cfg.BillingService, doc)
	})
	hooks.On(domain.BeforeUpdate, func(ctx context.Context, doc *dispatch.Dispatch) error {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
		return guardPeriod(ctx, cfg.BillingService, doc)
	})
}

// guardPeriod rejects dispatch postings dated inside a locked bill period.
// Documents carry no shift, so the morning half stands for the day.
func guardPeriod(ctx context.Context, billingSvc *billing.Service, doc *dispatch.Dispatch) error {
	if billingSvc == nil {
		return nil
	}
	return billingSvc.GuardPeriodUnlocked(ctx, types.At(doc.Date, types.ShiftAM))
}
