// Package main is the entry point for the shoptill API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoptill/internal/config"
	"shoptill/internal/domain/auth"
	"shoptill/internal/domain/billing"
	"shoptill/internal/domain/catalog"
	"shoptill/internal/domain/pricing"
	"shoptill/internal/infrastructure/feed"
	v1 "shoptill/internal/infrastructure/http/v1"
	"shoptill/internal/infrastructure/storage/postgres"
	"shoptill/internal/render"
	"shoptill/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting shoptill server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.PGDSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Redis catalog feed ---
	redisClient, err := feed.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	defer func() { _ = redisClient.Close() }()
	catalogFeed := feed.NewRedis(redisClient)

	// --- Repositories ---
	itemRepo := postgres.NewItemRepo(txManager)
	billRepo := postgres.NewBillRepo(txManager)
	operatorRepo := postgres.NewOperatorRepo(txManager)

	auditLog, err := postgres.NewAuditLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit log", "error", err)
	}
	defer auditLog.Close()

	// --- Domain services ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(operatorRepo, jwtService, auth.DefaultServiceConfig())

	catalogService := catalog.NewService(itemRepo, catalogFeed)
	billingService := billing.NewService(billRepo, itemRepo, txManager, auditLog, catalogFeed)
	drafts := billing.NewDraftStore()

	rules, err := pricing.ParseRules(cfg.DiscountRules)
	if err != nil {
		log.Fatalw("invalid discount rules", "error", err)
	}
	ruleEngine, err := pricing.NewEngine(rules)
	if err != nil {
		log.Fatalw("failed to compile discount rules", "error", err)
	}

	receipt, err := render.NewReceipt(render.ShopInfo{
		Name:    cfg.ShopName,
		Address: cfg.ShopAddress,
		Phone:   cfg.ShopPhone,
		Note:    cfg.ReceiptNote,
	})
	if err != nil {
		log.Fatalw("failed to build receipt template", "error", err)
	}

	// --- Catalog mirror ---
	mirror := catalog.NewMirror(itemRepo, catalogFeed)
	mirrorCtx, stopMirror := context.WithCancel(ctx)
	defer stopMirror()
	go func() {
		if err := mirror.Run(mirrorCtx); err != nil && mirrorCtx.Err() == nil {
			log.Errorw("catalog mirror stopped", "error", err)
		}
	}()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		CatalogService: catalogService,
		Mirror:         mirror,
		Drafts:         drafts,
		BillingService: billingService,
		Rules:          ruleEngine,
		Receipt:        receipt,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.AppAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopMirror()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
