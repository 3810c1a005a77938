package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"digimarket/internal/client"
	"digimarket/internal/config"
	"digimarket/internal/repository"
	"digimarket/internal/server"
	"digimarket/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	billingClient := client.NewBillingClient(&cfg.Billing)

	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	productRepo := repository.NewProductRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	affiliateRepo := repository.NewAffiliateRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)

	ctx := context.Background()
	if err := planRepo.Seed(ctx); err != nil {
		logger.Fatal("seed plans", zap.Error(err))
	}

	settlementService := service.NewSettlementService(
		db,
		userRepo,
		planRepo,
		productRepo,
		couponRepo,
		saleRepo,
		affiliateRepo,
		eventRepo,
		logger,
	)
	withdrawalService := service.NewWithdrawalService(db, userRepo, withdrawalRepo, logger)
	userService := service.NewUserService(userRepo, planRepo, billingClient, logger)
	catalogService := service.NewCatalogService(userRepo, planRepo, productRepo, affiliateRepo, logger)
	couponService := service.NewCouponService(couponRepo, productRepo, logger)

	srv := server.NewServer(
		cfg.JWTSecret,
		settlementService,
		withdrawalService,
		userService,
		catalogService,
		couponService,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", zap.String("addr", serverAddr))

	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
