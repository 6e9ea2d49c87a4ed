package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"polysim/internal/client/gamma"
	"polysim/internal/client/xai"
	"polysim/internal/config"
	cronrunner "polysim/internal/cron"
	"polysim/internal/db"
	"polysim/internal/gate"
	"polysim/internal/handler"
	"polysim/internal/ledger"
	"polysim/internal/logger"
	"polysim/internal/opportunity"
	gormrepository "polysim/internal/repository/gorm"
)

func main() {
	cfgPath := os.Getenv("PS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	gammaHTTP := &http.Client{Timeout: cfg.Gamma.Timeout}
	gammaClient := gamma.NewClient(gammaHTTP, cfg.Gamma.BaseURL)
	xaiHTTP := &http.Client{Timeout: cfg.XAI.Timeout}
	advisor := xai.NewClient(xaiHTTP, cfg.XAI.BaseURL, cfg.XAI.APIKey, cfg.XAI.Model)
	store := gormrepository.New(dbConn.Gorm)

	limiter := gate.NewLimiter(cfg.RateLimit.Window, map[string]int{
		gate.EndpointLight: cfg.RateLimit.LightRequests,
		gate.EndpointHeavy: cfg.RateLimit.HeavyRequests,
	})
	opportunitySvc := &opportunity.Service{
		Source:     gammaClient,
		Cache:      gate.NewCache(cfg.Cache.TTL),
		Logger:     logger,
		FetchLimit: cfg.Opportunity.FetchLimit,
	}
	ledgerSvc := &ledger.Service{
		Repo:           store,
		Quotes:         opportunitySvc,
		Logger:         logger,
		InitialBalance: decimal.NewFromFloat(cfg.Portfolio.InitialBalance),
		MinTradeAmount: decimal.NewFromFloat(cfg.Portfolio.MinTradeAmount),
	}

	if _, err := store.EnsurePortfolio(context.Background(), ledgerSvc.InitialBalance); err != nil {
		logger.Warn("init portfolio failed", zap.Error(err))
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.CORS())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	marketHandler := &handler.MarketHandler{
		Service:      opportunitySvc,
		Limiter:      limiter,
		DefaultLimit: cfg.Opportunity.DefaultLimit,
		MaxLimit:     cfg.Opportunity.MaxLimit,
	}
	marketHandler.Register(engine)
	tradeHandler := &handler.TradeHandler{Ledger: ledgerSvc, Limiter: limiter}
	tradeHandler.Register(engine)
	analyzeHandler := &handler.AnalyzeHandler{
		Advisor: advisor,
		Repo:    store,
		Limiter: limiter,
		Logger:  logger,
	}
	analyzeHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.PriceRefresh, func(ctx context.Context) {
			result, err := ledgerSvc.RefreshPrices(ctx)
			if err != nil {
				logger.Warn("cron price refresh failed", zap.Error(err))
				return
			}
			logger.Info("cron price refresh ok",
				zap.Int("updated", result.Updated),
				zap.Int("total", result.Total),
			)
		})
		if err != nil {
			logger.Fatal("cron add failed", zap.Error(err))
		}
		cronRunner.Start()
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if cfg.Cron.Enabled {
		cronRunner.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
}
