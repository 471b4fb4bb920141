package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelhq/botgate/cmd"
	"github.com/kestrelhq/botgate/internal/classifier"
	"github.com/kestrelhq/botgate/internal/config"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/core/services"
	"github.com/kestrelhq/botgate/internal/logger"
	"github.com/kestrelhq/botgate/internal/platform/otel"
	"github.com/kestrelhq/botgate/internal/server"
	"github.com/kestrelhq/botgate/internal/server/validator"
	"github.com/kestrelhq/botgate/internal/store/cache"
	"github.com/kestrelhq/botgate/internal/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Server.Env)
	defer logger.Sync()
	log := logger.Get()

	cmd.CheckForUpdates()
	validator.InitValidator()

	shutdownTracer, err := otel.InitTracer("botgate", log, os.Stdout)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open configuration store", zap.Error(err))
	}
	defer repo.Close()

	var cacheSvc cache.CacheService
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		cacheSvc = redisCache
	} else {
		cacheSvc = cache.NewMemoryCache()
	}

	// Core routing services
	registry := services.NewTagRegistry()
	parser := services.NewParserService(registry)
	scores := services.NewScoreService(repo.ModelCatalog())

	var classifierClient ports.ComplexityClassifier
	if cfg.Classifier.Enabled {
		classifierClient = classifier.New(domain.ClassifierBinding{
			Model:   cfg.Classifier.Model,
			Vendor:  cfg.Classifier.Vendor,
			BaseURL: cfg.Classifier.BaseURL,
		}, cfg.Classifier.Timeout)
	}

	selector := services.NewSelectorService(parser, scores, classifierClient, repo.ComplexityConfigs())
	balance := services.NewLoadBalanceService()
	rules := services.NewRuleService(repo.RoutingRules(), balance)
	loader := services.NewLoaderService(
		repo.ModelCatalog(),
		repo.CapabilityTags(),
		repo.FallbackChains(),
		repo.CostStrategies(),
		registry,
		cfg.Routing.RefreshInterval,
	)
	cost := services.NewCostService(loader, scores)
	failover := services.NewFailoverService(repo.RoutingRules(), repo.Bots(), repo.ProviderKeys(), cfg.Routing.MaxAttempts, cfg.Routing.RetryDelay)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader.LoadAllConfigurations(ctx)
	loader.StartPeriodicRefresh(ctx)
	defer loader.StopPeriodicRefresh()

	engine := &server.Engine{
		Parser:   parser,
		Selector: selector,
		Rules:    rules,
		Balance:  balance,
		Loader:   loader,
		Cost:     cost,
		Scores:   scores,
		Failover: failover,
		Registry: registry,
		Bots:     repo.Bots(),
		Cache:    cacheSvc,
	}

	srv := server.New(cfg, log, engine)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("starting botgate routing engine", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	loader.StopPeriodicRefresh()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
}
