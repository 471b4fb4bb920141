package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/internal/config"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/core/services"
	"github.com/kestrelhq/botgate/internal/server/middleware"
	"github.com/kestrelhq/botgate/internal/store/cache"
	"go.uber.org/zap"
)

// Engine bundles the routing services the admin surface exposes.
type Engine struct {
	Parser   *services.ParserService
	Selector *services.SelectorService
	Rules    *services.RuleService
	Balance  *services.LoadBalanceService
	Loader   *services.LoaderService
	Cost     *services.CostService
	Scores   *services.ScoreService
	Failover *services.FailoverService
	Registry *services.TagRegistry
	Bots     ports.BotContextRepository
	Cache    cache.CacheService
}

type Server struct {
	router *gin.Engine
	config *config.Config
	logger *zap.Logger
	engine *Engine
}

func New(cfg *config.Config, logger *zap.Logger, engine *Engine) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Tracing("botgate"))

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
		engine: engine,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
