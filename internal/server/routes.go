package server

import (
	"github.com/kestrelhq/botgate/internal/server/middleware"
	v1 "github.com/kestrelhq/botgate/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler())

	// Health Check (public)
	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	routingHandler := v1.NewRoutingHandler(s.engine.Parser, s.engine.Selector, s.engine.Rules, s.engine.Bots, s.engine.Cache)
	adminHandler := v1.NewAdminHandler(s.engine.Loader, s.engine.Registry, s.engine.Balance, s.engine.Selector, s.engine.Scores, s.engine.Failover)
	costHandler := v1.NewCostHandler(s.engine.Cost)

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))
	api.Use(limiter.Middleware())
	{
		api.POST("/route", routingHandler.Route)

		admin := api.Group("/admin")
		{
			admin.GET("/status", adminHandler.Status)
			admin.GET("/capability-tags", adminHandler.ListCapabilityTags)
			admin.GET("/capability-tags/:id", adminHandler.GetCapabilityTag)
			admin.GET("/fallback-chains/:id", adminHandler.GetFallbackChain)
			admin.GET("/cost-strategies/:id", adminHandler.GetCostStrategy)
			admin.GET("/model-pricing/:model", adminHandler.GetModelPricing)
			admin.GET("/failover-plan", adminHandler.FailoverPlan)
			admin.POST("/refresh", adminHandler.Refresh)
			admin.POST("/load-balance/reset", adminHandler.ResetLoadBalance)

			admin.POST("/cost/estimate", costHandler.Estimate)
			admin.POST("/cost/select-model", costHandler.SelectModel)
			admin.GET("/cost/budget", costHandler.Budget)
		}
	}
}
