package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/services"
	"github.com/kestrelhq/botgate/internal/server/validator"
	"github.com/kestrelhq/botgate/pkg/api"
)

// CostHandler exposes cost estimation and strategy scoring.
type CostHandler struct {
	cost *services.CostService
}

func NewCostHandler(cost *services.CostService) *CostHandler {
	return &CostHandler{cost: cost}
}

// Estimate prices a request from token counts.
func (h *CostHandler) Estimate(c *gin.Context) {
	var req api.CostEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	estimate, err := h.cost.EstimateCost(req.Model, req.InputTokens, req.OutputTokens, req.CachedTokens)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.OK(estimate))
}

// SelectModel ranks candidate models under a named cost strategy.
func (h *CostHandler) SelectModel(c *gin.Context) {
	var req api.SelectModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	scores, err := h.cost.SelectModel(c.Request.Context(), req.StrategyID, req.Candidates)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.OK(scores))
}

// Budget reports a bot's standing against its strategy's daily budget.
func (h *CostHandler) Budget(c *gin.Context) {
	botID := c.Query("bot_id")
	strategyID := c.Query("strategy_id")
	if botID == "" || strategyID == "" {
		c.Error(domain.BadRequestError("bot_id and strategy_id are required"))
		return
	}

	status, err := h.cost.CheckBudget(botID, strategyID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.OK(status))
}
