package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/services"
	"github.com/kestrelhq/botgate/pkg/api"
)

// AdminHandler exposes read/query endpoints over the loaded routing state.
type AdminHandler struct {
	loader   *services.LoaderService
	registry *services.TagRegistry
	balance  *services.LoadBalanceService
	selector *services.SelectorService
	scores   *services.ScoreService
	failover *services.FailoverService
}

func NewAdminHandler(
	loader *services.LoaderService,
	registry *services.TagRegistry,
	balance *services.LoadBalanceService,
	selector *services.SelectorService,
	scores *services.ScoreService,
	failover *services.FailoverService,
) *AdminHandler {
	return &AdminHandler{
		loader:   loader,
		registry: registry,
		balance:  balance,
		selector: selector,
		scores:   scores,
		failover: failover,
	}
}

// Status reports per-category configuration load state.
func (h *AdminHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, api.OK(h.loader.GetLoadStatus()))
}

// ListCapabilityTags returns the current tag catalog.
func (h *AdminHandler) ListCapabilityTags(c *gin.Context) {
	c.JSON(http.StatusOK, api.OK(h.registry.List()))
}

// GetCapabilityTag returns one tag by id.
func (h *AdminHandler) GetCapabilityTag(c *gin.Context) {
	tagID := c.Param("id")
	tag, ok := h.registry.Get(tagID)
	if !ok {
		c.Error(domain.NotFoundError(fmt.Sprintf("capability tag %q not found", tagID)))
		return
	}
	c.JSON(http.StatusOK, api.OK(tag))
}

// GetFallbackChain returns one loaded fallback chain.
func (h *AdminHandler) GetFallbackChain(c *gin.Context) {
	chainID := c.Param("id")
	chain, ok := h.loader.GetFallbackChain(chainID)
	if !ok {
		c.Error(domain.NotFoundError(fmt.Sprintf("fallback chain %q not found", chainID)))
		return
	}
	c.JSON(http.StatusOK, api.OK(chain))
}

// GetCostStrategy returns one loaded cost strategy.
func (h *AdminHandler) GetCostStrategy(c *gin.Context) {
	strategyID := c.Param("id")
	strategy, ok := h.loader.GetCostStrategy(strategyID)
	if !ok {
		c.Error(domain.NotFoundError(fmt.Sprintf("cost strategy %q not found", strategyID)))
		return
	}
	c.JSON(http.StatusOK, api.OK(strategy))
}

// GetModelPricing returns one loaded model catalog entry.
func (h *AdminHandler) GetModelPricing(c *gin.Context) {
	model := c.Param("model")
	pricing, ok := h.loader.GetModelPricing(model)
	if !ok {
		c.Error(domain.NotFoundError(fmt.Sprintf("no pricing loaded for model %q", model)))
		return
	}
	c.JSON(http.StatusOK, api.OK(pricing))
}

// Refresh forces an immediate configuration reload. Derived caches are
// dropped too so refreshed catalog scores take effect right away.
func (h *AdminHandler) Refresh(c *gin.Context) {
	h.loader.RefreshConfigurations(c.Request.Context())
	h.selector.InvalidateComplexityConfig(services.DefaultComplexityConfigID)
	h.scores.ClearCache()
	c.JSON(http.StatusOK, api.OK(h.loader.GetLoadStatus()))
}

// FailoverPlan resolves a failover rule into the target order the executor
// would walk, for rule debugging.
func (h *AdminHandler) FailoverPlan(c *gin.Context) {
	botID := c.Query("bot_id")
	routingID := c.Query("routing_id")
	if botID == "" || routingID == "" {
		c.Error(domain.BadRequestError("bot_id and routing_id are required"))
		return
	}

	plan, err := h.failover.PlanFailover(c.Request.Context(), botID, routingID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.OK(plan))
}

// ResetLoadBalance clears one or all round-robin counters.
func (h *AdminHandler) ResetLoadBalance(c *gin.Context) {
	var req api.ResetLoadBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(domain.BadRequestError(err.Error()))
		return
	}
	h.balance.ClearState(req.RoutingID)
	c.JSON(http.StatusOK, api.OK(gin.H{"reset": true}))
}
