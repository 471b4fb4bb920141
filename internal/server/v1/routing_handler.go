package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/core/services"
	"github.com/kestrelhq/botgate/internal/server/validator"
	"github.com/kestrelhq/botgate/internal/store/cache"
	"github.com/kestrelhq/botgate/pkg/api"
)

// botContextTTL bounds how long a cached bot context can lag behind an admin
// edit.
const botContextTTL = time.Minute

// RoutingHandler exposes the decision-preview endpoint the gateway and
// operators use to inspect what the engine would do with a request.
type RoutingHandler struct {
	parser   *services.ParserService
	selector *services.SelectorService
	rules    *services.RuleService
	bots     ports.BotContextRepository
	cache    cache.CacheService
}

func NewRoutingHandler(
	parser *services.ParserService,
	selector *services.SelectorService,
	rules *services.RuleService,
	bots ports.BotContextRepository,
	cacheSvc cache.CacheService,
) *RoutingHandler {
	return &RoutingHandler{
		parser:   parser,
		selector: selector,
		rules:    rules,
		bots:     bots,
		cache:    cacheSvc,
	}
}

// Route runs requirement parsing and route selection over a posted request
// body and returns the decision without performing any outbound call.
func (h *RoutingHandler) Route(c *gin.Context) {
	var req api.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	ctx := c.Request.Context()

	botCtx, err := h.botContext(c, req.BotID)
	if err != nil {
		c.Error(domain.InternalError("failed to load bot context", err))
		return
	}
	if botCtx == nil {
		c.Error(domain.NotFoundError(fmt.Sprintf("bot %q not found", req.BotID)))
		return
	}

	var decision *domain.RouteDecision
	if req.UseComplexity {
		decision, err = h.selector.SelectRouteWithComplexity(ctx, &req.Request, botCtx, req.RoutingHint)
		if err != nil {
			c.Error(domain.InternalError("route selection failed", err))
			return
		}
	} else {
		requirements := h.parser.ParseRequirements(&req.Request, req.RoutingHint)
		decision = h.selector.SelectRoute(requirements, botCtx, req.Request.Model)
	}

	// Per-bot routing rules (function routes, load balancing) can pin the
	// decision to a specific credential/model pair.
	target, rule, err := h.rules.SelectRuleTarget(ctx, req.BotID, &req.Request)
	if err != nil {
		c.Error(err)
		return
	}

	data := gin.H{"decision": decision}
	if target != nil {
		data["rule_target"] = target
		data["rule_id"] = rule.RuleID
	}
	c.JSON(http.StatusOK, api.OK(data))
}

// botContext reads through the short-lived bot context cache.
func (h *RoutingHandler) botContext(c *gin.Context, botID string) (*domain.BotRoutingContext, error) {
	ctx := c.Request.Context()
	key := "botctx:" + botID

	if h.cache != nil {
		var cached domain.BotRoutingContext
		if err := h.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	botCtx, err := h.bots.GetRoutingContext(ctx, botID)
	if err != nil || botCtx == nil {
		return botCtx, err
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, key, botCtx, botContextTTL)
	}
	return botCtx, nil
}
