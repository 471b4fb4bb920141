package services

import (
	"context"
	"time"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/logger"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 2
	defaultRetryDelay  = 500 * time.Millisecond
)

// Operation is the unit of work the failover executor wraps: one outbound
// call against a resolved route.
type Operation[T any] func(ctx context.Context, route domain.ResolvedRoute) (T, error)

// FailoverService resolves a bot's failover chain and drives bounded retries
// across it.
type FailoverService struct {
	rules ports.RoutingRuleRepository
	bots  ports.BotContextRepository
	keys  ports.ProviderKeyRepository

	// Deployment-level fallbacks for rules that leave their retry knobs unset.
	maxAttempts int
	retryDelay  time.Duration

	// sleep is swappable so tests do not wait out real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFailoverService wires the failover executor. maxAttempts and retryDelay
// are the configured fallbacks applied when a rule carries zeros; non-positive
// values fall back to the built-in constants.
func NewFailoverService(rules ports.RoutingRuleRepository, bots ports.BotContextRepository, keys ports.ProviderKeyRepository, maxAttempts int, retryDelay time.Duration) *FailoverService {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &FailoverService{
		rules:       rules,
		bots:        bots,
		keys:        keys,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		sleep:       sleepCtx,
	}
}

// effectiveBudget applies the rule's retry knobs over the service defaults.
func (f *FailoverService) effectiveBudget(cfg *domain.FailoverConfig) (int, time.Duration) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = f.maxAttempts
	}
	delay := cfg.RetryDelay()
	if delay <= 0 {
		delay = f.retryDelay
	}
	return maxAttempts, delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// resolveTarget turns a routing target into a full route via the provider-key
// catalog. A failed resolution abandons the target without retrying it.
func (f *FailoverService) resolveTarget(ctx context.Context, target domain.RoutingTarget) (*domain.ResolvedRoute, error) {
	key, err := f.keys.GetByID(ctx, target.ProviderKeyID)
	if err != nil {
		return nil, err
	}
	if key == nil || !key.Enabled {
		return nil, domain.ErrNoRoute
	}
	return &domain.ResolvedRoute{
		Target:   target,
		Vendor:   key.Vendor,
		BaseURL:  key.BaseURL,
		Protocol: ProtocolForVendor(key.Vendor),
	}, nil
}

// defaultRoute is the degraded path taken when the routing rule is not a
// failover rule: a single invocation against the bot's primary model.
func (f *FailoverService) defaultRoute(ctx context.Context, botID string) (*domain.ResolvedRoute, error) {
	botCtx, err := f.bots.GetRoutingContext(ctx, botID)
	if err != nil {
		return nil, err
	}
	if botCtx == nil || botCtx.PrimaryModel == nil {
		return nil, domain.NoRouteError("bot has no primary model configured")
	}
	return f.resolveTarget(ctx, domain.RoutingTarget{
		ProviderKeyID: botCtx.PrimaryModel.ProviderKeyID,
		Model:         botCtx.PrimaryModel.Model,
	})
}

// ExecuteWithFailover runs op against the rule's ordered failover chain:
// [primary, ...fallbacks], each target retried up to the rule's attempt
// budget with a fixed delay between attempts (no delay when crossing
// targets). Exhausting every target raises the terminal exhaustion error.
func ExecuteWithFailover[T any](ctx context.Context, f *FailoverService, botID, routingID string, op Operation[T]) (T, error) {
	var zero T

	rule, err := f.rules.GetByID(ctx, routingID)
	if err != nil || rule == nil || rule.Type != domain.RuleFailover || rule.Failover == nil {
		// Not a failover rule: one shot against the bot's default route.
		route, rerr := f.defaultRoute(ctx, botID)
		if rerr != nil {
			return zero, rerr
		}
		return op(ctx, *route)
	}

	cfg := rule.Failover
	maxAttempts, delay := f.effectiveBudget(cfg)

	targets := make([]domain.RoutingTarget, 0, len(cfg.Chain)+1)
	targets = append(targets, cfg.Primary)
	targets = append(targets, cfg.Chain...)

	attempted := 0
	for ti, target := range targets {
		route, rerr := f.resolveTarget(ctx, target)
		if rerr != nil {
			// Unresolvable target: skip it outright, no retries.
			logger.Warn("failover target unresolvable, skipping",
				zap.String("bot_id", botID),
				zap.String("routing_id", routingID),
				zap.String("provider_key_id", target.ProviderKeyID),
				zap.Error(rerr))
			continue
		}

		for attempt := 0; attempt < maxAttempts; attempt++ {
			attempted++
			result, operr := op(ctx, *route)
			if operr == nil {
				return result, nil
			}

			logger.Warn("failover attempt failed",
				zap.String("bot_id", botID),
				zap.String("routing_id", routingID),
				zap.Int("target", ti),
				zap.Int("attempt", attempt+1),
				zap.Error(operr))

			if attempt < maxAttempts-1 {
				if serr := f.sleep(ctx, delay); serr != nil {
					return zero, serr
				}
			}
		}
	}

	return zero, domain.FailoverExhaustedError(botID, routingID, attempted)
}

// PlanFailover resolves the target order ExecuteWithFailover would walk,
// without invoking anything. Unresolvable targets are dropped from the plan
// the same way the executor skips them.
func (f *FailoverService) PlanFailover(ctx context.Context, botID, routingID string) (*domain.FailoverPlan, error) {
	rule, err := f.rules.GetByID(ctx, routingID)
	if err != nil || rule == nil || rule.Type != domain.RuleFailover || rule.Failover == nil {
		route, rerr := f.defaultRoute(ctx, botID)
		if rerr != nil {
			return nil, rerr
		}
		return &domain.FailoverPlan{
			RoutingID: routingID,
			Targets:   []domain.PlannedTarget{{Route: *route, MaxAttempts: 1}},
		}, nil
	}

	maxAttempts, delay := f.effectiveBudget(rule.Failover)

	targets := make([]domain.RoutingTarget, 0, len(rule.Failover.Chain)+1)
	targets = append(targets, rule.Failover.Primary)
	targets = append(targets, rule.Failover.Chain...)

	plan := &domain.FailoverPlan{
		RoutingID:    routingID,
		RetryDelayMs: delay.Milliseconds(),
	}
	for _, target := range targets {
		route, rerr := f.resolveTarget(ctx, target)
		if rerr != nil {
			continue
		}
		plan.Targets = append(plan.Targets, domain.PlannedTarget{Route: *route, MaxAttempts: maxAttempts})
	}
	return plan, nil
}
