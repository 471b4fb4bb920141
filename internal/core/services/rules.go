package services

import (
	"context"
	"regexp"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/logger"
	"github.com/kestrelhq/botgate/pkg/api"
	"go.uber.org/zap"
)

// RuleService resolves a bot's routing rules against a concrete request:
// function-route rules match tool names by pattern, load-balance rules
// delegate to the balancer. Failover rules are driven separately by the
// failover executor.
type RuleService struct {
	rules   ports.RoutingRuleRepository
	balance *LoadBalanceService
}

func NewRuleService(rules ports.RoutingRuleRepository, balance *LoadBalanceService) *RuleService {
	return &RuleService{rules: rules, balance: balance}
}

// SelectRuleTarget returns the target the bot's rules pick for this request,
// or nil when no rule applies (the caller then falls through to the route
// selector). An applicable load-balance rule with no targets is a no-route
// error.
func (s *RuleService) SelectRuleTarget(ctx context.Context, botID string, req *api.ChatRequest) (*domain.RoutingTarget, *domain.RoutingRule, error) {
	rules, err := s.rules.ListByBot(ctx, botID)
	if err != nil {
		return nil, nil, err
	}

	names := toolFunctionNames(req)

	for i := range rules {
		rule := &rules[i]
		switch rule.Type {
		case domain.RuleFunctionRoute:
			if rule.FunctionRoute == nil {
				continue
			}
			if matchFunctionRoute(rule, names) {
				target := rule.FunctionRoute.Target
				return &target, rule, nil
			}
		case domain.RuleLoadBalance:
			if rule.LoadBalance == nil {
				continue
			}
			target := s.balance.SelectTarget(rule.RuleID, rule.LoadBalance.Strategy, rule.LoadBalance.Targets)
			if target == nil {
				return nil, rule, domain.NoRouteError("load balance rule has no targets")
			}
			return &target.RoutingTarget, rule, nil
		}
	}

	return nil, nil, nil
}

// matchFunctionRoute applies the rule's pattern to every tool name carried by
// the request. A pattern that fails to compile makes the rule a non-match
// rather than an error.
func matchFunctionRoute(rule *domain.RoutingRule, names []string) bool {
	re, err := regexp.Compile(rule.FunctionRoute.Pattern)
	if err != nil {
		logger.Warn("invalid function route pattern, treating as non-match",
			zap.String("rule_id", rule.RuleID),
			zap.String("pattern", rule.FunctionRoute.Pattern),
			zap.Error(err))
		return false
	}
	for _, name := range names {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func toolFunctionNames(req *api.ChatRequest) []string {
	var names []string
	for _, tool := range req.Tools {
		if tool.Function != nil && tool.Function.Name != "" {
			names = append(names, tool.Function.Name)
		} else if tool.Name != "" {
			names = append(names, tool.Name)
		} else if tool.Type != "" {
			names = append(names, tool.Type)
		}
	}
	return names
}
