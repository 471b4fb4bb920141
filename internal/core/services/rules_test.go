package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func toolReq(names ...string) *api.ChatRequest {
	req := &api.ChatRequest{Messages: []api.ChatMessage{userMsg("go")}}
	for _, n := range names {
		req.Tools = append(req.Tools, api.Tool{Function: &api.ToolFunction{Name: n}})
	}
	return req
}

func TestSelectRuleTarget_FunctionRouteMatch(t *testing.T) {
	rules := new(MockRoutingRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{
		{
			RuleID: "r1", BotID: "bot-1", Type: domain.RuleFunctionRoute,
			FunctionRoute: &domain.FunctionRouteConfig{
				Pattern: "^search_",
				Target:  domain.RoutingTarget{ProviderKeyID: "k1", Model: "gpt-4o"},
			},
		},
	}, nil)

	s := NewRuleService(rules, NewLoadBalanceService())

	target, rule, err := s.SelectRuleTarget(context.Background(), "bot-1", toolReq("search_web"))
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "gpt-4o", target.Model)
	assert.Equal(t, "r1", rule.RuleID)

	// Non-matching tool names fall through.
	target, rule, err = s.SelectRuleTarget(context.Background(), "bot-1", toolReq("summarize"))
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Nil(t, rule)
}

func TestSelectRuleTarget_InvalidPatternIsNonMatch(t *testing.T) {
	rules := new(MockRoutingRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{
		{
			RuleID: "r1", BotID: "bot-1", Type: domain.RuleFunctionRoute,
			FunctionRoute: &domain.FunctionRouteConfig{
				Pattern: "([unclosed",
				Target:  domain.RoutingTarget{Model: "gpt-4o"},
			},
		},
	}, nil)

	s := NewRuleService(rules, NewLoadBalanceService())

	// A pattern that fails to compile is a non-match, not an error.
	target, rule, err := s.SelectRuleTarget(context.Background(), "bot-1", toolReq("anything"))
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Nil(t, rule)
}

func TestSelectRuleTarget_LoadBalance(t *testing.T) {
	rules := new(MockRoutingRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{
		{
			RuleID: "r1", BotID: "bot-1", Type: domain.RuleLoadBalance,
			LoadBalance: &domain.LoadBalanceConfig{
				Strategy: domain.StrategyRoundRobin,
				Targets: []domain.LoadBalanceTarget{
					{RoutingTarget: domain.RoutingTarget{Model: "gpt-4o"}},
					{RoutingTarget: domain.RoutingTarget{Model: "claude-sonnet-4-5"}},
				},
			},
		},
	}, nil)

	s := NewRuleService(rules, NewLoadBalanceService())

	target, _, err := s.SelectRuleTarget(context.Background(), "bot-1", toolReq())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", target.Model)

	target, _, err = s.SelectRuleTarget(context.Background(), "bot-1", toolReq())
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", target.Model)
}

func TestSelectRuleTarget_LoadBalanceNoTargets(t *testing.T) {
	rules := new(MockRoutingRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{
		{
			RuleID: "r1", BotID: "bot-1", Type: domain.RuleLoadBalance,
			LoadBalance: &domain.LoadBalanceConfig{Strategy: domain.StrategyRoundRobin},
		},
	}, nil)

	s := NewRuleService(rules, NewLoadBalanceService())

	_, rule, err := s.SelectRuleTarget(context.Background(), "bot-1", toolReq())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoRoute))
	require.NotNil(t, rule)
	assert.Equal(t, "r1", rule.RuleID)
}

func TestSelectRuleTarget_FailoverRulesAreSkipped(t *testing.T) {
	rules := new(MockRoutingRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{
		{
			RuleID: "r1", BotID: "bot-1", Type: domain.RuleFailover,
			Failover: &domain.FailoverConfig{Primary: domain.RoutingTarget{Model: "gpt-4o"}},
		},
	}, nil)

	s := NewRuleService(rules, NewLoadBalanceService())

	// Failover rules belong to the executor, not target selection.
	target, rule, err := s.SelectRuleTarget(context.Background(), "bot-1", toolReq())
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Nil(t, rule)
}

func TestSelectRuleTarget_NoRules(t *testing.T) {
	rules := new(MockRoutingRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{}, nil)

	s := NewRuleService(rules, NewLoadBalanceService())

	target, rule, err := s.SelectRuleTarget(context.Background(), "bot-1", toolReq())
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Nil(t, rule)
}

func TestToolFunctionNames(t *testing.T) {
	req := &api.ChatRequest{Tools: []api.Tool{
		{Function: &api.ToolFunction{Name: "search_web"}},
		{Name: "flat_tool"},
		{Type: "web_search"},
		{},
	}}
	assert.Equal(t, []string{"search_web", "flat_tool", "web_search"}, toolFunctionNames(req))
}
