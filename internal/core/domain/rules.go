package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoutingRuleType discriminates the routing rule union.
type RoutingRuleType string

const (
	RuleFunctionRoute RoutingRuleType = "FUNCTION_ROUTE"
	RuleLoadBalance   RoutingRuleType = "LOAD_BALANCE"
	RuleFailover      RoutingRuleType = "FAILOVER"
)

// LoadBalanceStrategy selects how a load-balance rule picks among its targets.
type LoadBalanceStrategy string

const (
	StrategyRoundRobin LoadBalanceStrategy = "round_robin"
	StrategyWeighted   LoadBalanceStrategy = "weighted"
	// StrategyLeastLatency has no latency feed in this engine and degrades
	// to round-robin. Kept as a distinct value so configs round-trip.
	StrategyLeastLatency LoadBalanceStrategy = "least_latency"
)

// FunctionRouteConfig routes requests whose function/tool name matches Pattern.
// Pattern is a regular expression; a pattern that fails to compile makes the
// rule a non-match rather than an error.
type FunctionRouteConfig struct {
	Pattern string        `json:"pattern"`
	Target  RoutingTarget `json:"target"`
}

// LoadBalanceConfig spreads requests across Targets per Strategy.
type LoadBalanceConfig struct {
	Strategy LoadBalanceStrategy `json:"strategy"`
	Targets  []LoadBalanceTarget `json:"targets"`
}

// FailoverConfig tries Primary then each chain entry in order, with bounded
// per-target retries.
type FailoverConfig struct {
	Primary      RoutingTarget   `json:"primary"`
	Chain        []RoutingTarget `json:"chain"`
	MaxAttempts  int             `json:"max_attempts"`
	RetryDelayMs int             `json:"retry_delay_ms"`
}

// RetryDelay returns the configured inter-attempt delay.
func (c FailoverConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// RoutingRule is the decoded form of one per-bot routing rule row. Exactly one
// of the config fields is set, matching Type. The raw JSON blob is decoded once
// at the repository boundary; downstream code never re-casts.
type RoutingRule struct {
	RuleID string          `json:"rule_id"`
	BotID  string          `json:"bot_id"`
	Type   RoutingRuleType `json:"type"`

	FunctionRoute *FunctionRouteConfig `json:"function_route,omitempty"`
	LoadBalance   *LoadBalanceConfig   `json:"load_balance,omitempty"`
	Failover      *FailoverConfig      `json:"failover,omitempty"`
}

// PlannedTarget is one step of a resolved failover plan.
type PlannedTarget struct {
	Route       ResolvedRoute `json:"route"`
	MaxAttempts int           `json:"max_attempts"`
}

// FailoverPlan is the execution order a failover rule resolves to, used by the
// admin surface to inspect rules without running them.
type FailoverPlan struct {
	RoutingID    string          `json:"routing_id"`
	RetryDelayMs int64           `json:"retry_delay_ms"`
	Targets      []PlannedTarget `json:"targets"`
}

// DecodeRoutingRule parses the stored config blob for the given rule type.
func DecodeRoutingRule(ruleID, botID string, ruleType RoutingRuleType, raw []byte) (*RoutingRule, error) {
	rule := &RoutingRule{RuleID: ruleID, BotID: botID, Type: ruleType}

	switch ruleType {
	case RuleFunctionRoute:
		var cfg FunctionRouteConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode function route config for rule %s: %w", ruleID, err)
		}
		rule.FunctionRoute = &cfg
	case RuleLoadBalance:
		var cfg LoadBalanceConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode load balance config for rule %s: %w", ruleID, err)
		}
		rule.LoadBalance = &cfg
	case RuleFailover:
		var cfg FailoverConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode failover config for rule %s: %w", ruleID, err)
		}
		rule.Failover = &cfg
	default:
		return nil, fmt.Errorf("unknown routing rule type %q for rule %s", ruleType, ruleID)
	}

	return rule, nil
}
