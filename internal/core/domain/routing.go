package domain

import "time"

// Protocol identifies the wire protocol a decision resolves to.
type Protocol string

const (
	ProtocolOpenAICompatible Protocol = "openai-compatible"
	ProtocolAnthropicNative  Protocol = "anthropic-native"
)

// ComplexityLevel is one of five ordered request-complexity tiers.
type ComplexityLevel string

const (
	ComplexitySuperEasy ComplexityLevel = "super_easy"
	ComplexityEasy      ComplexityLevel = "easy"
	ComplexityMedium    ComplexityLevel = "medium"
	ComplexityHard      ComplexityLevel = "hard"
	ComplexitySuperHard ComplexityLevel = "super_hard"
)

// complexityRank orders the levels; unknown levels rank lowest.
var complexityRank = map[ComplexityLevel]int{
	ComplexitySuperEasy: 0,
	ComplexityEasy:      1,
	ComplexityMedium:    2,
	ComplexityHard:      3,
	ComplexitySuperHard: 4,
}

// Rank returns the ordinal position of the level (super_easy=0 .. super_hard=4).
func (l ComplexityLevel) Rank() int {
	return complexityRank[l]
}

// Valid reports whether the level is one of the five known tiers.
func (l ComplexityLevel) Valid() bool {
	_, ok := complexityRank[l]
	return ok
}

// EnsureMinComplexity bumps level up to floor when it ranks below it.
// It never downgrades.
func EnsureMinComplexity(level, floor ComplexityLevel) ComplexityLevel {
	if !floor.Valid() {
		return level
	}
	if !level.Valid() || level.Rank() < floor.Rank() {
		return floor
	}
	return level
}

// CapabilityTag is a named requirement profile matched against inbound requests.
// Tags are loaded in bulk by the configuration loader and are immutable afterwards.
type CapabilityTag struct {
	TagID                     string   `json:"tag_id" db:"tag_id"`
	Name                      string   `json:"name" db:"name"`
	Category                  string   `json:"category" db:"category"`
	Priority                  int      `json:"priority" db:"priority"`
	RequiredProtocol          Protocol `json:"required_protocol,omitempty" db:"required_protocol"`
	RequiredSkills            []string `json:"required_skills,omitempty"`
	RequiredModels            []string `json:"required_models,omitempty"`
	RequiresExtendedThinking  bool     `json:"requires_extended_thinking" db:"requires_extended_thinking"`
	RequiresCacheControl      bool     `json:"requires_cache_control" db:"requires_cache_control"`
	RequiresVision            bool     `json:"requires_vision" db:"requires_vision"`
}

// RoutingTarget identifies one upstream credential/model pair.
type RoutingTarget struct {
	ProviderKeyID string `json:"provider_key_id"`
	Model         string `json:"model"`
}

// LoadBalanceTarget is a routing target carrying relative probability mass.
// Weights need not sum to 100; selection normalizes by the total.
type LoadBalanceTarget struct {
	RoutingTarget
	Weight float64 `json:"weight"`
}

// FallbackModel is a routing target with a resolved protocol and optional
// feature overrides, used as one hop of a failover chain.
type FallbackModel struct {
	RoutingTarget
	Protocol Protocol       `json:"protocol"`
	Features *RouteFeatures `json:"features,omitempty"`
}

// FallbackChain is an ordered list of alternatives tried after the primary.
type FallbackChain struct {
	ChainID    string          `json:"chain_id"`
	Name       string          `json:"name"`
	Primary    FallbackModel   `json:"primary"`
	Fallbacks  []FallbackModel `json:"fallbacks"`
	MaxRetries int             `json:"max_retries"`
	RetryDelay time.Duration   `json:"retry_delay"`
}

// ModelConfig binds one complexity level to a vendor/model pair.
type ModelConfig struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
}

// ClassifierBinding points the complexity path at a classifier deployment.
type ClassifierBinding struct {
	Model   string `json:"model"`
	Vendor  string `json:"vendor"`
	BaseURL string `json:"base_url"`
}

// ComplexityRoutingConfig maps the five complexity levels onto models.
type ComplexityRoutingConfig struct {
	Enabled           bool                            `json:"enabled"`
	Levels            map[ComplexityLevel]ModelConfig `json:"levels"`
	ToolMinComplexity ComplexityLevel                 `json:"tool_min_complexity,omitempty"`
	Classifier        *ClassifierBinding              `json:"classifier,omitempty"`
}

// PrimaryModel anchors routing on the bot's configured default model so
// provider switching is minimized.
type PrimaryModel struct {
	Model         string `json:"model"`
	Vendor        string `json:"vendor"`
	ProviderKeyID string `json:"provider_key_id"`
}

// BotRoutingConfig is the per-bot routing configuration blob.
type BotRoutingConfig struct {
	RoutingEnabled    bool                     `json:"routing_enabled"`
	RoutingMode       string                   `json:"routing_mode"`
	FallbackChainID   string                   `json:"fallback_chain_id,omitempty"`
	CostStrategyID    string                   `json:"cost_strategy_id,omitempty"`
	ComplexityRouting *ComplexityRoutingConfig `json:"complexity_routing,omitempty"`
}

// BotRoutingContext carries everything the selector needs to know about a bot.
type BotRoutingContext struct {
	BotID           string            `json:"bot_id"`
	InstalledSkills []string          `json:"installed_skills"`
	PrimaryModel    *PrimaryModel     `json:"primary_model,omitempty"`
	RoutingConfig   *BotRoutingConfig `json:"routing_config,omitempty"`
}

// HasSkill reports whether the bot has the named skill installed.
func (c *BotRoutingContext) HasSkill(skill string) bool {
	for _, s := range c.InstalledSkills {
		if s == skill {
			return true
		}
	}
	return false
}

// RouteFeatures are per-decision feature flags forwarded to the outbound call.
type RouteFeatures struct {
	ExtendedThinking bool   `json:"extended_thinking,omitempty"`
	ThinkingBudget   int    `json:"thinking_budget,omitempty"`
	CacheControl     string `json:"cache_control,omitempty"`
}

// ComplexityAudit records how the complexity path arrived at its level.
type ComplexityAudit struct {
	Level                ComplexityLevel `json:"level"`
	LatencyMs            int64           `json:"latency_ms"`
	InheritedFromContext bool            `json:"inherited_from_context,omitempty"`
}

// RouteDecision is the engine's output. It is never persisted.
type RouteDecision struct {
	Protocol        Protocol         `json:"protocol"`
	Vendor          string           `json:"vendor"`
	Model           string           `json:"model"`
	Features        RouteFeatures    `json:"features"`
	FallbackChainID string           `json:"fallback_chain_id,omitempty"`
	CostStrategyID  string           `json:"cost_strategy_id,omitempty"`
	Complexity      *ComplexityAudit `json:"complexity,omitempty"`
	MatchedRule     string           `json:"matched_rule,omitempty"`
}

// ProviderKey is one upstream credential record from the provider-key catalog.
type ProviderKey struct {
	ID      string `json:"id" db:"id"`
	Vendor  string `json:"vendor" db:"vendor"`
	BaseURL string `json:"base_url" db:"base_url"`
	Enabled bool   `json:"enabled" db:"enabled"`
}

// ResolvedRoute is a failover target resolved against the provider-key catalog,
// handed to the wrapped operation on each attempt.
type ResolvedRoute struct {
	Target   RoutingTarget `json:"target"`
	Vendor   string        `json:"vendor"`
	BaseURL  string        `json:"base_url"`
	Protocol Protocol      `json:"protocol"`
}

// CatalogModel is one entry of the backing model catalog, carrying pricing
// and the reasoning score used for primary-model anchoring.
type CatalogModel struct {
	Model            string  `json:"model" db:"model"`
	Vendor           string  `json:"vendor" db:"vendor"`
	InputPerMillion  float64 `json:"input_per_million" db:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million" db:"output_per_million"`
	CachedPerMillion float64 `json:"cached_per_million" db:"cached_per_million"`
	ReasoningScore   *int    `json:"reasoning_score,omitempty" db:"reasoning_score"`
	SpeedScore       *int    `json:"speed_score,omitempty" db:"speed_score"`
	Enabled          bool    `json:"enabled" db:"enabled"`
}

// CostStrategy weights the axes of cost-aware model selection.
// Weights are relative; scoring normalizes by their sum.
type CostStrategy struct {
	StrategyID        string  `json:"strategy_id" db:"strategy_id"`
	Name              string  `json:"name" db:"name"`
	CostWeight        float64 `json:"cost_weight" db:"cost_weight"`
	PerformanceWeight float64 `json:"performance_weight" db:"performance_weight"`
	CapabilityWeight  float64 `json:"capability_weight" db:"capability_weight"`
	BudgetPerDay      float64 `json:"budget_per_day" db:"budget_per_day"`
}

// Well-known capability tag ids the parser recognizes intrinsically.
const (
	TagDeepReasoning = "deep-reasoning"
	TagCostOptimized = "cost-optimized"
	TagWebSearch     = "web-search"
	TagCodeExecution = "code-execution"
	TagVision        = "vision"
)
