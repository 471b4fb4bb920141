package model

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kestrelhq/botgate/internal/core/domain"
)

// CapabilityTagRow is the stored form of a capability tag. List-valued
// columns are JSON arrays.
type CapabilityTagRow struct {
	TagID                    string         `db:"tag_id" json:"tag_id"`
	Name                     string         `db:"name" json:"name"`
	Category                 string         `db:"category" json:"category"`
	Priority                 int            `db:"priority" json:"priority"`
	RequiredProtocol         sql.NullString `db:"required_protocol" json:"required_protocol,omitempty"`
	RequiredSkillsJSON       sql.NullString `db:"required_skills_json" json:"-"`
	RequiredModelsJSON       sql.NullString `db:"required_models_json" json:"-"`
	RequiresExtendedThinking bool           `db:"requires_extended_thinking" json:"requires_extended_thinking"`
	RequiresCacheControl     bool           `db:"requires_cache_control" json:"requires_cache_control"`
	RequiresVision           bool           `db:"requires_vision" json:"requires_vision"`
	IsEnabled                bool           `db:"is_enabled" json:"is_enabled"`
	CreatedAt                time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time      `db:"updated_at" json:"updated_at"`
}

// ToDomain converts the row, decoding the JSON list columns.
func (r *CapabilityTagRow) ToDomain() (domain.CapabilityTag, error) {
	tag := domain.CapabilityTag{
		TagID:                    r.TagID,
		Name:                     r.Name,
		Category:                 r.Category,
		Priority:                 r.Priority,
		RequiresExtendedThinking: r.RequiresExtendedThinking,
		RequiresCacheControl:     r.RequiresCacheControl,
		RequiresVision:           r.RequiresVision,
	}
	if r.RequiredProtocol.Valid {
		tag.RequiredProtocol = domain.Protocol(r.RequiredProtocol.String)
	}
	if err := decodeJSONList(r.RequiredSkillsJSON, &tag.RequiredSkills); err != nil {
		return tag, fmt.Errorf("tag %s required_skills: %w", r.TagID, err)
	}
	if err := decodeJSONList(r.RequiredModelsJSON, &tag.RequiredModels); err != nil {
		return tag, fmt.Errorf("tag %s required_models: %w", r.TagID, err)
	}
	return tag, nil
}

// FallbackChainRow stores a chain with its ordered targets as a JSON blob.
type FallbackChainRow struct {
	ChainID      string    `db:"chain_id" json:"chain_id"`
	Name         string    `db:"name" json:"name"`
	PrimaryJSON  string    `db:"primary_json" json:"-"`
	ChainJSON    string    `db:"chain_json" json:"-"`
	MaxRetries   int       `db:"max_retries" json:"max_retries"`
	RetryDelayMs int       `db:"retry_delay_ms" json:"retry_delay_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (r *FallbackChainRow) ToDomain() (domain.FallbackChain, error) {
	chain := domain.FallbackChain{
		ChainID:    r.ChainID,
		Name:       r.Name,
		MaxRetries: r.MaxRetries,
		RetryDelay: time.Duration(r.RetryDelayMs) * time.Millisecond,
	}
	if err := json.Unmarshal([]byte(r.PrimaryJSON), &chain.Primary); err != nil {
		return chain, fmt.Errorf("chain %s primary: %w", r.ChainID, err)
	}
	if err := json.Unmarshal([]byte(r.ChainJSON), &chain.Fallbacks); err != nil {
		return chain, fmt.Errorf("chain %s fallbacks: %w", r.ChainID, err)
	}
	return chain, nil
}

// CostStrategyRow maps one cost strategy.
type CostStrategyRow struct {
	StrategyID        string    `db:"strategy_id" json:"strategy_id"`
	Name              string    `db:"name" json:"name"`
	CostWeight        float64   `db:"cost_weight" json:"cost_weight"`
	PerformanceWeight float64   `db:"performance_weight" json:"performance_weight"`
	CapabilityWeight  float64   `db:"capability_weight" json:"capability_weight"`
	BudgetPerDay      float64   `db:"budget_per_day" json:"budget_per_day"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (r *CostStrategyRow) ToDomain() domain.CostStrategy {
	return domain.CostStrategy{
		StrategyID:        r.StrategyID,
		Name:              r.Name,
		CostWeight:        r.CostWeight,
		PerformanceWeight: r.PerformanceWeight,
		CapabilityWeight:  r.CapabilityWeight,
		BudgetPerDay:      r.BudgetPerDay,
	}
}

// CatalogModelRow maps one model catalog entry with per-million pricing.
type CatalogModelRow struct {
	Model            string        `db:"model" json:"model"`
	Vendor           string        `db:"vendor" json:"vendor"`
	InputPerMillion  float64       `db:"input_per_million" json:"input_per_million"`
	OutputPerMillion float64       `db:"output_per_million" json:"output_per_million"`
	CachedPerMillion float64       `db:"cached_per_million" json:"cached_per_million"`
	ReasoningScore   sql.NullInt64 `db:"reasoning_score" json:"reasoning_score,omitempty"`
	SpeedScore       sql.NullInt64 `db:"speed_score" json:"speed_score,omitempty"`
	IsEnabled        bool          `db:"is_enabled" json:"is_enabled"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

func (r *CatalogModelRow) ToDomain() domain.CatalogModel {
	m := domain.CatalogModel{
		Model:            r.Model,
		Vendor:           r.Vendor,
		InputPerMillion:  r.InputPerMillion,
		OutputPerMillion: r.OutputPerMillion,
		CachedPerMillion: r.CachedPerMillion,
		Enabled:          r.IsEnabled,
	}
	if r.ReasoningScore.Valid {
		v := int(r.ReasoningScore.Int64)
		m.ReasoningScore = &v
	}
	if r.SpeedScore.Valid {
		v := int(r.SpeedScore.Int64)
		m.SpeedScore = &v
	}
	return m
}

// ProviderKeyRow maps one upstream credential record. The encrypted key
// material itself never leaves the store.
type ProviderKeyRow struct {
	ID        string    `db:"id" json:"id"`
	Vendor    string    `db:"vendor" json:"vendor"`
	BaseURL   string    `db:"base_url" json:"base_url"`
	APIKeyEnc string    `db:"api_key_enc" json:"-"`
	IsEnabled bool      `db:"is_enabled" json:"is_enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (r *ProviderKeyRow) ToDomain() domain.ProviderKey {
	return domain.ProviderKey{
		ID:      r.ID,
		Vendor:  r.Vendor,
		BaseURL: r.BaseURL,
		Enabled: r.IsEnabled,
	}
}

// RoutingRuleRow stores the rule type plus an opaque config blob, decoded
// into the RoutingRule union at the boundary.
type RoutingRuleRow struct {
	RuleID     string    `db:"rule_id" json:"rule_id"`
	BotID      string    `db:"bot_id" json:"bot_id"`
	RuleType   string    `db:"rule_type" json:"rule_type"`
	ConfigJSON string    `db:"config_json" json:"-"`
	IsEnabled  bool      `db:"is_enabled" json:"is_enabled"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (r *RoutingRuleRow) ToDomain() (*domain.RoutingRule, error) {
	return domain.DecodeRoutingRule(r.RuleID, r.BotID, domain.RoutingRuleType(r.RuleType), []byte(r.ConfigJSON))
}

// BotRow stores a bot's routing context: skills and routing config as JSON,
// the primary model flattened into columns.
type BotRow struct {
	BotID                string         `db:"bot_id" json:"bot_id"`
	Name                 string         `db:"name" json:"name"`
	SkillsJSON           sql.NullString `db:"skills_json" json:"-"`
	PrimaryModel         sql.NullString `db:"primary_model" json:"primary_model,omitempty"`
	PrimaryVendor        sql.NullString `db:"primary_vendor" json:"primary_vendor,omitempty"`
	PrimaryProviderKeyID sql.NullString `db:"primary_provider_key_id" json:"primary_provider_key_id,omitempty"`
	RoutingConfigJSON    sql.NullString `db:"routing_config_json" json:"-"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

func (r *BotRow) ToDomain() (*domain.BotRoutingContext, error) {
	botCtx := &domain.BotRoutingContext{BotID: r.BotID}
	if err := decodeJSONList(r.SkillsJSON, &botCtx.InstalledSkills); err != nil {
		return nil, fmt.Errorf("bot %s skills: %w", r.BotID, err)
	}
	if r.PrimaryModel.Valid && r.PrimaryModel.String != "" {
		botCtx.PrimaryModel = &domain.PrimaryModel{
			Model:         r.PrimaryModel.String,
			Vendor:        r.PrimaryVendor.String,
			ProviderKeyID: r.PrimaryProviderKeyID.String,
		}
	}
	if r.RoutingConfigJSON.Valid && r.RoutingConfigJSON.String != "" {
		var rc domain.BotRoutingConfig
		if err := json.Unmarshal([]byte(r.RoutingConfigJSON.String), &rc); err != nil {
			return nil, fmt.Errorf("bot %s routing config: %w", r.BotID, err)
		}
		botCtx.RoutingConfig = &rc
	}
	return botCtx, nil
}

// ComplexityConfigRow stores one named complexity-routing config as JSON.
type ComplexityConfigRow struct {
	ConfigID   string    `db:"config_id" json:"config_id"`
	ConfigJSON string    `db:"config_json" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (r *ComplexityConfigRow) ToDomain() (*domain.ComplexityRoutingConfig, error) {
	var cfg domain.ComplexityRoutingConfig
	if err := json.Unmarshal([]byte(r.ConfigJSON), &cfg); err != nil {
		return nil, fmt.Errorf("complexity config %s: %w", r.ConfigID, err)
	}
	return &cfg, nil
}

func decodeJSONList(col sql.NullString, dest *[]string) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dest)
}
