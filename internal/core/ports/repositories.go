package ports

import (
	"context"

	"github.com/kestrelhq/botgate/internal/core/domain"
)

// CapabilityTagRepository loads the capability tag catalog.
type CapabilityTagRepository interface {
	ListEnabled(ctx context.Context) ([]domain.CapabilityTag, error)
	GetByID(ctx context.Context, tagID string) (*domain.CapabilityTag, error)
}

// FallbackChainRepository loads ordered failover chains.
type FallbackChainRepository interface {
	List(ctx context.Context) ([]domain.FallbackChain, error)
	GetByID(ctx context.Context, chainID string) (*domain.FallbackChain, error)
}

// CostStrategyRepository loads weighted cost/performance/capability strategies.
type CostStrategyRepository interface {
	List(ctx context.Context) ([]domain.CostStrategy, error)
	GetByID(ctx context.Context, strategyID string) (*domain.CostStrategy, error)
}

// ModelCatalogRepository is the backing model catalog, source of pricing and
// reasoning scores.
type ModelCatalogRepository interface {
	List(ctx context.Context) ([]domain.CatalogModel, error)
	GetByModel(ctx context.Context, model string) (*domain.CatalogModel, error)
}

// ProviderKeyRepository resolves provider-key ids to full credential records.
type ProviderKeyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ProviderKey, error)
	ListByVendor(ctx context.Context, vendor string) ([]domain.ProviderKey, error)
}

// RoutingRuleRepository loads per-bot routing rules, decoded into the
// RoutingRule tagged union at the boundary.
type RoutingRuleRepository interface {
	GetByID(ctx context.Context, ruleID string) (*domain.RoutingRule, error)
	ListByBot(ctx context.Context, botID string) ([]domain.RoutingRule, error)
}

// BotContextRepository resolves the per-bot routing context (installed
// skills, primary model, routing config).
type BotContextRepository interface {
	GetRoutingContext(ctx context.Context, botID string) (*domain.BotRoutingContext, error)
}

// ComplexityConfigRepository loads named complexity-routing configs
// ("default" is the key the selector falls back to).
type ComplexityConfigRepository interface {
	GetByID(ctx context.Context, configID string) (*domain.ComplexityRoutingConfig, error)
}
