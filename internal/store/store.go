package store

import (
	"github.com/kestrelhq/botgate/internal/core/ports"
)

// Repository is the main contract for the data layer. Every routing
// configuration category the engine loads comes through here.
type Repository interface {
	CapabilityTags() ports.CapabilityTagRepository
	FallbackChains() ports.FallbackChainRepository
	CostStrategies() ports.CostStrategyRepository
	ModelCatalog() ports.ModelCatalogRepository
	ProviderKeys() ports.ProviderKeyRepository
	RoutingRules() ports.RoutingRuleRepository
	Bots() ports.BotContextRepository
	ComplexityConfigs() ports.ComplexityConfigRepository

	Close() error
}
