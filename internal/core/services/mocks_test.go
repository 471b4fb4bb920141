package services

import (
	"context"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockModelCatalog implements ports.ModelCatalogRepository for testing
type MockModelCatalog struct {
	mock.Mock
}

func (m *MockModelCatalog) List(ctx context.Context) ([]domain.CatalogModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogModel), args.Error(1)
}

func (m *MockModelCatalog) GetByModel(ctx context.Context, model string) (*domain.CatalogModel, error) {
	args := m.Called(ctx, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogModel), args.Error(1)
}

// MockCapabilityTags implements ports.CapabilityTagRepository
type MockCapabilityTags struct {
	mock.Mock
}

func (m *MockCapabilityTags) ListEnabled(ctx context.Context) ([]domain.CapabilityTag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CapabilityTag), args.Error(1)
}

func (m *MockCapabilityTags) GetByID(ctx context.Context, tagID string) (*domain.CapabilityTag, error) {
	args := m.Called(ctx, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapabilityTag), args.Error(1)
}

// MockFallbackChains implements ports.FallbackChainRepository
type MockFallbackChains struct {
	mock.Mock
}

func (m *MockFallbackChains) List(ctx context.Context) ([]domain.FallbackChain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FallbackChain), args.Error(1)
}

func (m *MockFallbackChains) GetByID(ctx context.Context, chainID string) (*domain.FallbackChain, error) {
	args := m.Called(ctx, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FallbackChain), args.Error(1)
}

// MockCostStrategies implements ports.CostStrategyRepository
type MockCostStrategies struct {
	mock.Mock
}

func (m *MockCostStrategies) List(ctx context.Context) ([]domain.CostStrategy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostStrategy), args.Error(1)
}

func (m *MockCostStrategies) GetByID(ctx context.Context, strategyID string) (*domain.CostStrategy, error) {
	args := m.Called(ctx, strategyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostStrategy), args.Error(1)
}

// MockProviderKeys implements ports.ProviderKeyRepository
type MockProviderKeys struct {
	mock.Mock
}

func (m *MockProviderKeys) GetByID(ctx context.Context, id string) (*domain.ProviderKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderKey), args.Error(1)
}

func (m *MockProviderKeys) ListByVendor(ctx context.Context, vendor string) ([]domain.ProviderKey, error) {
	args := m.Called(ctx, vendor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProviderKey), args.Error(1)
}

// MockRoutingRules implements ports.RoutingRuleRepository
type MockRoutingRules struct {
	mock.Mock
}

func (m *MockRoutingRules) GetByID(ctx context.Context, ruleID string) (*domain.RoutingRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoutingRule), args.Error(1)
}

func (m *MockRoutingRules) ListByBot(ctx context.Context, botID string) ([]domain.RoutingRule, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoutingRule), args.Error(1)
}

// MockBots implements ports.BotContextRepository
type MockBots struct {
	mock.Mock
}

func (m *MockBots) GetRoutingContext(ctx context.Context, botID string) (*domain.BotRoutingContext, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BotRoutingContext), args.Error(1)
}

// MockComplexityConfigs implements ports.ComplexityConfigRepository
type MockComplexityConfigs struct {
	mock.Mock
}

func (m *MockComplexityConfigs) GetByID(ctx context.Context, configID string) (*domain.ComplexityRoutingConfig, error) {
	args := m.Called(ctx, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplexityRoutingConfig), args.Error(1)
}

// MockClassifier implements ports.ComplexityClassifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, in ports.ClassifyInput) (*ports.ClassifyResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ClassifyResult), args.Error(1)
}
