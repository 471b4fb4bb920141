package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/logger"
	"go.uber.org/zap"
)

// DefaultRefreshInterval is how often configurations reload in the background.
const DefaultRefreshInterval = 5 * time.Minute

// Configuration categories reported by GetLoadStatus.
const (
	CategoryModelPricing   = "model_pricing"
	CategoryCapabilityTags = "capability_tags"
	CategoryFallbackChains = "fallback_chains"
	CategoryCostStrategies = "cost_strategies"
)

// CategoryStatus is the observable load state of one configuration category.
type CategoryStatus struct {
	Loaded     bool       `json:"loaded"`
	Count      int        `json:"count"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// LoaderService pulls routing configuration out of the backing store on
// startup and on a fixed interval. Categories load independently: one
// failing loader is logged and leaves its previous good state in place.
type LoaderService struct {
	catalog    ports.ModelCatalogRepository
	tags       ports.CapabilityTagRepository
	chains     ports.FallbackChainRepository
	strategies ports.CostStrategyRepository

	registry *TagRegistry

	// Published wholesale on every successful category load.
	pricing       atomic.Pointer[map[string]domain.CatalogModel]
	chainIndex    atomic.Pointer[map[string]domain.FallbackChain]
	strategyIndex atomic.Pointer[map[string]domain.CostStrategy]

	statusMu sync.RWMutex
	status   map[string]CategoryStatus

	interval time.Duration
	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewLoaderService(
	catalog ports.ModelCatalogRepository,
	tags ports.CapabilityTagRepository,
	chains ports.FallbackChainRepository,
	strategies ports.CostStrategyRepository,
	registry *TagRegistry,
	interval time.Duration,
) *LoaderService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	l := &LoaderService{
		catalog:    catalog,
		tags:       tags,
		chains:     chains,
		strategies: strategies,
		registry:   registry,
		interval:   interval,
		status: map[string]CategoryStatus{
			CategoryModelPricing:   {},
			CategoryCapabilityTags: {},
			CategoryFallbackChains: {},
			CategoryCostStrategies: {},
		},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	empty1 := map[string]domain.CatalogModel{}
	empty2 := map[string]domain.FallbackChain{}
	empty3 := map[string]domain.CostStrategy{}
	l.pricing.Store(&empty1)
	l.chainIndex.Store(&empty2)
	l.strategyIndex.Store(&empty3)
	return l
}

// LoadAllConfigurations runs the four category loaders concurrently. Each
// failure is caught and logged without blocking the others.
func (l *LoaderService) LoadAllConfigurations(ctx context.Context) {
	var wg sync.WaitGroup
	run := func(category string, fn func(context.Context) (int, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := fn(ctx)
			if err != nil {
				logger.Error("configuration load failed",
					zap.String("category", category), zap.Error(err))
				return
			}
			now := time.Now()
			l.statusMu.Lock()
			l.status[category] = CategoryStatus{Loaded: true, Count: count, LastUpdate: &now}
			l.statusMu.Unlock()
		}()
	}

	run(CategoryModelPricing, l.loadModelPricing)
	run(CategoryCapabilityTags, l.loadCapabilityTags)
	run(CategoryFallbackChains, l.loadFallbackChains)
	run(CategoryCostStrategies, l.loadCostStrategies)

	wg.Wait()
}

func (l *LoaderService) loadModelPricing(ctx context.Context) (int, error) {
	models, err := l.catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	index := make(map[string]domain.CatalogModel, len(models))
	for _, m := range models {
		index[m.Model] = m
	}
	l.pricing.Store(&index)
	return len(models), nil
}

func (l *LoaderService) loadCapabilityTags(ctx context.Context) (int, error) {
	tags, err := l.tags.ListEnabled(ctx)
	if err != nil {
		return 0, err
	}
	l.registry.Replace(tags)
	return len(tags), nil
}

func (l *LoaderService) loadFallbackChains(ctx context.Context) (int, error) {
	chains, err := l.chains.List(ctx)
	if err != nil {
		return 0, err
	}
	index := make(map[string]domain.FallbackChain, len(chains))
	for _, c := range chains {
		index[c.ChainID] = c
	}
	l.chainIndex.Store(&index)
	return len(chains), nil
}

func (l *LoaderService) loadCostStrategies(ctx context.Context) (int, error) {
	strategies, err := l.strategies.List(ctx)
	if err != nil {
		return 0, err
	}
	index := make(map[string]domain.CostStrategy, len(strategies))
	for _, s := range strategies {
		index[s.StrategyID] = s
	}
	l.strategyIndex.Store(&index)
	return len(strategies), nil
}

// GetLoadStatus reports per-category status. Safe to call at any time.
func (l *LoaderService) GetLoadStatus() map[string]CategoryStatus {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	out := make(map[string]CategoryStatus, len(l.status))
	for k, v := range l.status {
		out[k] = v
	}
	return out
}

// RefreshConfigurations triggers an immediate reload, used by the admin
// refresh endpoint.
func (l *LoaderService) RefreshConfigurations(ctx context.Context) {
	l.LoadAllConfigurations(ctx)
}

// StartPeriodicRefresh launches the background refresh ticker. It returns
// immediately; call StopPeriodicRefresh during shutdown.
func (l *LoaderService) StartPeriodicRefresh(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(l.doneCh)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.LoadAllConfigurations(ctx)
			case <-l.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StopPeriodicRefresh stops the ticker. Idempotent and safe during shutdown;
// the ticker never fires after this returns.
func (l *LoaderService) StopPeriodicRefresh() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		if l.started.Load() {
			<-l.doneCh
		}
	})
}

// GetFallbackChain returns one loaded chain by id.
func (l *LoaderService) GetFallbackChain(chainID string) (domain.FallbackChain, bool) {
	c, ok := (*l.chainIndex.Load())[chainID]
	return c, ok
}

// GetCostStrategy returns one loaded strategy by id.
func (l *LoaderService) GetCostStrategy(strategyID string) (domain.CostStrategy, bool) {
	s, ok := (*l.strategyIndex.Load())[strategyID]
	return s, ok
}

// GetModelPricing returns one loaded catalog entry by model name.
func (l *LoaderService) GetModelPricing(model string) (domain.CatalogModel, bool) {
	m, ok := (*l.pricing.Load())[model]
	return m, ok
}
