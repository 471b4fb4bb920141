package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kestrelhq/botgate/internal/core/domain"
)

// CostEstimate is the priced breakdown of one request.
type CostEstimate struct {
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CachedTokens int     `json:"cached_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	CachedCost   float64 `json:"cached_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// ModelScore is one candidate's weighted standing under a cost strategy.
type ModelScore struct {
	Model            string  `json:"model"`
	CostScore        float64 `json:"cost_score"`
	PerformanceScore float64 `json:"performance_score"`
	CapabilityScore  float64 `json:"capability_score"`
	Total            float64 `json:"total"`
}

// BudgetStatus reports a bot's standing against its strategy's daily budget.
type BudgetStatus struct {
	BotID    string  `json:"bot_id"`
	Budget   float64 `json:"budget"`
	Spent    float64 `json:"spent"`
	Exceeded bool    `json:"exceeded"`
}

// CostService resolves model pricing, prices requests from token counts,
// tracks per-bot spend against budget thresholds and scores candidates under
// a weighted cost/performance/capability strategy.
type CostService struct {
	loader *LoaderService
	scores *ScoreService

	mu    sync.Mutex
	spend map[string]float64
}

func NewCostService(loader *LoaderService, scores *ScoreService) *CostService {
	return &CostService{
		loader: loader,
		scores: scores,
		spend:  make(map[string]float64),
	}
}

// EstimateCost prices a request from its token counts using loaded pricing.
func (c *CostService) EstimateCost(model string, inputTokens, outputTokens, cachedTokens int) (*CostEstimate, error) {
	pricing, ok := c.loader.GetModelPricing(model)
	if !ok {
		return nil, domain.NotFoundError(fmt.Sprintf("no pricing loaded for model %q", model))
	}

	est := &CostEstimate{
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CachedTokens: cachedTokens,
		InputCost:    float64(inputTokens) / 1e6 * pricing.InputPerMillion,
		OutputCost:   float64(outputTokens) / 1e6 * pricing.OutputPerMillion,
		CachedCost:   float64(cachedTokens) / 1e6 * pricing.CachedPerMillion,
	}
	est.TotalCost = est.InputCost + est.OutputCost + est.CachedCost
	return est, nil
}

// RecordSpend accumulates a bot's spend. Process-local; the durable ledger
// lives with the billing sibling service.
func (c *CostService) RecordSpend(botID string, amount float64) {
	c.mu.Lock()
	c.spend[botID] += amount
	c.mu.Unlock()
}

// CheckBudget compares a bot's accumulated spend against the strategy's
// daily budget. A zero budget means unlimited.
func (c *CostService) CheckBudget(botID, strategyID string) (*BudgetStatus, error) {
	strategy, ok := c.loader.GetCostStrategy(strategyID)
	if !ok {
		return nil, domain.NotFoundError(fmt.Sprintf("cost strategy %q not loaded", strategyID))
	}

	c.mu.Lock()
	spent := c.spend[botID]
	c.mu.Unlock()

	return &BudgetStatus{
		BotID:    botID,
		Budget:   strategy.BudgetPerDay,
		Spent:    spent,
		Exceeded: strategy.BudgetPerDay > 0 && spent >= strategy.BudgetPerDay,
	}, nil
}

// SelectModel ranks candidates under the named strategy, best first.
// Cost scores are relative: the cheapest candidate scores 100 and the rest
// scale down by price ratio.
func (c *CostService) SelectModel(ctx context.Context, strategyID string, candidates []string) ([]ModelScore, error) {
	strategy, ok := c.loader.GetCostStrategy(strategyID)
	if !ok {
		return nil, domain.NotFoundError(fmt.Sprintf("cost strategy %q not loaded", strategyID))
	}
	if len(candidates) == 0 {
		return nil, domain.BadRequestError("no candidate models supplied")
	}

	weightSum := strategy.CostWeight + strategy.PerformanceWeight + strategy.CapabilityWeight
	if weightSum <= 0 {
		return nil, domain.BadRequestError(fmt.Sprintf("cost strategy %q has no positive weights", strategyID))
	}

	blended := make(map[string]float64, len(candidates))
	minCost := 0.0
	for _, model := range candidates {
		if pricing, ok := c.loader.GetModelPricing(model); ok {
			cost := (pricing.InputPerMillion + pricing.OutputPerMillion) / 2
			blended[model] = cost
			if cost > 0 && (minCost == 0 || cost < minCost) {
				minCost = cost
			}
		}
	}

	scores := make([]ModelScore, 0, len(candidates))
	for _, model := range candidates {
		ms := ModelScore{Model: model}

		switch cost, ok := blended[model]; {
		case !ok:
			// Unpriced models score the neutral midpoint rather than
			// dropping out of the ranking.
			ms.CostScore = 50
		case cost <= 0 || minCost == 0:
			ms.CostScore = 100
		default:
			ms.CostScore = 100 * minCost / cost
		}

		ms.PerformanceScore = defaultCapabilityScore
		if pricing, ok := c.loader.GetModelPricing(model); ok && pricing.SpeedScore != nil {
			ms.PerformanceScore = float64(*pricing.SpeedScore)
		}

		ms.CapabilityScore = float64(c.scores.GetModelCapabilityScore(ctx, model))

		ms.Total = (strategy.CostWeight*ms.CostScore +
			strategy.PerformanceWeight*ms.PerformanceScore +
			strategy.CapabilityWeight*ms.CapabilityScore) / weightSum

		scores = append(scores, ms)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})
	return scores, nil
}
