package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	catalogScoreTTL = 5 * time.Minute
	// Fallback scores come from a static table and expire faster so a
	// recovered catalog takes over within a minute.
	fallbackScoreTTL = time.Minute

	defaultCapabilityScore = 50
)

// fallbackScores is checked by case-insensitive substring match, in order.
// Frontier reasoning models score highest.
var fallbackScores = []struct {
	fragment string
	score    int
}{
	{"opus", 96},
	{"o1", 93},
	{"o3", 93},
	{"deepseek-r", 90},
	{"sonnet", 88},
	{"gpt-4", 85},
	{"gemini-1.5-pro", 85},
	{"gemini-pro", 82},
	{"qwen-max", 80},
	{"glm-4", 75},
	{"llama-3", 72},
	{"mistral-large", 72},
	{"haiku", 70},
	{"mini", 65},
	{"gpt-3.5", 62},
	{"flash", 60},
}

type scoreEntry struct {
	score  int
	expiry time.Time
}

// ScoreService resolves 0-100 capability scores per model, backed by the
// model catalog with a static table as the degraded path.
type ScoreService struct {
	catalog ports.ModelCatalogRepository

	mu    sync.RWMutex
	cache map[string]scoreEntry
	group singleflight.Group

	// now is swappable for TTL tests.
	now func() time.Time
}

func NewScoreService(catalog ports.ModelCatalogRepository) *ScoreService {
	return &ScoreService{
		catalog: catalog,
		cache:   make(map[string]scoreEntry),
		now:     time.Now,
	}
}

// GetModelCapabilityScore resolves the score for a model: fresh cache entry
// first, then the catalog's reasoning score, then the static table. Catalog
// misses still produce a usable score; they never fail the request.
func (s *ScoreService) GetModelCapabilityScore(ctx context.Context, model string) int {
	s.mu.RLock()
	entry, ok := s.cache[model]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.expiry) {
		return entry.score
	}

	// Concurrent lookups for the same model share one catalog round trip.
	v, _, _ := s.group.Do(model, func() (interface{}, error) {
		return s.resolve(ctx, model), nil
	})
	return v.(int)
}

func (s *ScoreService) resolve(ctx context.Context, model string) int {
	if s.catalog != nil {
		entry, err := s.catalog.GetByModel(ctx, model)
		if err == nil && entry != nil {
			score := defaultCapabilityScore
			if entry.ReasoningScore != nil {
				score = *entry.ReasoningScore
			}
			s.store(model, score, catalogScoreTTL)
			return score
		}
		if err != nil {
			logger.Warn("model catalog lookup failed, using fallback score",
				zap.String("model", model), zap.Error(err))
		}
	}

	score := fallbackScore(model)
	s.store(model, score, fallbackScoreTTL)
	return score
}

func (s *ScoreService) store(model string, score int, ttl time.Duration) {
	s.mu.Lock()
	s.cache[model] = scoreEntry{score: score, expiry: s.now().Add(ttl)}
	s.mu.Unlock()
}

// ClearCache drops all cached scores.
func (s *ScoreService) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]scoreEntry)
	s.mu.Unlock()
}

func fallbackScore(model string) int {
	m := strings.ToLower(model)
	for _, fs := range fallbackScores {
		if strings.Contains(m, fs.fragment) {
			return fs.score
		}
	}
	return defaultCapabilityScore
}
