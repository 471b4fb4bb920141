package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/logger"
	"go.uber.org/zap"
)

// lbState is the per-routing-rule round-robin cursor. Process-local; position
// resets to zero on restart, which is acceptable.
type lbState struct {
	currentIndex int
	lastUpdated  time.Time
}

// LoadBalanceService spreads selection across a rule's targets. The per-rule
// counter is shared by overlapping requests; a slightly skewed rotation under
// concurrency is tolerated, but the map itself is lock-protected.
type LoadBalanceService struct {
	mu    sync.Mutex
	state map[string]*lbState
	randf func() float64
}

func NewLoadBalanceService() *LoadBalanceService {
	return &LoadBalanceService{
		state: make(map[string]*lbState),
		randf: rand.Float64,
	}
}

// SelectTarget picks one target for the routing rule. Empty targets yield nil
// and the caller must treat the request as unroutable.
func (s *LoadBalanceService) SelectTarget(routingID string, strategy domain.LoadBalanceStrategy, targets []domain.LoadBalanceTarget) *domain.LoadBalanceTarget {
	if len(targets) == 0 {
		return nil
	}

	switch strategy {
	case domain.StrategyWeighted:
		return s.selectWeighted(targets)
	case domain.StrategyLeastLatency:
		// No latency telemetry feeds this engine; least_latency degrades
		// to round-robin. Documented limitation.
		logger.Debug("least_latency strategy degrading to round_robin",
			zap.String("routing_id", routingID))
		fallthrough
	case domain.StrategyRoundRobin:
		return s.selectRoundRobin(routingID, targets)
	default:
		return s.selectRoundRobin(routingID, targets)
	}
}

func (s *LoadBalanceService) selectRoundRobin(routingID string, targets []domain.LoadBalanceTarget) *domain.LoadBalanceTarget {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.state[routingID]
	if !ok {
		st = &lbState{}
		s.state[routingID] = st
	}

	idx := st.currentIndex % len(targets)
	st.currentIndex = (idx + 1) % len(targets)
	st.lastUpdated = time.Now()

	return &targets[idx]
}

func (s *LoadBalanceService) selectWeighted(targets []domain.LoadBalanceTarget) *domain.LoadBalanceTarget {
	var total float64
	for _, t := range targets {
		total += t.Weight
	}
	if total <= 0 {
		// Degenerate weights: treat every target as equally likely.
		idx := int(s.randf() * float64(len(targets)))
		if idx >= len(targets) {
			idx = len(targets) - 1
		}
		return &targets[idx]
	}

	remainder := s.randf() * total
	for i := range targets {
		remainder -= targets[i].Weight
		if remainder <= 0 {
			return &targets[i]
		}
	}
	// Floating rounding overran the walk; the last target is the
	// deterministic fallback.
	return &targets[len(targets)-1]
}

// ClearState resets the counter for one routing rule, or all of them when
// routingID is empty. Used by the admin reset endpoint and test isolation.
func (s *LoadBalanceService) ClearState(routingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if routingID == "" {
		s.state = make(map[string]*lbState)
		return
	}
	delete(s.state, routingID)
}
