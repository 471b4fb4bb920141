package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/logger"
	"github.com/kestrelhq/botgate/pkg/api"
	"go.uber.org/zap"
)

const (
	// defaultModel serves requests with no requirements, no primary model
	// and no requested model.
	defaultModel          = "gpt-4o"
	defaultAnthropicModel = "claude-sonnet-4-5"

	complexityConfigTTL     = 5 * time.Minute
	complexityConfigEntries = 256

	// DefaultComplexityConfigID is the loader key used when a bot carries no
	// complexity config of its own.
	DefaultComplexityConfigID = "default"

	classifierContextLimit = 200
)

// minScoreByLevel is the primary-model anchoring bar: when the bot's primary
// model scores at or above the bar for the classified level, the decision
// keeps the primary model instead of switching providers.
var minScoreByLevel = map[domain.ComplexityLevel]int{
	domain.ComplexitySuperEasy: 0,
	domain.ComplexityEasy:      40,
	domain.ComplexityMedium:    60,
	domain.ComplexityHard:      80,
	domain.ComplexitySuperHard: 90,
}

// SelectorService produces route decisions from parsed requirements and bot
// context, optionally anchored by the complexity classifier.
type SelectorService struct {
	parser     *ParserService
	scores     *ScoreService
	classifier ports.ComplexityClassifier

	complexityConfigs ports.ComplexityConfigRepository
	configCache       *expirable.LRU[string, *domain.ComplexityRoutingConfig]
}

func NewSelectorService(
	parser *ParserService,
	scores *ScoreService,
	classifier ports.ComplexityClassifier,
	complexityConfigs ports.ComplexityConfigRepository,
) *SelectorService {
	return &SelectorService{
		parser:            parser,
		scores:            scores,
		classifier:        classifier,
		complexityConfigs: complexityConfigs,
		configCache:       expirable.NewLRU[string, *domain.ComplexityRoutingConfig](complexityConfigEntries, nil, complexityConfigTTL),
	}
}

// SelectRoute is the capability-only selection mode.
func (s *SelectorService) SelectRoute(requirements []domain.CapabilityTag, botCtx *domain.BotRoutingContext, requestedModel string) *domain.RouteDecision {
	decision := s.baseDecision(requirements, botCtx, requestedModel)
	s.applyCapabilityOverrides(decision, requirements, botCtx)
	spliceRoutingConfig(decision, botCtx)
	return decision
}

// SelectRouteWithComplexity is the complexity-anchored mode. It may call the
// external classifier; any classifier problem falls back to capability-only
// selection rather than failing the request.
func (s *SelectorService) SelectRouteWithComplexity(ctx context.Context, req *api.ChatRequest, botCtx *domain.BotRoutingContext, routingHint string) (*domain.RouteDecision, error) {
	requirements := s.parser.ParseRequirements(req, routingHint)

	cfg := s.resolveComplexityConfig(ctx, botCtx)
	if cfg == nil || !cfg.Enabled || cfg.Classifier == nil || s.classifier == nil {
		return s.SelectRoute(requirements, botCtx, req.Model), nil
	}

	message, msgContext, found := extractClassifierContext(req.Messages)
	if !found {
		return s.SelectRoute(requirements, botCtx, req.Model), nil
	}

	result, err := s.classifier.Classify(ctx, ports.ClassifyInput{
		Message:  message,
		Context:  msgContext,
		HasTools: req.HasTools(),
	})
	if err != nil || result == nil {
		logger.Warn("complexity classifier unavailable, using capability-only routing",
			zap.String("bot_id", botCtx.BotID), zap.Error(err))
		return s.SelectRoute(requirements, botCtx, req.Model), nil
	}

	level := result.Level
	if req.HasTools() && cfg.ToolMinComplexity != "" {
		level = domain.EnsureMinComplexity(level, cfg.ToolMinComplexity)
	}

	modelCfg, ok := cfg.Levels[level]
	if !ok {
		logger.Warn("no model configured for complexity level",
			zap.String("bot_id", botCtx.BotID), zap.String("level", string(level)))
		return s.SelectRoute(requirements, botCtx, req.Model), nil
	}

	decision := &domain.RouteDecision{
		Vendor:   modelCfg.Vendor,
		Model:    modelCfg.Model,
		Protocol: ProtocolForVendor(modelCfg.Vendor),
	}

	// Primary-model anchoring: keep the bot's configured model when it is
	// capable enough for the classified level.
	if pm := botCtx.PrimaryModel; pm != nil {
		score := s.scores.GetModelCapabilityScore(ctx, pm.Model)
		if score >= minScoreByLevel[level] {
			decision.Vendor = pm.Vendor
			decision.Model = pm.Model
			decision.Protocol = ProtocolForVendor(pm.Vendor)
		}
	}

	// A hard request that also needs extended thinking still ends on
	// anthropic-native, whichever path picked the model.
	s.applyCapabilityOverrides(decision, requirements, botCtx)
	spliceRoutingConfig(decision, botCtx)

	decision.Complexity = &domain.ComplexityAudit{
		Level:                level,
		LatencyMs:            result.LatencyMs,
		InheritedFromContext: result.InheritedFromContext,
	}

	return decision, nil
}

// baseDecision picks the anchor model before any tag overrides are applied.
func (s *SelectorService) baseDecision(requirements []domain.CapabilityTag, botCtx *domain.BotRoutingContext, requestedModel string) *domain.RouteDecision {
	if len(requirements) > 0 {
		primary := requirements[0]
		if len(primary.RequiredModels) > 0 {
			model := primary.RequiredModels[0]
			vendor := InferVendor(model)
			return &domain.RouteDecision{
				Protocol:    ProtocolForVendor(vendor),
				Vendor:      vendor,
				Model:       model,
				MatchedRule: primary.TagID,
			}
		}
		d := s.anchorDecision(botCtx, requestedModel)
		d.MatchedRule = primary.TagID
		if primary.RequiredProtocol != "" {
			d.Protocol = primary.RequiredProtocol
			if primary.RequiredProtocol == domain.ProtocolAnthropicNative {
				d.Vendor = "anthropic"
			}
		}
		return d
	}
	return s.anchorDecision(botCtx, requestedModel)
}

// anchorDecision falls back through primary model, requested model and the
// hard-coded default.
func (s *SelectorService) anchorDecision(botCtx *domain.BotRoutingContext, requestedModel string) *domain.RouteDecision {
	if pm := botCtx.PrimaryModel; pm != nil {
		return &domain.RouteDecision{
			Protocol: ProtocolForVendor(pm.Vendor),
			Vendor:   pm.Vendor,
			Model:    pm.Model,
		}
	}
	model := requestedModel
	if model == "" {
		model = defaultModel
	}
	vendor := InferVendor(model)
	return &domain.RouteDecision{
		Protocol: ProtocolForVendor(vendor),
		Vendor:   vendor,
		Model:    model,
	}
}

// applyCapabilityOverrides forces the anthropic-native protocol for extended
// thinking and cache control, and logs advisory warnings for missing skills.
func (s *SelectorService) applyCapabilityOverrides(decision *domain.RouteDecision, requirements []domain.CapabilityTag, botCtx *domain.BotRoutingContext) {
	for _, tag := range requirements {
		if tag.RequiresExtendedThinking || tag.RequiresCacheControl {
			decision.Protocol = domain.ProtocolAnthropicNative
			decision.Vendor = "anthropic"
			if InferVendor(decision.Model) != "anthropic" {
				if len(tag.RequiredModels) > 0 {
					decision.Model = tag.RequiredModels[0]
				} else {
					decision.Model = defaultAnthropicModel
				}
			}
			if tag.RequiresExtendedThinking {
				decision.Features.ExtendedThinking = true
			}
			if tag.RequiresCacheControl {
				decision.Features.CacheControl = "ephemeral"
			}
		}

		// Missing skills are advisory: the product degrades capability
		// rather than rejecting the request.
		for _, skill := range tag.RequiredSkills {
			if !botCtx.HasSkill(skill) {
				logger.Warn("required skill not installed for bot",
					zap.String("bot_id", botCtx.BotID),
					zap.String("tag_id", tag.TagID),
					zap.String("skill", skill))
			}
		}
	}
}

func spliceRoutingConfig(decision *domain.RouteDecision, botCtx *domain.BotRoutingContext) {
	if rc := botCtx.RoutingConfig; rc != nil {
		decision.FallbackChainID = rc.FallbackChainID
		decision.CostStrategyID = rc.CostStrategyID
	}
}

// resolveComplexityConfig prefers the bot's own config, then the cached
// "default" config from the configuration loader.
func (s *SelectorService) resolveComplexityConfig(ctx context.Context, botCtx *domain.BotRoutingContext) *domain.ComplexityRoutingConfig {
	if rc := botCtx.RoutingConfig; rc != nil && rc.ComplexityRouting != nil {
		return rc.ComplexityRouting
	}
	if s.complexityConfigs == nil {
		return nil
	}

	if cfg, ok := s.configCache.Get(DefaultComplexityConfigID); ok {
		return cfg
	}

	cfg, err := s.complexityConfigs.GetByID(ctx, DefaultComplexityConfigID)
	if err != nil {
		logger.Warn("failed to load default complexity routing config", zap.Error(err))
		return nil
	}
	if cfg != nil {
		s.configCache.Add(DefaultComplexityConfigID, cfg)
	}
	return cfg
}

// InvalidateComplexityConfig drops a cached config so the next request
// reloads it, used after admin refreshes.
func (s *SelectorService) InvalidateComplexityConfig(configID string) {
	s.configCache.Remove(configID)
}

// extractClassifierContext walks messages newest to oldest and captures the
// latest user message plus up to 200 chars of the nearest preceding non-user
// message. Stops as soon as both are found.
func extractClassifierContext(messages []api.ChatMessage) (message, context string, found bool) {
	userIdx := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			message = messages[i].Content.PlainText()
			userIdx = i
			found = true
			break
		}
	}
	if !found {
		return "", "", false
	}

	for i := userIdx - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			context = truncateContext(messages[i].Content.PlainText())
			break
		}
	}
	return message, context, true
}

// truncateContext caps the context at the byte limit without splitting a
// multi-byte rune, so the classifier never receives invalid UTF-8.
func truncateContext(s string) string {
	if len(s) <= classifierContextLimit {
		return s
	}
	cut := classifierContextLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
