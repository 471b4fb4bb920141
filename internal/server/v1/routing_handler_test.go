package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/services"
	"github.com/kestrelhq/botgate/internal/server/middleware"
	v1 "github.com/kestrelhq/botgate/internal/server/v1"
	"github.com/kestrelhq/botgate/internal/server/validator"
	"github.com/kestrelhq/botgate/internal/store/cache"
	"github.com/kestrelhq/botgate/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBots is a mock implementation of ports.BotContextRepository
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

// MockRules is a mock implementation of ports.RoutingRuleRepository
type MockRules struct {
	mock.Mock
}

func (m *MockRules) GetByID(ctx context.Context, ruleID string) (*domain.RoutingRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoutingRule), args.Error(1)
}

func (m *MockRules) ListByBot(ctx context.Context, botID string) ([]domain.RoutingRule, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoutingRule), args.Error(1)
}

func setupRoutingEngine(bots *MockBots, rules *MockRules) *gin.Engine {
	validator.InitValidator()

	registry := services.NewTagRegistry()
	registry.Replace([]domain.CapabilityTag{
		{TagID: domain.TagDeepReasoning, Priority: 100, RequiresExtendedThinking: true, RequiredProtocol: domain.ProtocolAnthropicNative},
	})
	parser := services.NewParserService(registry)
	scores := services.NewScoreService(nil)
	selector := services.NewSelectorService(parser, scores, nil, nil)
	ruleSvc := services.NewRuleService(rules, services.NewLoadBalanceService())

	h := v1.NewRoutingHandler(parser, selector, ruleSvc, bots, cache.NewMemoryCache())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	engine.POST("/v1/route", h.Route)
	return engine
}

func postRoute(t *testing.T, engine *gin.Engine, body api.RouteRequest) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestRoute_CapabilityDecision(t *testing.T) {
	bots := new(MockBots)
	bots.On("GetRoutingContext", mock.Anything, "bot-1").Return(&domain.BotRoutingContext{
		BotID:        "bot-1",
		PrimaryModel: &domain.PrimaryModel{Model: "gpt-4o", Vendor: "openai", ProviderKeyID: "k1"},
	}, nil)
	rules := new(MockRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{}, nil)

	engine := setupRoutingEngine(bots, rules)

	w := postRoute(t, engine, api.RouteRequest{
		BotID: "bot-1",
		Request: api.ChatRequest{
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "hi"}}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Decision domain.RouteDecision `json:"decision"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "gpt-4o", envelope.Data.Decision.Model)
	assert.Equal(t, domain.ProtocolOpenAICompatible, envelope.Data.Decision.Protocol)
}

func TestRoute_ThinkingForcesAnthropicNative(t *testing.T) {
	bots := new(MockBots)
	bots.On("GetRoutingContext", mock.Anything, "bot-1").Return(&domain.BotRoutingContext{
		BotID:        "bot-1",
		PrimaryModel: &domain.PrimaryModel{Model: "gpt-4o", Vendor: "openai"},
	}, nil)
	rules := new(MockRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{}, nil)

	engine := setupRoutingEngine(bots, rules)

	w := postRoute(t, engine, api.RouteRequest{
		BotID: "bot-1",
		Request: api.ChatRequest{
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "prove it"}}},
			Thinking: &api.Thinking{Type: "enabled"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Decision domain.RouteDecision `json:"decision"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, domain.ProtocolAnthropicNative, envelope.Data.Decision.Protocol)
	assert.True(t, envelope.Data.Decision.Features.ExtendedThinking)
}

func TestRoute_RuleTargetOverlay(t *testing.T) {
	bots := new(MockBots)
	bots.On("GetRoutingContext", mock.Anything, "bot-1").Return(&domain.BotRoutingContext{
		BotID:        "bot-1",
		PrimaryModel: &domain.PrimaryModel{Model: "gpt-4o", Vendor: "openai"},
	}, nil)
	rules := new(MockRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{
		{
			RuleID: "r1", BotID: "bot-1", Type: domain.RuleFunctionRoute,
			FunctionRoute: &domain.FunctionRouteConfig{
				Pattern: "^search_",
				Target:  domain.RoutingTarget{ProviderKeyID: "k9", Model: "claude-sonnet-4-5"},
			},
		},
	}, nil)

	engine := setupRoutingEngine(bots, rules)

	w := postRoute(t, engine, api.RouteRequest{
		BotID: "bot-1",
		Request: api.ChatRequest{
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "find it"}}},
			Tools:    []api.Tool{{Function: &api.ToolFunction{Name: "search_web"}}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			RuleID     string               `json:"rule_id"`
			RuleTarget domain.RoutingTarget `json:"rule_target"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "r1", envelope.Data.RuleID)
	assert.Equal(t, "claude-sonnet-4-5", envelope.Data.RuleTarget.Model)
}

func TestRoute_UnknownBot(t *testing.T) {
	bots := new(MockBots)
	bots.On("GetRoutingContext", mock.Anything, "ghost").Return(nil, nil)
	rules := new(MockRules)

	engine := setupRoutingEngine(bots, rules)

	w := postRoute(t, engine, api.RouteRequest{
		BotID: "ghost",
		Request: api.ChatRequest{
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "hi"}}},
		},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoute_MalformedBody(t *testing.T) {
	engine := setupRoutingEngine(new(MockBots), new(MockRules))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route", bytes.NewReader([]byte(`{"bot_id": 7}`)))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoute_BotContextIsCached(t *testing.T) {
	bots := new(MockBots)
	bots.On("GetRoutingContext", mock.Anything, "bot-1").Return(&domain.BotRoutingContext{
		BotID:        "bot-1",
		PrimaryModel: &domain.PrimaryModel{Model: "gpt-4o", Vendor: "openai"},
	}, nil).Once()
	rules := new(MockRules)
	rules.On("ListByBot", mock.Anything, "bot-1").Return([]domain.RoutingRule{}, nil)

	engine := setupRoutingEngine(bots, rules)

	body := api.RouteRequest{
		BotID: "bot-1",
		Request: api.ChatRequest{
			Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "hi"}}},
		},
	}

	require.Equal(t, http.StatusOK, postRoute(t, engine, body).Code)
	// Second hit is served from the bot context cache, not the repository.
	require.Equal(t, http.StatusOK, postRoute(t, engine, body).Code)
	bots.AssertExpectations(t)
}
