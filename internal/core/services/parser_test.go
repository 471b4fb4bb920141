package services

import (
	"testing"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/pkg/api"
	"github.com/stretchr/testify/assert"
)

func testRegistry() *TagRegistry {
	r := NewTagRegistry()
	r.Replace([]domain.CapabilityTag{
		{TagID: domain.TagDeepReasoning, Priority: 100, RequiresExtendedThinking: true, RequiredProtocol: domain.ProtocolAnthropicNative},
		{TagID: domain.TagCostOptimized, Priority: 80, RequiresCacheControl: true},
		{TagID: domain.TagWebSearch, Priority: 60, RequiredSkills: []string{"web-search"}},
		{TagID: domain.TagCodeExecution, Priority: 60, RequiredSkills: []string{"code-runner"}},
		{TagID: domain.TagVision, Priority: 50, RequiresVision: true},
	})
	return r
}

func userMsg(text string) api.ChatMessage {
	return api.ChatMessage{Role: "user", Content: api.Content{Text: text}}
}

func TestParseRequirements_NoMatch(t *testing.T) {
	p := NewParserService(testRegistry())

	req := &api.ChatRequest{Messages: []api.ChatMessage{userMsg("hello")}}
	assert.Empty(t, p.ParseRequirements(req, ""))
}

func TestParseRequirements_RoutingHint(t *testing.T) {
	p := NewParserService(testRegistry())

	req := &api.ChatRequest{Messages: []api.ChatMessage{userMsg("hi")}}
	tags := p.ParseRequirements(req, domain.TagVision)
	assert.Len(t, tags, 1)
	assert.Equal(t, domain.TagVision, tags[0].TagID)

	// A hint naming an unknown tag is ignored.
	assert.Empty(t, p.ParseRequirements(req, "does-not-exist"))
}

func TestParseRequirements_ExtendedThinking(t *testing.T) {
	p := NewParserService(testRegistry())

	req := &api.ChatRequest{
		Messages: []api.ChatMessage{userMsg("prove it")},
		Thinking: &api.Thinking{Type: "enabled", BudgetTokens: 2048},
	}
	tags := p.ParseRequirements(req, "")
	assert.Len(t, tags, 1)
	assert.Equal(t, domain.TagDeepReasoning, tags[0].TagID)

	// A disabled thinking block does not match.
	req.Thinking = &api.Thinking{Type: "disabled"}
	assert.Empty(t, p.ParseRequirements(req, ""))
}

func TestParseRequirements_CacheControl(t *testing.T) {
	p := NewParserService(testRegistry())

	// Message-level marker
	req := &api.ChatRequest{Messages: []api.ChatMessage{
		{Role: "user", Content: api.Content{Text: "x"}, CacheControl: &api.CacheControl{Type: "ephemeral"}},
	}}
	tags := p.ParseRequirements(req, "")
	assert.Len(t, tags, 1)
	assert.Equal(t, domain.TagCostOptimized, tags[0].TagID)

	// Part-level marker
	req = &api.ChatRequest{Messages: []api.ChatMessage{
		{Role: "user", Content: api.Content{Parts: []api.ContentPart{
			{Type: "text", Text: "big prompt", CacheControl: &api.CacheControl{Type: "ephemeral"}},
		}}},
	}}
	tags = p.ParseRequirements(req, "")
	assert.Len(t, tags, 1)
	assert.Equal(t, domain.TagCostOptimized, tags[0].TagID)
}

func TestParseRequirements_Tools(t *testing.T) {
	p := NewParserService(testRegistry())

	req := &api.ChatRequest{
		Messages: []api.ChatMessage{userMsg("search for this")},
		Tools: []api.Tool{
			{Type: "web_search"},
			{Function: &api.ToolFunction{Name: "code_runner"}},
		},
	}
	tags := p.ParseRequirements(req, "")
	assert.Len(t, tags, 2)
	assert.Equal(t, domain.TagWebSearch, tags[0].TagID)
	assert.Equal(t, domain.TagCodeExecution, tags[1].TagID)
}

func TestParseRequirements_ImageContent(t *testing.T) {
	p := NewParserService(testRegistry())

	req := &api.ChatRequest{Messages: []api.ChatMessage{
		{Role: "user", Content: api.Content{Parts: []api.ContentPart{
			{Type: "text", Text: "what is this"},
			{Type: "image_url", ImageURL: &api.ImageURL{URL: "https://example.com/cat.png"}},
		}}},
	}}
	tags := p.ParseRequirements(req, "")
	assert.Len(t, tags, 1)
	assert.Equal(t, domain.TagVision, tags[0].TagID)
}

func TestParseRequirements_PrioritySortAndDedupe(t *testing.T) {
	p := NewParserService(testRegistry())

	// Hint and thinking both resolve deep-reasoning; it must appear once.
	req := &api.ChatRequest{
		Messages: []api.ChatMessage{
			{Role: "user", Content: api.Content{Parts: []api.ContentPart{
				{Type: "image_url", ImageURL: &api.ImageURL{URL: "u"}},
			}}},
		},
		Thinking: &api.Thinking{Type: "enabled"},
		Tools:    []api.Tool{{Type: "web_search"}},
	}
	tags := p.ParseRequirements(req, domain.TagDeepReasoning)

	assert.Len(t, tags, 3)
	assert.Equal(t, domain.TagDeepReasoning, tags[0].TagID)
	assert.Equal(t, domain.TagWebSearch, tags[1].TagID)
	assert.Equal(t, domain.TagVision, tags[2].TagID)
}

func TestParseRequirements_TieKeepsDetectionOrder(t *testing.T) {
	p := NewParserService(testRegistry())

	// web-search and code-execution share priority 60; detection order wins.
	req := &api.ChatRequest{
		Messages: []api.ChatMessage{userMsg("run and search")},
		Tools: []api.Tool{
			{Name: "code_execution"},
			{Type: "web_search"},
		},
	}
	tags := p.ParseRequirements(req, "")
	assert.Len(t, tags, 2)
	assert.Equal(t, domain.TagCodeExecution, tags[0].TagID)
	assert.Equal(t, domain.TagWebSearch, tags[1].TagID)
}
