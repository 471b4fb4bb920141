package services

import (
	"sort"
	"strings"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/pkg/api"
)

// ParserService turns a raw chat request into the ordered list of capability
// tags it needs. Detection rules run independently; a request may match
// several tags, each appended at most once.
type ParserService struct {
	tags *TagRegistry
}

func NewParserService(tags *TagRegistry) *ParserService {
	return &ParserService{tags: tags}
}

// ParseRequirements returns matched tags sorted descending by priority.
// Ties keep detection order. No match yields an empty list and the caller
// falls back to the bot's primary model.
func (p *ParserService) ParseRequirements(req *api.ChatRequest, routingHint string) []domain.CapabilityTag {
	var matched []domain.CapabilityTag
	seen := make(map[string]bool)

	include := func(tagID string) {
		if seen[tagID] {
			return
		}
		if tag, ok := p.tags.Get(tagID); ok {
			matched = append(matched, tag)
			seen[tagID] = true
		}
	}

	if routingHint != "" {
		include(routingHint)
	}
	if req.Thinking.Enabled() {
		include(domain.TagDeepReasoning)
	}
	if hasCacheControl(req) {
		include(domain.TagCostOptimized)
	}
	for _, tool := range req.Tools {
		switch {
		case toolMatches(tool, "web_search"):
			include(domain.TagWebSearch)
		case toolMatches(tool, "code_execution"), toolMatches(tool, "code_runner"):
			include(domain.TagCodeExecution)
		}
	}
	if hasImageContent(req) {
		include(domain.TagVision)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})

	return matched
}

func hasCacheControl(req *api.ChatRequest) bool {
	for _, msg := range req.Messages {
		if msg.CacheControl != nil {
			return true
		}
		for _, part := range msg.Content.Parts {
			if part.CacheControl != nil {
				return true
			}
		}
	}
	return false
}

func toolMatches(tool api.Tool, name string) bool {
	if strings.EqualFold(tool.Type, name) || strings.EqualFold(tool.Name, name) {
		return true
	}
	return tool.Function != nil && strings.EqualFold(tool.Function.Name, name)
}

func hasImageContent(req *api.ChatRequest) bool {
	for _, msg := range req.Messages {
		for _, part := range msg.Content.Parts {
			if part.Type == "image_url" {
				return true
			}
		}
	}
	return false
}
