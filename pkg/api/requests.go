package api

import "encoding/json"

// ChatRequest is the slice of an inbound chat-completion body the routing
// engine inspects. The gateway forwards the full body upstream; the engine
// only needs messages, tools, thinking flags and the routing hint.
type ChatRequest struct {
	// message array is required, dive in and deep validate
	Messages []ChatMessage `json:"messages" binding:"required,min=1,dive"`

	// the model the client asked for, may be empty when the bot decides
	Model string `json:"model,omitempty"`

	// Tool calling
	Tools []Tool `json:"tools,omitempty"`

	// Extended thinking block (anthropic-style)
	Thinking *Thinking `json:"thinking,omitempty"`

	// Optional hint naming a capability tag id directly
	RoutingHint string `json:"routing_hint,omitempty"`
}

// HasTools reports whether the request carries at least one tool entry.
func (r *ChatRequest) HasTools() bool {
	return len(r.Tools) > 0
}

type ChatMessage struct {
	Role    string  `json:"role" binding:"required,oneof=user assistant system tool"`
	Content Content `json:"content"` // string or []ContentPart
	Name    string  `json:"name,omitempty"`

	// Message-level prompt-cache marker (anthropic-style)
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// Content can be a plain string or an array of typed parts.
type Content struct {
	Text  string
	Parts []ContentPart
}

func (c *Content) UnmarshalJSON(data []byte) error {
	// try the simple string form first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	c.Parts = parts
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// PlainText flattens the content into a single string for classification.
func (c Content) PlainText() string {
	if c.Parts == nil {
		return c.Text
	}
	var out string
	for _, p := range c.Parts {
		if p.Type == "text" {
			if out != "" {
				out += "\n"
			}
			out += p.Text
		}
	}
	return out
}

type ContentPart struct {
	Type string `json:"type"` // "text", "image_url", ...
	Text string `json:"text,omitempty"`

	ImageURL *ImageURL `json:"image_url,omitempty"`

	// Part-level prompt-cache marker
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type CacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

// Tool covers both OpenAI-style function tools and flat named tools
// (web_search, code_execution). Detection checks type, name and the
// nested function name.
type Tool struct {
	Type     string        `json:"type,omitempty"`
	Name     string        `json:"name,omitempty"`
	Function *ToolFunction `json:"function,omitempty"`
}

type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Thinking mirrors the anthropic extended-thinking request block.
type Thinking struct {
	Type         string `json:"type"` // "enabled" or "disabled"
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

// Enabled reports whether extended thinking was requested.
func (t *Thinking) Enabled() bool {
	return t != nil && t.Type == "enabled"
}
