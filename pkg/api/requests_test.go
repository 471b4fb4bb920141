package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_UnmarshalString(t *testing.T) {
	var msg ChatMessage
	require.NoError(t, json.Unmarshal([]byte(`{"role": "user", "content": "hello"}`), &msg))
	assert.Equal(t, "hello", msg.Content.Text)
	assert.Nil(t, msg.Content.Parts)
	assert.Equal(t, "hello", msg.Content.PlainText())
}

func TestContent_UnmarshalParts(t *testing.T) {
	raw := `{"role": "user", "content": [
		{"type": "text", "text": "what is in"},
		{"type": "image_url", "image_url": {"url": "https://example.com/a.png"}},
		{"type": "text", "text": "this image"}
	]}`

	var msg ChatMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	require.Len(t, msg.Content.Parts, 3)
	assert.Equal(t, "image_url", msg.Content.Parts[1].Type)
	assert.Equal(t, "https://example.com/a.png", msg.Content.Parts[1].ImageURL.URL)

	// PlainText flattens text parts only.
	assert.Equal(t, "what is in\nthis image", msg.Content.PlainText())
}

func TestContent_MarshalRoundTrip(t *testing.T) {
	msg := ChatMessage{Role: "user", Content: Content{Text: "plain"}}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":"plain"`)

	msg = ChatMessage{Role: "user", Content: Content{Parts: []ContentPart{{Type: "text", Text: "x"}}}}
	data, err = json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":[{"type":"text","text":"x"}]`)
}

func TestThinking_Enabled(t *testing.T) {
	var nilThinking *Thinking
	assert.False(t, nilThinking.Enabled())
	assert.False(t, (&Thinking{Type: "disabled"}).Enabled())
	assert.True(t, (&Thinking{Type: "enabled", BudgetTokens: 2048}).Enabled())
}

func TestChatRequest_HasTools(t *testing.T) {
	req := &ChatRequest{}
	assert.False(t, req.HasTools())
	req.Tools = []Tool{{Type: "web_search"}}
	assert.True(t, req.HasTools())
}

func TestChatRequest_UnmarshalCacheControl(t *testing.T) {
	raw := `{
		"model": "claude-sonnet-4-5",
		"messages": [
			{"role": "system", "content": "long prompt", "cache_control": {"type": "ephemeral"}},
			{"role": "user", "content": "q"}
		],
		"thinking": {"type": "enabled", "budget_tokens": 1024}
	}`

	var req ChatRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.Len(t, req.Messages, 2)
	require.NotNil(t, req.Messages[0].CacheControl)
	assert.Equal(t, "ephemeral", req.Messages[0].CacheControl.Type)
	assert.True(t, req.Thinking.Enabled())
}
