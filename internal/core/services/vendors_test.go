package services

import (
	"testing"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestInferVendor(t *testing.T) {
	cases := map[string]string{
		"claude-sonnet-4-5":  "anthropic",
		"CLAUDE-OPUS-4-1":    "anthropic",
		"gpt-4o":             "openai",
		"o1-preview":         "openai",
		"o3-mini":            "openai",
		"gemini-1.5-pro":     "google",
		"deepseek-r1":        "deepseek",
		"doubao-pro-32k":     "doubao",
		"qwen-max":           "dashscope",
		"glm-4-plus":         "zhipu",
		"llama-3.1-70b":      "meta",
		"mistral-large-2407": "mistral",
		"totally-unknown":    "openai",
	}
	for model, want := range cases {
		assert.Equal(t, want, InferVendor(model), "model %s", model)
	}
}

func TestInferVendor_OrderMatters(t *testing.T) {
	// "claude" is checked before "gpt", so a name containing both stays
	// anthropic.
	assert.Equal(t, "anthropic", InferVendor("claude-gpt-hybrid"))
}

func TestProtocolForVendor(t *testing.T) {
	assert.Equal(t, domain.ProtocolAnthropicNative, ProtocolForVendor("anthropic"))
	assert.Equal(t, domain.ProtocolAnthropicNative, ProtocolForVendor("Anthropic"))
	assert.Equal(t, domain.ProtocolOpenAICompatible, ProtocolForVendor("openai"))
	assert.Equal(t, domain.ProtocolOpenAICompatible, ProtocolForVendor("google"))
	assert.Equal(t, domain.ProtocolOpenAICompatible, ProtocolForVendor(""))
}
