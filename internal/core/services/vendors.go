package services

import (
	"strings"

	"github.com/kestrelhq/botgate/internal/core/domain"
)

// vendorPattern maps a model-name fragment to its vendor. Patterns are
// checked in order; first hit wins.
type vendorPattern struct {
	fragment string
	vendor   string
}

var vendorPatterns = []vendorPattern{
	{"claude", "anthropic"},
	{"gpt", "openai"},
	{"o1", "openai"},
	{"o3", "openai"},
	{"gemini", "google"},
	{"deepseek", "deepseek"},
	{"doubao", "doubao"},
	{"qwen", "dashscope"},
	{"glm", "zhipu"},
	{"llama", "meta"},
	{"mistral", "mistral"},
}

// InferVendor guesses the owning vendor from a model name. Unknown names
// default to openai, the least surprising wire format.
func InferVendor(model string) string {
	m := strings.ToLower(model)
	for _, p := range vendorPatterns {
		if strings.Contains(m, p.fragment) {
			return p.vendor
		}
	}
	return "openai"
}

// ProtocolForVendor picks the wire protocol a vendor speaks natively.
func ProtocolForVendor(vendor string) domain.Protocol {
	if strings.EqualFold(vendor, "anthropic") {
		return domain.ProtocolAnthropicNative
	}
	return domain.ProtocolOpenAICompatible
}
