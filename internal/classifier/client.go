// Package classifier implements the HTTP client for the external complexity
// classification service.
package classifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kestrelhq/botgate/internal/core/domain"
	"github.com/kestrelhq/botgate/internal/core/ports"
	"github.com/kestrelhq/botgate/internal/httpclient"
)

const defaultTimeout = 10 * time.Second

// Client calls a classifier deployment bound by a ComplexityRoutingConfig.
type Client struct {
	binding domain.ClassifierBinding
	http    httpclient.HTTPClient
}

// New builds a classifier client for the given binding. timeout <= 0 uses
// the default.
func New(binding domain.ClassifierBinding, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		binding: binding,
		http:    &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Model    string `json:"model"`
	Message  string `json:"message"`
	Context  string `json:"context,omitempty"`
	HasTools bool   `json:"has_tools"`
}

type classifyResponse struct {
	Level                string `json:"level"`
	LatencyMs            int64  `json:"latency_ms,omitempty"`
	InheritedFromContext bool   `json:"inherited_from_context,omitempty"`
}

// Classify asks the bound classifier for the request's complexity level.
// The call respects ctx for cancellation and the client timeout.
func (c *Client) Classify(ctx context.Context, in ports.ClassifyInput) (*ports.ClassifyResult, error) {
	url := strings.TrimSuffix(c.binding.BaseURL, "/") + "/v1/classify"

	start := time.Now()
	var resp classifyResponse
	err := httpclient.SendRequest(ctx, c.http, http.MethodPost, url, nil, classifyRequest{
		Model:    c.binding.Model,
		Message:  in.Message,
		Context:  in.Context,
		HasTools: in.HasTools,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}

	level := domain.ComplexityLevel(resp.Level)
	if !level.Valid() {
		return nil, fmt.Errorf("classifier returned unknown level %q", resp.Level)
	}

	latency := resp.LatencyMs
	if latency == 0 {
		latency = time.Since(start).Milliseconds()
	}

	return &ports.ClassifyResult{
		Level:                level,
		LatencyMs:            latency,
		InheritedFromContext: resp.InheritedFromContext,
	}, nil
}

var _ ports.ComplexityClassifier = (*Client)(nil)
