package api

// Envelope is the uniform admin-surface response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail wraps an error message in a failure envelope.
func Fail(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}

type ErrorResponse struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// RouteRequest is the admin decision-preview body: the chat request plus the
// bot context it should be routed for.
type RouteRequest struct {
	Request       ChatRequest `json:"request" binding:"required"`
	BotID         string      `json:"bot_id" binding:"required"`
	RoutingHint   string      `json:"routing_hint,omitempty"`
	UseComplexity bool        `json:"use_complexity,omitempty"`
}

// CostEstimateRequest computes the price of one request from token counts.
type CostEstimateRequest struct {
	Model        string `json:"model" binding:"required"`
	InputTokens  int    `json:"input_tokens" binding:"min=0"`
	OutputTokens int    `json:"output_tokens" binding:"min=0"`
	CachedTokens int    `json:"cached_tokens,omitempty" binding:"min=0"`
}

// SelectModelRequest runs cost-strategy scoring over candidate models.
type SelectModelRequest struct {
	StrategyID string   `json:"strategy_id" binding:"required"`
	Candidates []string `json:"candidates" binding:"required,min=1"`
	BotID      string   `json:"bot_id,omitempty"`
}

// ResetLoadBalanceRequest clears one or all round-robin counters.
type ResetLoadBalanceRequest struct {
	RoutingID string `json:"routing_id,omitempty"`
}
