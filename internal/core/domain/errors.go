package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors the routing engine reports to its caller.
var (
	// ErrNoRoute means no target could be resolved for the request
	// (unknown provider key, empty load-balance target set, and so on).
	// Request-level failure, not a process-level one.
	ErrNoRoute = errors.New("no route found")

	// ErrFailoverExhausted means every target of a failover chain exhausted
	// every attempt. Terminal for that call path; callers must not retry.
	ErrFailoverExhausted = errors.New("all failover targets exhausted")
)

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`

	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]interface{})

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, _ := json.Marshal(Alias(*p))
	_ = json.Unmarshal(stdJSON, &data)

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// New creates a generic Problem
func New(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank", // Default as per RFC
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value interface{}) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// Error defines a standard error shape for the admin API
type Error struct {
	// HTTP Status Code (e.g., 400, 404, 500)
	Code int
	// Safe message for the client
	Message string
	// Original error for internal logging
	Log error
}

// Error implements standard error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying error for errors.Is checks.
func (e *Error) Unwrap() error {
	return e.Log
}

// BadRequestError creates a standard error for a bad request
func BadRequestError(detail string, opts ...ProblemOption) *Problem {
	return New(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// ValidationError creates a rich validation error
func ValidationError(validationErrors map[string]string) *Problem {
	return New(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithExtension("errors", validationErrors),
	)
}

// InternalError creates a standard error for any internal server error
func InternalError(msg string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: msg, Log: err}
}

// NotFoundError creates a standard 404 error
func NotFoundError(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

// UnauthorizedError creates a 401 unauthed error
func UnauthorizedError(msg string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: msg}
}

// NoRouteError signals that routing resolved to nothing usable.
func NoRouteError(detail string) *Error {
	return &Error{Code: http.StatusBadGateway, Message: detail, Log: ErrNoRoute}
}

// FailoverExhaustedError wraps ErrFailoverExhausted with per-call detail so
// callers can return a clear "all providers failed" response.
func FailoverExhaustedError(botID, routingID string, attempts int) *Error {
	return &Error{
		Code:    http.StatusBadGateway,
		Message: fmt.Sprintf("all failover targets exhausted for bot %s (rule %s, %d attempts)", botID, routingID, attempts),
		Log:     ErrFailoverExhausted,
	}
}

// WrapError allows wrapping a standard error in an engine Error
func WrapError(err error, code int, msg string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", msg, err),
		Log:     err,
	}
}
