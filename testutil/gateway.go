package testutil

import (
	"context"
	"sync"

	"github.com/randalmurphal/autoflow"
)

// Call records one gateway invocation.
type Call struct {
	Provider string
	Method   string
	Params   map[string]any
}

// Gateway is an in-memory ToolGateway for tests. Handlers are keyed
// "provider.method"; calling an unregistered tool returns a structured
// not_found error, matching what a real gateway reports.
type Gateway struct {
	mu       sync.Mutex
	handlers map[string]func(params map[string]any) (any, error)
	tools    map[string][]autoflow.ToolSpec
	statuses map[string]autoflow.HealthStatus
	calls    []Call
}

// NewGateway creates an empty in-memory gateway.
func NewGateway() *Gateway {
	return &Gateway{
		handlers: make(map[string]func(params map[string]any) (any, error)),
		tools:    make(map[string][]autoflow.ToolSpec),
		statuses: make(map[string]autoflow.HealthStatus),
	}
}

// Handle registers a handler for a "provider.method" tool reference.
func (g *Gateway) Handle(tool string, fn func(params map[string]any) (any, error)) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[tool] = fn
	return g
}

// Respond registers a handler that always returns the given value.
func (g *Gateway) Respond(tool string, value any) *Gateway {
	return g.Handle(tool, func(map[string]any) (any, error) {
		return value, nil
	})
}

// Publish registers the tool specs returned by Discover for a provider.
func (g *Gateway) Publish(provider string, specs ...autoflow.ToolSpec) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tools[provider] = specs
	return g
}

// SetHealth sets the status Health reports for a provider.
func (g *Gateway) SetHealth(provider string, status autoflow.HealthStatus) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[provider] = status
	return g
}

// Call invokes a registered handler and records the call.
func (g *Gateway) Call(ctx context.Context, provider, method string, params map[string]any) (any, error) {
	g.mu.Lock()
	g.calls = append(g.calls, Call{Provider: provider, Method: method, Params: params})
	handler, ok := g.handlers[provider+"."+method]
	g.mu.Unlock()

	if !ok {
		return nil, &autoflow.ToolError{
			Provider: provider,
			Method:   method,
			Code:     "not_found",
			Message:  "no such tool",
		}
	}
	return handler(params)
}

// Discover lists the published tools for a provider.
func (g *Gateway) Discover(ctx context.Context, provider string) ([]autoflow.ToolSpec, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tools[provider], nil
}

// Health reports the configured status, defaulting to ok.
func (g *Gateway) Health(ctx context.Context, provider string) (autoflow.HealthStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if status, ok := g.statuses[provider]; ok {
		return status, nil
	}
	return autoflow.HealthOK, nil
}

// Calls returns a copy of the recorded calls in order.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Call, len(g.calls))
	copy(out, g.calls)
	return out
}

// CallCount returns how many calls were made to a "provider.method" tool.
func (g *Gateway) CallCount(tool string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Provider+"."+c.Method == tool {
			n++
		}
	}
	return n
}

var _ autoflow.ToolGateway = (*Gateway)(nil)
