package autoflow

import (
	"context"
	"fmt"
)

// HealthStatus reports a tool provider's availability.
type HealthStatus string

// Health status constants.
const (
	HealthOK       HealthStatus = "ok"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
)

// ToolSpec describes one tool a provider exposes.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// ToolError is a structured failure from a tool provider.
type ToolError struct {
	Provider string `json:"provider,omitempty"`
	Method   string `json:"method,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func (e *ToolError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("tool %s.%s: %s: %s", e.Provider, e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("tool error %s: %s", e.Code, e.Message)
}

// ToolGateway is the uniform call surface to named tool providers. The
// step sequencer and the agent loop both depend on this interface; concrete
// transports live outside the core (see the rpc package for the HTTP
// reference client). Implementations must be safe for concurrent use:
// independent runs share nothing except the gateway.
type ToolGateway interface {
	// Call invokes a method on a provider. Failures are returned as
	// *ToolError where the provider reported structured detail.
	Call(ctx context.Context, provider, method string, params map[string]any) (any, error)

	// Discover lists the tools a provider exposes.
	Discover(ctx context.Context, provider string) ([]ToolSpec, error)

	// Health reports the provider's availability.
	Health(ctx context.Context, provider string) (HealthStatus, error)
}
