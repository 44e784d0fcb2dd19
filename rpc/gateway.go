package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/randalmurphal/autoflow"
	"github.com/randalmurphal/autoflow/config"
)

// Gateway implements autoflow.ToolGateway against a gateway server. It is
// safe for concurrent use: independent runs share it freely.
type Gateway struct {
	client *Client
}

// GatewayConfig holds configuration for Gateway.
type GatewayConfig struct {
	// BaseURL is the gateway server root, without a trailing slash.
	BaseURL string

	// APIKey, when set, is sent as a bearer token on every request.
	APIKey string

	// Client overrides the HTTP transport (timeout, retries).
	Client *Client
}

// NewGateway creates an HTTP tool gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	client := cfg.Client
	if client == nil {
		var before func(req *http.Request)
		if cfg.APIKey != "" {
			key := cfg.APIKey
			before = func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+key)
			}
		}
		client = NewClient(ClientConfig{
			BaseURL:       cfg.BaseURL,
			BeforeRequest: before,
		})
	}
	return &Gateway{client: client}
}

// NewGatewayFromSettings builds a gateway from resolved configuration,
// using gateway_url and the env-only gateway_api_key.
func NewGatewayFromSettings(settings *config.Settings) *Gateway {
	return NewGateway(GatewayConfig{
		BaseURL: settings.GatewayURL,
		APIKey:  settings.GatewayAPIKey,
	})
}

// callRequest is the wire body for tool invocations.
type callRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// callResponse is the wire response for tool invocations. Exactly one of
// Result and Error is set.
type callResponse struct {
	Result any        `json:"result,omitempty"`
	Error  *wireError `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Call invokes a method on a provider. Provider-reported failures come back
// as *autoflow.ToolError; transport failures as *APIError.
func (g *Gateway) Call(ctx context.Context, provider, method string, params map[string]any) (any, error) {
	if provider == "" || method == "" {
		return nil, fmt.Errorf("call requires provider and method")
	}

	var resp callResponse
	path := "/v1/providers/" + url.PathEscape(provider) + "/call"
	err := g.client.Post(ctx, path, callRequest{Method: method, Params: params}, &resp)
	if err != nil {
		// A 4xx carrying structured tool detail is a provider failure, not a
		// transport one.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
			return nil, &autoflow.ToolError{
				Provider: provider,
				Method:   method,
				Code:     "invocation_failed",
				Message:  apiErr.Message,
			}
		}
		return nil, err
	}

	if resp.Error != nil {
		return nil, &autoflow.ToolError{
			Provider: provider,
			Method:   method,
			Code:     resp.Error.Code,
			Message:  resp.Error.Message,
		}
	}
	return resp.Result, nil
}

// Discover lists the tools a provider exposes.
func (g *Gateway) Discover(ctx context.Context, provider string) ([]autoflow.ToolSpec, error) {
	if provider == "" {
		return nil, fmt.Errorf("discover requires a provider")
	}

	var resp struct {
		Tools []autoflow.ToolSpec `json:"tools"`
	}
	path := "/v1/providers/" + url.PathEscape(provider) + "/tools"
	if err := g.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// Health reports the provider's availability. A provider the gateway does
// not know is down, not an error.
func (g *Gateway) Health(ctx context.Context, provider string) (autoflow.HealthStatus, error) {
	if provider == "" {
		return "", fmt.Errorf("health requires a provider")
	}

	var resp struct {
		Status autoflow.HealthStatus `json:"status"`
	}
	path := "/v1/providers/" + url.PathEscape(provider) + "/health"
	if err := g.client.Get(ctx, path, &resp); err != nil {
		if IsNotFound(err) {
			return autoflow.HealthDown, nil
		}
		return "", err
	}
	return resp.Status, nil
}

var _ autoflow.ToolGateway = (*Gateway)(nil)
