// Package rpc provides the HTTP reference implementation of the tool
// gateway. It speaks a small JSON protocol to a gateway server:
//
//	POST /v1/providers/{provider}/call    invoke a tool method
//	GET  /v1/providers/{provider}/tools   list available tools
//	GET  /v1/providers/{provider}/health  provider availability
//
// Core types:
//   - Gateway: autoflow.ToolGateway implementation over HTTP
//   - Client: Shared HTTP transport with retries and auth hooks
//   - APIError: Structured error with sentinel unwrapping by status
//
// Example usage:
//
//	gateway := rpc.NewGateway(rpc.GatewayConfig{
//	    BaseURL: "https://tools.internal.example.com",
//	    APIKey:  os.Getenv("AUTOFLOW_GATEWAY_API_KEY"),
//	})
//	result, err := gateway.Call(ctx, "tracker", "get", map[string]any{"id": "TK-9"})
package rpc
