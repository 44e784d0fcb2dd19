// Package config provides hierarchical configuration for the orchestration stack.
//
// Configuration is layered with clear precedence:
//  1. Command-line flags (via ResolveWithFlags)
//  2. AUTOFLOW_* environment variables
//  3. Local config (.autoflow.yaml in the repository root)
//  4. Global config (~/.config/autoflow/config.yaml)
//  5. Built-in defaults
//
// # Basic Usage
//
// Load the typed settings through the standard layers:
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(settings.GatewayURL)
//
// Or work with the raw resolver when you need sources:
//
//	cfg := config.DefaultResolver().Resolve()
//	fmt.Println(cfg.Get(config.KeyGatewayURL))    // "http://localhost:8080"
//	fmt.Println(cfg.Source(config.KeyGatewayURL)) // "default"
//
// # Environment Variables
//
// Environment variables are detected using the AUTOFLOW_ prefix:
//
//	AUTOFLOW_GATEWAY_URL=https://gateway.internal   # sets "gateway_url"
//	AUTOFLOW_GATEWAY_API_KEY=afk_live_...           # sets "gateway_api_key"
//
// The gateway API key is env-only: it is not accepted in config files so
// it never lands in a file that gets committed.
//
// # Config Sources
//
// Each resolved value tracks where it came from: "default", "global",
// "local", "env", or "flag".
package config
