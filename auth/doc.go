// Package auth provides credential utilities for the tool gateway.
//
// This package includes:
//   - Gateway API key generation with configurable prefixes
//   - HS256 service tokens scoped to tool providers
//   - Secret hashing for storage
//
// # Gateway Keys
//
// Generate a key for a gateway client:
//
//	cfg := auth.KeyConfig{Prefix: "afk_live_"}
//
//	key, err := auth.GenerateGatewayKey(cfg)
//	// key.Secret:  "afk_live_aBc123..." (hand to the client, never stored)
//	// key.Hash:    SHA-256 hash for storage
//	// key.Display: "afk_live_aBc..." (safe to show in listings)
//
// # Service Tokens
//
// Service tokens authorize automated callers for a bounded run and can be
// restricted to specific tool providers:
//
//	cfg := auth.TokenConfig{
//	    Secret: []byte("your-32-byte-or-longer-secret-key"),
//	    Issuer: "autoflow-gateway",
//	}
//
//	token, err := auth.IssueServiceToken(cfg, "run-42", []string{"git", "ci"})
//
//	claims, err := auth.VerifyServiceToken(cfg, token)
//	if claims.AllowsProvider("git") { ... }
//
// Long-lived callers pair the service token with an opaque renewal token:
//
//	set, renewalHash, err := auth.IssueTokenSet(cfg, "run-42", nil)
//	// store renewalHash; exchange set.RenewalToken for a fresh set later
package auth
