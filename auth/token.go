package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// Default token lifetimes. Service tokens cover a single orchestration
// run; renewal tokens outlive them so long-running flows can re-mint.
const (
	DefaultServiceTokenTTL = 1 * time.Hour
	DefaultRenewalTokenTTL = 30 * 24 * time.Hour
)

// TokenConfig holds configuration for service token issuance and verification.
type TokenConfig struct {
	// Secret is the HMAC signing key (must be at least 32 bytes).
	Secret []byte

	// Issuer is the token issuer (e.g., "autoflow-gateway").
	Issuer string

	// ServiceTokenTTL is the lifetime of service tokens.
	// Defaults to DefaultServiceTokenTTL (1 hour) if zero.
	ServiceTokenTTL time.Duration

	// RenewalTokenTTL is the lifetime of renewal tokens.
	// Defaults to DefaultRenewalTokenTTL (30 days) if zero.
	RenewalTokenTTL time.Duration
}

func (c TokenConfig) serviceTTL() time.Duration {
	if c.ServiceTokenTTL == 0 {
		return DefaultServiceTokenTTL
	}
	return c.ServiceTokenTTL
}

func (c TokenConfig) renewalTTL() time.Duration {
	if c.RenewalTokenTTL == 0 {
		return DefaultRenewalTokenTTL
	}
	return c.RenewalTokenTTL
}

// ServiceClaims are the claims carried by a gateway service token.
// Subject identifies the caller (typically a run ID); Providers lists
// the tool providers the token may call. An empty list allows all.
type ServiceClaims struct {
	jwt.RegisteredClaims

	Providers []string `json:"prv,omitempty"`
}

// AllowsProvider reports whether the token authorizes calls to the
// named provider. Tokens issued without a provider list allow all.
func (c *ServiceClaims) AllowsProvider(name string) bool {
	if len(c.Providers) == 0 {
		return true
	}
	for _, p := range c.Providers {
		if p == name {
			return true
		}
	}
	return false
}

// TokenSet contains a service token and its renewal token.
type TokenSet struct {
	ServiceToken string
	RenewalToken string
	ExpiresIn    int64 // seconds until the service token expires
}

// IssueServiceToken creates a signed service token for the given subject,
// scoped to the listed providers. A nil or empty list allows all providers.
func IssueServiceToken(cfg TokenConfig, subject string, providers []string) (string, error) {
	if len(cfg.Secret) < 32 {
		return "", ErrSecretTooShort
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := time.Now()
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.serviceTTL())),
			ID:        tokenID,
		},
		Providers: providers,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// VerifyServiceToken parses and validates a service token.
func VerifyServiceToken(cfg TokenConfig, tokenString string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// Verify issuer if configured
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateRenewalToken creates a new opaque renewal token.
// Returns the token (to give to the caller) and its hash (for storage).
func GenerateRenewalToken() (token, hash string, err error) {
	token, err = nanoid.Generate(base62Alphabet, 64)
	if err != nil {
		return "", "", fmt.Errorf("generate renewal token: %w", err)
	}

	return token, HashSecret(token), nil
}

// IssueTokenSet creates a service token together with a renewal token.
// Returns the set and the renewal token's hash for storage.
func IssueTokenSet(cfg TokenConfig, subject string, providers []string) (*TokenSet, string, error) {
	serviceToken, err := IssueServiceToken(cfg, subject, providers)
	if err != nil {
		return nil, "", err
	}

	renewalToken, renewalHash, err := GenerateRenewalToken()
	if err != nil {
		return nil, "", err
	}

	return &TokenSet{
		ServiceToken: serviceToken,
		RenewalToken: renewalToken,
		ExpiresIn:    int64(cfg.serviceTTL().Seconds()),
	}, renewalHash, nil
}
