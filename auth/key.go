package auth

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Default gateway key configuration.
const (
	DefaultKeyPrefix        = "afk_"
	DefaultKeyRandomLength  = 32
	DefaultKeyDisplayLength = 12
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// KeyConfig holds configuration for gateway key generation.
type KeyConfig struct {
	// Prefix is prepended to all keys (e.g., "afk_live_").
	// Defaults to "afk_" if empty.
	Prefix string

	// RandomLength is the length of the random part.
	// Defaults to 32 if zero.
	RandomLength int

	// DisplayLength is how many characters of the secret to show
	// in listings. Defaults to 12 if zero.
	DisplayLength int
}

func (c KeyConfig) prefix() string {
	if c.Prefix == "" {
		return DefaultKeyPrefix
	}
	return c.Prefix
}

func (c KeyConfig) randomLength() int {
	if c.RandomLength == 0 {
		return DefaultKeyRandomLength
	}
	return c.RandomLength
}

func (c KeyConfig) displayLength() int {
	if c.DisplayLength == 0 {
		return DefaultKeyDisplayLength
	}
	return c.DisplayLength
}

// GatewayKey contains a freshly generated key. The Secret is only
// available at creation; persist the Hash and show the Display form.
type GatewayKey struct {
	// ID is a unique identifier for the key record.
	ID string

	// Secret is the full key (e.g., "afk_live_xxxx...").
	Secret string

	// Display is the truncated form safe to show in listings.
	Display string

	// Hash is the SHA-256 hash of the full key for storage.
	Hash string
}

// GenerateGatewayKey creates a new gateway key with the given configuration.
func GenerateGatewayKey(cfg KeyConfig) (*GatewayKey, error) {
	random, err := nanoid.Generate(base62Alphabet, cfg.randomLength())
	if err != nil {
		return nil, fmt.Errorf("generate gateway key: %w", err)
	}

	secret := cfg.prefix() + random

	id, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate gateway key id: %w", err)
	}

	return &GatewayKey{
		ID:      "gwk_" + id,
		Secret:  secret,
		Display: DisplayPrefix(secret, cfg),
		Hash:    HashSecret(secret),
	}, nil
}

// ValidKeyFormat checks whether a string matches the expected key format.
func ValidKeyFormat(key string, cfg KeyConfig) bool {
	prefix := cfg.prefix()
	expectedLen := len(prefix) + cfg.randomLength()
	return strings.HasPrefix(key, prefix) && len(key) == expectedLen
}

// DisplayPrefix returns the truncated display form of a full key.
func DisplayPrefix(key string, cfg KeyConfig) string {
	displayLen := cfg.displayLength()
	if len(key) <= displayLen {
		return key
	}
	return key[:displayLen] + "..."
}
