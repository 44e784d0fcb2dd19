package config

import (
	"fmt"
	"strconv"
	"time"
)

// Configuration keys understood by the orchestration stack.
const (
	KeyGatewayURL    = "gateway_url"
	KeyGatewayAPIKey = "gateway_api_key"
	KeyRetryWait     = "retry_wait"
	KeyMaxIterations = "max_iterations"
	KeyTokenBudget   = "token_budget"
	KeyJournalDir    = "journal_dir"
	KeyPromptDir     = "prompt_dir"
	KeyMinCoverage   = "min_coverage"
)

// Defaults returns the built-in default values.
func Defaults() map[string]string {
	return map[string]string{
		KeyGatewayURL:    "http://localhost:8080",
		KeyRetryWait:     "1s",
		KeyMaxIterations: "10",
		KeyTokenBudget:   "0",
		KeyJournalDir:    ".autoflow",
		KeyMinCoverage:   "0",
	}
}

// validKeys lists the keys accepted in config files. The API key is
// env-only so it never lands in a file that gets committed.
var validKeys = []string{
	KeyGatewayURL,
	KeyRetryWait,
	KeyMaxIterations,
	KeyTokenBudget,
	KeyJournalDir,
	KeyPromptDir,
	KeyMinCoverage,
}

// envOnlyKeys are resolved from the environment alone; file values for
// them are ignored with a warning.
var envOnlyKeys = []string{KeyGatewayAPIKey}

// DefaultResolver creates a resolver with the standard layering:
// AUTOFLOW_* environment variables, .autoflow.yaml in the repository
// root, ~/.config/autoflow/config.yaml, then built-in defaults.
func DefaultResolver() *Resolver {
	return NewResolver(ResolverConfig{
		EnvPrefix:       "AUTOFLOW_",
		GlobalConfigDir: "autoflow",
		LocalConfigName: ".autoflow.yaml",
		Defaults:        Defaults(),
		ValidGlobalKeys: validKeys,
		ValidLocalKeys:  validKeys,
		EnvOnlyKeys:     envOnlyKeys,
	})
}

// ValidateValue checks that a value is well formed for its key's type.
// Keys without a declared type pass; unknown keys are the saver's concern.
func ValidateValue(key, value string) error {
	switch key {
	case KeyRetryWait:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %q is not a duration (try \"500ms\" or \"2s\")", key, value)
		}
	case KeyMaxIterations, KeyTokenBudget:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
	case KeyMinCoverage:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 100 {
			return fmt.Errorf("%s: %q is not a percentage between 0 and 100", key, value)
		}
	}
	return nil
}

// DefaultSaver creates a SaveConfig matching DefaultResolver's layout.
func DefaultSaver() SaveConfig {
	return SaveConfig{
		GlobalConfigDir: "autoflow",
		LocalConfigName: ".autoflow.yaml",
		ValidGlobalKeys: validKeys,
		ValidLocalKeys:  validKeys,
	}
}

// Settings is the typed view of a resolved configuration.
type Settings struct {
	// GatewayURL is the tool gateway base URL.
	GatewayURL string

	// GatewayAPIKey authenticates gateway calls. May be empty.
	GatewayAPIKey string

	// RetryWait is the pause between step retry attempts.
	RetryWait time.Duration

	// MaxIterations bounds agent loops.
	MaxIterations int

	// TokenBudget bounds cumulative agent tokens. Zero means unlimited.
	TokenBudget int

	// JournalDir is the base directory for run journals.
	JournalDir string

	// PromptDir is an extra prompt search directory. May be empty.
	PromptDir string

	// MinCoverage is the guardrail coverage threshold in percent.
	// Zero disables the check.
	MinCoverage float64
}

// SettingsFrom converts a resolved configuration into typed settings.
func SettingsFrom(cfg *Resolved) (*Settings, error) {
	s := &Settings{
		GatewayURL:    cfg.Get(KeyGatewayURL),
		GatewayAPIKey: cfg.Get(KeyGatewayAPIKey),
		JournalDir:    cfg.Get(KeyJournalDir),
		PromptDir:     cfg.Get(KeyPromptDir),
	}

	if v := cfg.Get(KeyRetryWait); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", KeyRetryWait, v, err)
		}
		s.RetryWait = d
	}

	if v := cfg.Get(KeyMaxIterations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", KeyMaxIterations, v, err)
		}
		s.MaxIterations = n
	}

	if v := cfg.Get(KeyTokenBudget); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", KeyTokenBudget, v, err)
		}
		s.TokenBudget = n
	}

	if v := cfg.Get(KeyMinCoverage); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", KeyMinCoverage, v, err)
		}
		s.MinCoverage = f
	}

	return s, nil
}

// LoadSettings resolves the standard configuration layers and returns
// the typed settings.
func LoadSettings() (*Settings, error) {
	return SettingsFrom(DefaultResolver().Resolve())
}
