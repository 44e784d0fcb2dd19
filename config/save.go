package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveConfig writes configuration values to the same files the resolver
// reads. Values are validated against their key's type before anything
// touches disk.
type SaveConfig struct {
	// GlobalConfigDir is the directory under ~/.config/ for global config.
	GlobalConfigDir string

	// GlobalConfigFile is the filename. Defaults to "config.yaml".
	GlobalConfigFile string

	// LocalConfigName is the filename for local config in git root.
	LocalConfigName string

	// ValidGlobalKeys lists keys that can be set in global config.
	ValidGlobalKeys []string

	// ValidLocalKeys lists keys that can be set in local config.
	ValidLocalKeys []string
}

func (c SaveConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

func (c SaveConfig) globalPath() (string, error) {
	if c.GlobalConfigDir == "" {
		return "", fmt.Errorf("global config directory not configured")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", c.GlobalConfigDir, c.globalConfigFile()), nil
}

// SaveGlobal writes a key to the global config file, creating the file
// if needed.
func (c SaveConfig) SaveGlobal(key, value string) error {
	path, err := c.globalPath()
	if err != nil {
		return err
	}
	if err := validateSave(key, value, c.ValidGlobalKeys, "global"); err != nil {
		return err
	}

	// Global config may carry credentials alongside settings: owner-only.
	return upsertYAML(path, 0o600, func(doc map[string]any) {
		doc[key] = parseValue(value)
	})
}

// SaveLocal writes a key to the config file in the repository root. The
// file is shared through version control and stays world-readable.
func (c SaveConfig) SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	if err := validateSave(key, value, c.ValidLocalKeys, "local"); err != nil {
		return err
	}

	path := filepath.Join(gitRoot, c.LocalConfigName)
	return upsertYAML(path, 0o644, func(doc map[string]any) { //nolint:gosec
		doc[key] = parseValue(value)
	})
}

// DeleteGlobalKey removes a key from the global config file. A missing
// file means there is nothing to delete.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	path, err := c.globalPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	return upsertYAML(path, 0o600, func(doc map[string]any) {
		delete(doc, key)
	})
}

// validateSave rejects unknown keys and values that do not parse for
// their key's type.
func validateSave(key, value string, validKeys []string, scope string) error {
	if len(validKeys) > 0 && !contains(validKeys, key) {
		sorted := append([]string(nil), validKeys...)
		sort.Strings(sorted)
		return fmt.Errorf("unknown %s config key: %s\n\nValid keys: %s",
			scope, key, strings.Join(sorted, ", "))
	}
	return ValidateValue(key, value)
}

// upsertYAML reads the YAML document at path, applies mutate, and writes
// the result back. An unreadable or malformed document is replaced.
func upsertYAML(path string, mode os.FileMode, mutate func(doc map[string]any)) error {
	var doc map[string]any
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &doc)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	mutate(doc)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, mode)
}

// parseValue types a string value for YAML storage. Booleans and numbers
// keep their native form so resolver round-trips stay stable; everything
// else is stored as a string.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
