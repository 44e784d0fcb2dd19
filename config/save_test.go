package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func readYAML(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var saved map[string]interface{}
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return saved
}

func TestSaveConfig_SaveGlobal(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	cfg := SaveConfig{
		GlobalConfigDir: "autoflow",
		ValidGlobalKeys: validKeys,
	}
	configPath := filepath.Join(tmpHome, ".config", "autoflow", "config.yaml")

	t.Run("creates config file", func(t *testing.T) {
		if err := cfg.SaveGlobal(KeyGatewayURL, "http://example.com"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved[KeyGatewayURL] != "http://example.com" {
			t.Errorf("gateway_url = %v, want http://example.com", saved[KeyGatewayURL])
		}
	})

	t.Run("updates existing config", func(t *testing.T) {
		if err := cfg.SaveGlobal(KeyJournalDir, ".runs"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved[KeyGatewayURL] != "http://example.com" {
			t.Errorf("gateway_url = %v, want the earlier value", saved[KeyGatewayURL])
		}
		if saved[KeyJournalDir] != ".runs" {
			t.Errorf("journal_dir = %v, want .runs", saved[KeyJournalDir])
		}
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		err := cfg.SaveGlobal("mystery_key", "value")
		if err == nil {
			t.Fatal("expected error for invalid key")
		}
		if !strings.Contains(err.Error(), "unknown global config key") {
			t.Errorf("error = %v, want to contain 'unknown global config key'", err)
		}
	})

	t.Run("no global config dir", func(t *testing.T) {
		if err := (SaveConfig{}).SaveGlobal("key", "value"); err == nil {
			t.Error("expected error when GlobalConfigDir not set")
		}
	})

	t.Run("rejects mistyped value", func(t *testing.T) {
		err := cfg.SaveGlobal(KeyRetryWait, "soon")
		if err == nil {
			t.Fatal("expected error for a non-duration retry_wait")
		}
		if !strings.Contains(err.Error(), "not a duration") {
			t.Errorf("error = %v, want to contain 'not a duration'", err)
		}
	})

	t.Run("accepts typed value", func(t *testing.T) {
		if err := cfg.SaveGlobal(KeyRetryWait, "250ms"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved[KeyRetryWait] != "250ms" {
			t.Errorf("retry_wait = %v, want 250ms", saved[KeyRetryWait])
		}
	})

	t.Run("allows any key when ValidGlobalKeys empty", func(t *testing.T) {
		open := SaveConfig{GlobalConfigDir: "novalidation"}
		if err := open.SaveGlobal("any_key", "any_value"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}
	})

	t.Run("custom config filename", func(t *testing.T) {
		custom := SaveConfig{
			GlobalConfigDir:  "customfile",
			GlobalConfigFile: "settings.yaml",
		}
		if err := custom.SaveGlobal("key", "value"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		path := filepath.Join(tmpHome, ".config", "customfile", "settings.yaml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Error("expected settings.yaml to be created")
		}
	})
}

func TestSaveConfig_SaveLocal(t *testing.T) {
	cfg := SaveConfig{
		LocalConfigName: ".autoflow.yaml",
		ValidLocalKeys:  validKeys,
	}

	t.Run("creates local config", func(t *testing.T) {
		tmpDir := t.TempDir()
		if err := cfg.SaveLocal(tmpDir, KeyPromptDir, "prompts"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}

		saved := readYAML(t, filepath.Join(tmpDir, ".autoflow.yaml"))
		if saved[KeyPromptDir] != "prompts" {
			t.Errorf("prompt_dir = %v, want prompts", saved[KeyPromptDir])
		}
	})

	t.Run("updates existing config", func(t *testing.T) {
		tmpDir := t.TempDir()

		if err := cfg.SaveLocal(tmpDir, KeyPromptDir, "prompts"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}
		if err := cfg.SaveLocal(tmpDir, KeyGatewayURL, "http://local.dev"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}

		saved := readYAML(t, filepath.Join(tmpDir, ".autoflow.yaml"))
		if saved[KeyPromptDir] != "prompts" {
			t.Errorf("prompt_dir = %v, want prompts", saved[KeyPromptDir])
		}
		if saved[KeyGatewayURL] != "http://local.dev" {
			t.Errorf("gateway_url = %v, want http://local.dev", saved[KeyGatewayURL])
		}
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		err := cfg.SaveLocal(t.TempDir(), "mystery_key", "value")
		if err == nil {
			t.Fatal("expected error for invalid key")
		}
		if !strings.Contains(err.Error(), "unknown local config key") {
			t.Errorf("error = %v, want to contain 'unknown local config key'", err)
		}
	})

	t.Run("rejects out-of-range coverage", func(t *testing.T) {
		err := cfg.SaveLocal(t.TempDir(), KeyMinCoverage, "150")
		if err == nil {
			t.Fatal("expected error for coverage above 100")
		}
		if !strings.Contains(err.Error(), "between 0 and 100") {
			t.Errorf("error = %v, want to contain 'between 0 and 100'", err)
		}
	})

	t.Run("empty git root", func(t *testing.T) {
		if err := cfg.SaveLocal("", KeyPromptDir, "value"); err == nil {
			t.Error("expected error when git root empty")
		}
	})

	t.Run("no local config name", func(t *testing.T) {
		if err := (SaveConfig{}).SaveLocal("/tmp", "key", "value"); err == nil {
			t.Error("expected error when LocalConfigName not set")
		}
	})
}

func TestSaveConfig_DeleteGlobalKey(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	cfg := SaveConfig{GlobalConfigDir: "autoflow"}

	t.Run("deletes existing key", func(t *testing.T) {
		if err := cfg.SaveGlobal("key1", "value1"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}
		if err := cfg.SaveGlobal("key2", "value2"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		if err := cfg.DeleteGlobalKey("key1"); err != nil {
			t.Fatalf("DeleteGlobalKey() error = %v", err)
		}

		saved := readYAML(t, filepath.Join(tmpHome, ".config", "autoflow", "config.yaml"))
		if _, exists := saved["key1"]; exists {
			t.Error("key1 should have been deleted")
		}
		if saved["key2"] != "value2" {
			t.Errorf("key2 = %v, want value2", saved["key2"])
		}
	})

	t.Run("no error when file doesn't exist", func(t *testing.T) {
		missing := SaveConfig{GlobalConfigDir: "nonexistent"}
		if err := missing.DeleteGlobalKey("any_key"); err != nil {
			t.Errorf("DeleteGlobalKey() error = %v, want nil", err)
		}
	})

	t.Run("no global config dir", func(t *testing.T) {
		if err := (SaveConfig{}).DeleteGlobalKey("key"); err == nil {
			t.Error("expected error when GlobalConfigDir not set")
		}
	})
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{"False", false},
		{"hello", "hello"},
		{"123", 123},
		{"82.5", 82.5},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseValue(tt.input)
			if got != tt.want {
				t.Errorf("parseValue(%q) = %v (%T), want %v (%T)",
					tt.input, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestSaveConfig_MalformedYAML(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	t.Run("overwrites malformed global config", func(t *testing.T) {
		configDir := filepath.Join(tmpHome, ".config", "malformed")
		os.MkdirAll(configDir, 0o700)
		configPath := filepath.Join(configDir, "config.yaml")
		os.WriteFile(configPath, []byte("not: valid: yaml: [[["), 0o600)

		cfg := SaveConfig{GlobalConfigDir: "malformed"}
		if err := cfg.SaveGlobal("key", "value"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved["key"] != "value" {
			t.Errorf("key = %v, want value", saved["key"])
		}
	})

	t.Run("overwrites malformed local config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".autoflow.yaml")
		os.WriteFile(configPath, []byte("not: valid: yaml: [[["), 0o644)

		cfg := SaveConfig{LocalConfigName: ".autoflow.yaml"}
		if err := cfg.SaveLocal(tmpDir, "key", "value"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved["key"] != "value" {
			t.Errorf("key = %v, want value", saved["key"])
		}
	})
}
