package autoflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/autoflow/config"
	"github.com/randalmurphal/autoflow/journal"
)

// =============================================================================
// Context Injection Tests
// =============================================================================

func TestServiceInjection(t *testing.T) {
	gateway := newStubGateway()
	s := &Services{Gateway: gateway}

	ctx := s.InjectAll(context.Background())

	if ToolGatewayFromContext(ctx) == nil {
		t.Error("gateway not injected")
	}
	if LLMFromContext(ctx) != nil {
		t.Error("nil LLM client should not be injected")
	}
}

// =============================================================================
// Services Configuration Tests
// =============================================================================

func TestNewServices_SettingsDirectories(t *testing.T) {
	journalDir := filepath.Join(t.TempDir(), "runs")
	promptDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(promptDir, "site-check.txt"), []byte("check {{ .target }}"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewServices(ServicesConfig{
		Gateway: newStubGateway(),
		Settings: &config.Settings{
			JournalDir: journalDir,
			PromptDir:  promptDir,
		},
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}

	// Journals land under the configured directory.
	if err := s.Journals.StartRun("run-1", journal.RunMetadata{Kind: journal.KindWorkflow}); err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	verify, err := journal.NewFileStore(journal.StoreConfig{BaseDir: journalDir})
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := verify.LoadMeta("run-1"); err != nil {
		t.Errorf("run not found under configured journal_dir: %v", err)
	}

	// The configured prompt directory is searched.
	got, err := s.Prompts.LoadWithVars("site-check", map[string]any{"target": "api"})
	if err != nil {
		t.Fatalf("LoadWithVars() error = %v", err)
	}
	if got != "check api" {
		t.Errorf("prompt = %q, want %q", got, "check api")
	}
}

func TestNewServices_ExplicitDirWinsOverSettings(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "explicit")
	fromSettings := filepath.Join(t.TempDir(), "settings")

	s, err := NewServices(ServicesConfig{
		BaseDir:  explicit,
		Settings: &config.Settings{JournalDir: fromSettings},
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}

	if err := s.Journals.StartRun("run-2", journal.RunMetadata{Kind: journal.KindWorkflow}); err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	verify, err := journal.NewFileStore(journal.StoreConfig{BaseDir: explicit})
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := verify.LoadMeta("run-2"); err != nil {
		t.Errorf("run not found under explicit BaseDir: %v", err)
	}
}

func TestServices_SequencerHonorsRetryWait(t *testing.T) {
	gateway := newStubGateway()
	failures := 0
	gateway.handle("ci.test", func(params map[string]any) (any, error) {
		failures++
		if failures == 1 {
			return nil, &ToolError{Provider: "ci", Method: "test", Code: "flaky", Message: "try again"}
		}
		return "passed", nil
	})

	s := &Services{
		Gateway:  gateway,
		Settings: &config.Settings{RetryWait: time.Millisecond},
	}

	def := WorkflowDefinition{
		Name:  "retry",
		Steps: []StepDefinition{{Name: "test", Tool: "ci.test", Retry: 2}},
	}

	start := time.Now()
	result, err := s.Sequencer().Execute(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Status != RunCompleted {
		t.Errorf("Status = %q, want completed", result.Status)
	}
	if result.Steps[0].Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Steps[0].Attempts)
	}
	// The default wait is a full second; the configured millisecond wait
	// keeps the retried run well under that.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("retried run took %v, configured retry_wait ignored", elapsed)
	}
}

func TestServices_AgentDefaultsBoundTheRun(t *testing.T) {
	gateway := newStubGateway()
	gateway.handle("search.web", func(params map[string]any) (any, error) {
		return "results", nil
	})
	mock := llm.NewMockClient("").WithResponses(
		`{"action": "tool", "tool": "search.web", "params": {}}`,
	)

	s := &Services{
		Gateway:  gateway,
		LLM:      mock,
		Settings: &config.Settings{MaxIterations: 2, TokenBudget: 50000},
	}

	cfg := s.AgentDefaults()
	if cfg.TokenBudget != 50000 {
		t.Errorf("TokenBudget = %d, want 50000", cfg.TokenBudget)
	}

	result, err := s.Agent().Run(context.Background(), "loop", cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != AgentMaxIterations {
		t.Errorf("Status = %s, want max_iterations_reached", result.Status)
	}
	if result.Iterations != 2 {
		t.Errorf("Iterations = %d, want the configured 2", result.Iterations)
	}
}

func TestServices_EvaluatorHonorsMinCoverage(t *testing.T) {
	coverage := 91.5
	gctx := GuardrailContext{
		QA: &QAEvidence{Executed: true, Passed: true, CoveragePercent: &coverage},
	}

	strict := &Services{Settings: &config.Settings{MinCoverage: 95}}
	if result := strict.Evaluator().Evaluate(StateVerified, gctx); result.Allowed {
		t.Error("91.5%% coverage allowed against a 95%% threshold")
	}

	// No settings: the default evaluator has no coverage gate.
	open := &Services{}
	if result := open.Evaluator().Evaluate(StateVerified, gctx); !result.Allowed {
		t.Errorf("default evaluator denied: %s", result.Reason)
	}
}
