package autoflow

import (
	"context"

	llm "github.com/randalmurphal/llmkit/claude"

	"github.com/randalmurphal/autoflow/config"
	"github.com/randalmurphal/autoflow/journal"
	"github.com/randalmurphal/autoflow/prompt"
)

// =============================================================================
// Context Injection Helpers
// =============================================================================
// These helpers allow autoflow services to be injected into context.Context
// for use by workflow nodes and agents.

// serviceContextKey is a private type for context keys to avoid collisions
type serviceContextKey string

// Context keys for autoflow services
const (
	gatewayServiceKey serviceContextKey = "autoflow.gateway"
	llmServiceKey     serviceContextKey = "autoflow.llm"
	journalServiceKey serviceContextKey = "autoflow.journal"
	promptServiceKey  serviceContextKey = "autoflow.prompts"
)

// WithToolGateway adds a ToolGateway to the context
func WithToolGateway(ctx context.Context, gateway ToolGateway) context.Context {
	return context.WithValue(ctx, gatewayServiceKey, gateway)
}

// ToolGatewayFromContext extracts ToolGateway from context
func ToolGatewayFromContext(ctx context.Context) ToolGateway {
	if gateway, ok := ctx.Value(gatewayServiceKey).(ToolGateway); ok {
		return gateway
	}
	return nil
}

// MustToolGatewayFromContext extracts ToolGateway or panics
func MustToolGatewayFromContext(ctx context.Context) ToolGateway {
	gateway := ToolGatewayFromContext(ctx)
	if gateway == nil {
		panic("autoflow: ToolGateway not found in context")
	}
	return gateway
}

// WithLLMClient adds an LLM client to the context.
// This uses flowgraph's llm.Client interface.
func WithLLMClient(ctx context.Context, client llm.Client) context.Context {
	return context.WithValue(ctx, llmServiceKey, client)
}

// LLMFromContext extracts the LLM client from context.
func LLMFromContext(ctx context.Context) llm.Client {
	if client, ok := ctx.Value(llmServiceKey).(llm.Client); ok {
		return client
	}
	return nil
}

// MustLLMFromContext extracts the LLM client or panics.
func MustLLMFromContext(ctx context.Context) llm.Client {
	client := LLMFromContext(ctx)
	if client == nil {
		panic("autoflow: llm.Client not found in context")
	}
	return client
}

// WithJournal adds a journal.Manager to the context
func WithJournal(ctx context.Context, mgr journal.Manager) context.Context {
	return context.WithValue(ctx, journalServiceKey, mgr)
}

// JournalFromContext extracts journal.Manager from context
func JournalFromContext(ctx context.Context) journal.Manager {
	if mgr, ok := ctx.Value(journalServiceKey).(journal.Manager); ok {
		return mgr
	}
	return nil
}

// MustJournalFromContext extracts journal.Manager or panics
func MustJournalFromContext(ctx context.Context) journal.Manager {
	mgr := JournalFromContext(ctx)
	if mgr == nil {
		panic("autoflow: journal.Manager not found in context")
	}
	return mgr
}

// WithPromptLoader adds a prompt.Loader to the context
func WithPromptLoader(ctx context.Context, loader *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, loader)
}

// PromptLoaderFromContext extracts prompt.Loader from context
func PromptLoaderFromContext(ctx context.Context) *prompt.Loader {
	if loader, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return loader
	}
	return nil
}

// MustPromptLoaderFromContext extracts prompt.Loader or panics
func MustPromptLoaderFromContext(ctx context.Context) *prompt.Loader {
	loader := PromptLoaderFromContext(ctx)
	if loader == nil {
		panic("autoflow: prompt.Loader not found in context")
	}
	return loader
}

// Services wraps all autoflow services for convenient initialization
type Services struct {
	Gateway  ToolGateway
	LLM      llm.Client // flowgraph llm.Client interface
	Journals journal.Manager
	Prompts  *prompt.Loader
	Settings *config.Settings // resolved configuration, nil when none supplied
}

// InjectAll adds all configured services to the context
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Gateway != nil {
		ctx = WithToolGateway(ctx, s.Gateway)
	}
	if s.LLM != nil {
		ctx = WithLLMClient(ctx, s.LLM)
	}
	if s.Journals != nil {
		ctx = WithJournal(ctx, s.Journals)
	}
	if s.Prompts != nil {
		ctx = WithPromptLoader(ctx, s.Prompts)
	}
	return ctx
}

// ServicesConfig configures NewServices
type ServicesConfig struct {
	Gateway   ToolGateway      // Tool gateway (required for sequencer and agent runs)
	LLM       llm.Client       // LLM client for agent loops
	BaseDir   string           // Base directory for storage (default: Settings.JournalDir, then ".autoflow")
	PromptDir string           // Directory for prompt templates (default: Settings.PromptDir)
	Settings  *config.Settings // Resolved configuration; explicit fields above win over it
}

// NewServices creates Services with common defaults. Settings fill in the
// storage directories and seed the runtime bounds returned by the service
// constructors; pass config.LoadSettings() output to honor the standard
// configuration layers.
func NewServices(cfg ServicesConfig) (*Services, error) {
	s := &Services{
		Gateway:  cfg.Gateway,
		LLM:      cfg.LLM,
		Settings: cfg.Settings,
	}

	baseDir := cfg.BaseDir
	if baseDir == "" && cfg.Settings != nil {
		baseDir = cfg.Settings.JournalDir
	}
	if baseDir == "" {
		baseDir = ".autoflow"
	}

	journals, err := journal.NewFileStore(journal.StoreConfig{BaseDir: baseDir})
	if err != nil {
		return nil, err
	}
	s.Journals = journals

	promptDir := cfg.PromptDir
	if promptDir == "" && cfg.Settings != nil {
		promptDir = cfg.Settings.PromptDir
	}
	s.Prompts = prompt.NewLoader(".")
	if promptDir != "" {
		s.Prompts.AddSearchDir(promptDir)
	}

	return s, nil
}

// Sequencer builds a sequencer on the configured gateway. The configured
// retry_wait applies unless an option overrides it.
func (s *Services) Sequencer(opts ...SequencerOption) *Sequencer {
	var all []SequencerOption
	if s.Settings != nil && s.Settings.RetryWait > 0 {
		all = append(all, WithRetryWait(s.Settings.RetryWait))
	}
	all = append(all, opts...)
	return NewSequencer(s.Gateway, all...)
}

// Agent builds an agent on the configured gateway and LLM client.
func (s *Services) Agent(opts ...AgentOption) *Agent {
	return NewAgent(s.Gateway, s.LLM, opts...)
}

// AgentDefaults returns an AgentConfig seeded with the configured
// iteration and token bounds.
func (s *Services) AgentDefaults() AgentConfig {
	var cfg AgentConfig
	if s.Settings != nil {
		cfg.MaxIterations = s.Settings.MaxIterations
		cfg.TokenBudget = s.Settings.TokenBudget
	}
	return cfg
}

// Evaluator builds a guardrail evaluator honoring the configured
// min_coverage threshold.
func (s *Services) Evaluator() *Evaluator {
	if s.Settings != nil && s.Settings.MinCoverage > 0 {
		return NewEvaluator(WithMinCoverage(s.Settings.MinCoverage))
	}
	return NewEvaluator()
}
