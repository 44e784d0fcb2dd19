package autoflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	llm "github.com/randalmurphal/llmkit/claude"
	"github.com/randalmurphal/llmkit/model"

	"github.com/randalmurphal/autoflow/task"
)

// =============================================================================
// Agent Types
// =============================================================================

// AgentStatus is the terminal outcome of an agent run. Every status is a
// normal termination: exhausting the iteration bound or the token budget is
// reported here, never raised as an error.
type AgentStatus string

// Agent terminal statuses.
const (
	AgentCompleted           AgentStatus = "completed"
	AgentMaxIterations       AgentStatus = "max_iterations_reached"
	AgentTokenBudgetExceeded AgentStatus = "token_budget_exceeded"
	AgentCancelled           AgentStatus = "cancelled"
)

// agentPhase tracks where the loop is between iterations.
type agentPhase string

const (
	phaseThinking agentPhase = "thinking"
	phaseToolCall agentPhase = "tool_call"
	phaseDone     agentPhase = "done"
	phaseAborted  agentPhase = "aborted"
)

// Message is one entry in an agent run's history. Roles are "system",
// "user", "assistant", and "tool".
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Tool      string    `json:"tool,omitempty"` // provider.method for tool results
	Timestamp time.Time `json:"timestamp"`
}

// AgentConfig bounds one agent run.
type AgentConfig struct {
	// SystemPrompt is prepended to the tool catalog and directive format
	// instructions.
	SystemPrompt string

	// Providers lists the tool providers whose tools are discovered and
	// offered to the model.
	Providers []string

	// MaxIterations bounds the loop. Exceeding it terminates the run with
	// AgentMaxIterations. Zero uses DefaultMaxIterations.
	MaxIterations int

	// TokenBudget bounds cumulative prompt+completion tokens. Zero means
	// unbounded.
	TokenBudget int

	// Task classifies the run for model selection. Triage and planning
	// kinds select a reasoning-tier model, extraction kinds a fast one.
	// Empty selects the default tier.
	Task task.Kind
}

// DefaultMaxIterations bounds agent runs that do not set their own limit.
const DefaultMaxIterations = 10

// AgentResult is the terminal outcome of an agent run. The full message
// history and token totals are always populated, whatever the status.
type AgentResult struct {
	Status      AgentStatus `json:"status"`
	FinalAnswer string      `json:"finalAnswer,omitempty"`
	Messages    []Message   `json:"messages"`
	Iterations  int         `json:"iterations"`
	TokensIn    int         `json:"tokensIn"`
	TokensOut   int         `json:"tokensOut"`
	Model       string      `json:"model,omitempty"` // model selected for the run's task kind
}

// =============================================================================
// Agent
// =============================================================================

// Agent is the bounded, LLM-directed tool-calling loop. Each iteration asks
// the model for the next action given the accumulated history; tool
// directives are invoked through the gateway and their results appended;
// a final answer ends the run. Iterations are strictly sequential.
type Agent struct {
	gateway   ToolGateway
	client    llm.Client
	selector  *model.Selector
	clientFor func(model.ModelName) llm.Client
	logger    *slog.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithAgentLogger sets the structured logger.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithModelSelector replaces the selector that maps a run's task kind to
// a model. The default uses the standard kind-to-tier mapping.
func WithModelSelector(selector *model.Selector) AgentOption {
	return func(a *Agent) {
		a.selector = selector
	}
}

// WithModelClients supplies a client per model. When set, each run uses
// the client for its selected model; a nil return falls back to the
// base client.
func WithModelClients(fn func(model.ModelName) llm.Client) AgentOption {
	return func(a *Agent) {
		a.clientFor = fn
	}
}

// NewAgent creates an agent that calls tools through the gateway and
// requests actions from the LLM client.
func NewAgent(gateway ToolGateway, client llm.Client, opts ...AgentOption) *Agent {
	a := &Agent{
		gateway:  gateway,
		client:   client,
		selector: task.NewSelector(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// action is the JSON directive the model emits each iteration.
type action struct {
	Action string         `json:"action"` // "tool" or "final"
	Tool   string         `json:"tool,omitempty"`
	Params map[string]any `json:"params,omitempty"`
	Answer string         `json:"answer,omitempty"`
}

// Run executes the loop seeded with the user prompt. The returned error is
// non-nil only for setup failures (missing collaborators, tool discovery);
// bound exhaustion and cancellation are statuses, not errors.
func (a *Agent) Run(ctx context.Context, prompt string, cfg AgentConfig) (*AgentResult, error) {
	if a.gateway == nil {
		return nil, ErrNoGateway
	}

	chosen := a.selector.Select(cfg.Task)
	client := a.client
	if a.clientFor != nil {
		if c := a.clientFor(chosen); c != nil {
			client = c
		}
	}
	if client == nil {
		return nil, ErrNoLLMClient
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	tools, err := a.discoverTools(ctx, cfg.Providers)
	if err != nil {
		return nil, err
	}

	systemPrompt := buildAgentSystemPrompt(cfg.SystemPrompt, tools)
	result := &AgentResult{
		Model: string(chosen),
		Messages: []Message{
			{Role: "system", Content: systemPrompt, Timestamp: time.Now()},
			{Role: "user", Content: prompt, Timestamp: time.Now()},
		},
	}

	phase := phaseThinking
	for result.Iterations < maxIterations {
		if ctx.Err() != nil {
			result.Status = AgentCancelled
			return result, nil
		}
		result.Iterations++

		response, err := client.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: systemPrompt,
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: renderHistory(result.Messages)},
			},
		})
		if err != nil {
			// Provider failure is a setup-level fault: the loop cannot make
			// progress without actions.
			result.Status = AgentCancelled
			return result, fmt.Errorf("llm completion (iteration %d): %w", result.Iterations, err)
		}

		result.TokensIn += response.Usage.InputTokens
		result.TokensOut += response.Usage.OutputTokens
		result.Messages = append(result.Messages, Message{
			Role:      "assistant",
			Content:   response.Content,
			Timestamp: time.Now(),
		})

		act := parseAction(response.Content)
		if act.Action != "tool" {
			phase = phaseDone
			result.Status = AgentCompleted
			result.FinalAnswer = act.Answer
			a.logger.Debug("agent run completed",
				"iterations", result.Iterations, "phase", phase)
			return result, nil
		}

		// The budget stops further work, never an answer already in hand:
		// a final directive above completes the run even when the response
		// that carried it crossed the budget.
		if cfg.TokenBudget > 0 && result.TokensIn+result.TokensOut >= cfg.TokenBudget {
			phase = phaseAborted
			result.Status = AgentTokenBudgetExceeded
			a.logger.Info("agent run stopped: token budget exhausted",
				"tokens", result.TokensIn+result.TokensOut, "budget", cfg.TokenBudget)
			return result, nil
		}

		phase = phaseToolCall
		a.logger.Debug("agent tool call", "tool", act.Tool, "phase", phase)
		toolMsg := a.invokeTool(ctx, act)
		result.Messages = append(result.Messages, toolMsg)
		phase = phaseThinking
	}

	phase = phaseAborted
	result.Status = AgentMaxIterations
	a.logger.Info("agent run stopped: iteration bound reached",
		"iterations", result.Iterations, "max", maxIterations, "phase", phase)
	return result, nil
}

// invokeTool calls the directed tool and renders the outcome as a tool
// message. Tool failures are fed back to the model rather than ending the
// run; the iteration bound caps how long the model may keep failing.
func (a *Agent) invokeTool(ctx context.Context, act action) Message {
	msg := Message{Role: "tool", Tool: act.Tool, Timestamp: time.Now()}

	provider, method, ok := strings.Cut(act.Tool, ".")
	if !ok || provider == "" || method == "" {
		msg.Content = fmt.Sprintf("error: tool reference %q must be \"provider.method\"", act.Tool)
		return msg
	}

	output, err := a.gateway.Call(ctx, provider, method, act.Params)
	if err != nil {
		msg.Content = "error: " + err.Error()
		return msg
	}

	rendered, err := json.Marshal(output)
	if err != nil {
		msg.Content = fmt.Sprint(output)
		return msg
	}
	msg.Content = string(rendered)
	return msg
}

// discoverTools collects the tool catalog from each configured provider.
func (a *Agent) discoverTools(ctx context.Context, providers []string) (map[string][]ToolSpec, error) {
	tools := make(map[string][]ToolSpec, len(providers))
	for _, provider := range providers {
		specs, err := a.gateway.Discover(ctx, provider)
		if err != nil {
			return nil, fmt.Errorf("discover tools for %s: %w", provider, err)
		}
		tools[provider] = specs
	}
	return tools, nil
}

// buildAgentSystemPrompt renders the base prompt, the tool catalog, and the
// directive format the model must follow.
func buildAgentSystemPrompt(base string, tools map[string][]ToolSpec) string {
	var b strings.Builder
	if base != "" {
		b.WriteString(base)
		b.WriteString("\n\n")
	}

	b.WriteString("You have the following tools available:\n")
	for provider, specs := range tools {
		for _, spec := range specs {
			b.WriteString(fmt.Sprintf("- %s.%s", provider, spec.Name))
			if spec.Description != "" {
				b.WriteString(": " + spec.Description)
			}
			if len(spec.InputSchema) > 0 {
				if schema, err := json.Marshal(spec.InputSchema); err == nil {
					b.WriteString(" (input schema: " + string(schema) + ")")
				}
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nRespond with exactly one JSON object per turn:\n")
	b.WriteString(`  {"action": "tool", "tool": "provider.method", "params": {...}}` + "\n")
	b.WriteString(`  {"action": "final", "answer": "..."}` + "\n")
	b.WriteString("Call tools until you can answer, then emit the final action.")
	return b.String()
}

// renderHistory flattens the run history into a single user message for
// the completion request.
func renderHistory(messages []Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}
		switch msg.Role {
		case "tool":
			b.WriteString(fmt.Sprintf("[tool %s result]\n%s\n\n", msg.Tool, msg.Content))
		default:
			b.WriteString(fmt.Sprintf("[%s]\n%s\n\n", msg.Role, msg.Content))
		}
	}
	b.WriteString("What is your next action?")
	return b.String()
}

// parseAction extracts the JSON directive from the model's response. A
// response with no parseable directive is treated as a final answer so a
// chatty model degrades gracefully instead of crashing the run.
func parseAction(content string) action {
	trimmed := strings.TrimSpace(content)

	// Strip a fenced code block if present.
	if strings.HasPrefix(trimmed, "```") {
		if start := strings.Index(trimmed, "\n"); start >= 0 {
			trimmed = trimmed[start+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var act action
	if err := json.Unmarshal([]byte(trimmed), &act); err == nil && act.Action != "" {
		return act
	}

	// Look for an embedded JSON object.
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			if err := json.Unmarshal([]byte(trimmed[start:end+1]), &act); err == nil && act.Action != "" {
				return act
			}
		}
	}

	return action{Action: "final", Answer: content}
}
