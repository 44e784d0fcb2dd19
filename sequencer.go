package autoflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/autoflow/notify"
)

// =============================================================================
// Workflow Definitions
// =============================================================================

// StepDefinition declares one step of a workflow.
type StepDefinition struct {
	// Name identifies the step within its workflow.
	Name string `yaml:"name" json:"name"`

	// Tool references the provider method to invoke as "provider.method".
	Tool string `yaml:"tool" json:"tool"`

	// Params are the tool parameters. String values may reference earlier
	// context values with ${path}.
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`

	// Assign writes the tool result into the context at this path for use
	// by later steps.
	Assign string `yaml:"assign,omitempty" json:"assign,omitempty"`

	// Retry is the maximum number of attempts (including the first).
	// Zero means a single attempt.
	Retry int `yaml:"retry,omitempty" json:"retry,omitempty"`

	// ContinueOnError records the step as failed and proceeds instead of
	// aborting the run when all attempts are exhausted.
	ContinueOnError bool `yaml:"continueOnError,omitempty" json:"continueOnError,omitempty"`

	// Condition skips the step when it evaluates false.
	Condition *Condition `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// toolRef splits the "provider.method" reference.
func (s StepDefinition) toolRef() (provider, method string, ok bool) {
	provider, method, ok = strings.Cut(s.Tool, ".")
	if provider == "" || method == "" {
		return "", "", false
	}
	return provider, method, ok
}

// WorkflowDefinition is an ordered list of declared steps.
type WorkflowDefinition struct {
	Name  string           `yaml:"name" json:"name"`
	Steps []StepDefinition `yaml:"steps" json:"steps"`
}

// Validate checks the definition before any execution. It returns a
// *ValidationError listing every problem found, or nil.
func (d WorkflowDefinition) Validate() error {
	var issues []string
	if d.Name == "" {
		issues = append(issues, "workflow name is required")
	}
	if len(d.Steps) == 0 {
		issues = append(issues, "workflow has no steps")
	}
	seen := make(map[string]bool, len(d.Steps))
	for i, step := range d.Steps {
		where := fmt.Sprintf("step %d (%s)", i, step.Name)
		if step.Name == "" {
			issues = append(issues, fmt.Sprintf("step %d: name is required", i))
		} else if seen[step.Name] {
			issues = append(issues, fmt.Sprintf("%s: duplicate step name", where))
		}
		seen[step.Name] = true
		if _, _, ok := step.toolRef(); !ok {
			issues = append(issues, fmt.Sprintf("%s: tool must be \"provider.method\", got %q", where, step.Tool))
		}
		if step.Retry < 0 {
			issues = append(issues, fmt.Sprintf("%s: retry must not be negative", where))
		}
		if step.Condition != nil {
			for _, issue := range step.Condition.Validate() {
				issues = append(issues, fmt.Sprintf("%s: %s", where, issue))
			}
		}
	}
	if len(issues) > 0 {
		subject := "workflow"
		if d.Name != "" {
			subject = "workflow " + d.Name
		}
		return &ValidationError{Subject: subject, Issues: issues}
	}
	return nil
}

// =============================================================================
// Execution Results
// =============================================================================

// StepStatus is the recorded outcome of one step.
type StepStatus string

// Step outcome constants.
const (
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// RunStatus is the overall outcome of a workflow run.
type RunStatus string

// Run outcome constants. Partial means the run reached the end but some
// continue-on-error step failed.
const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunPartial   RunStatus = "partial"
	RunCancelled RunStatus = "cancelled"
)

// StepResult records one step's outcome.
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Attempts int           `json:"attempts"`          // Total attempts made
	Retries  int           `json:"retries"`           // Attempts beyond the first
	Output   any           `json:"output,omitempty"`  // Final tool result on success
	Error    string        `json:"error,omitempty"`   // Last error on failure
	Skipped  string        `json:"skipped,omitempty"` // Condition that evaluated false
	Duration time.Duration `json:"duration"`
}

// ExecutionResult aggregates a workflow run.
type ExecutionResult struct {
	Workflow    string         `json:"workflow"`
	Status      RunStatus      `json:"status"`
	Steps       []StepResult   `json:"steps"`
	FailedCount int            `json:"failedCount"`
	Duration    time.Duration  `json:"duration"`
	Context     map[string]any `json:"context,omitempty"` // Final context snapshot
}

// =============================================================================
// Sequencer
// =============================================================================

// DefaultRetryWait is the fixed interval between retry attempts. Backoff is
// deliberately fixed rather than exponential: step retry bounds are small
// and the bound, not the spacing, is the safety mechanism.
const DefaultRetryWait = 1 * time.Second

// Sequencer executes workflow definitions strictly in declared step order
// against one execution context. It never runs two steps concurrently
// within one run; independent runs are isolated and may proceed in
// parallel, sharing only the gateway.
type Sequencer struct {
	gateway   ToolGateway
	retryWait time.Duration
	logger    *slog.Logger
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithRetryWait overrides the fixed interval between retry attempts.
func WithRetryWait(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		s.retryWait = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// NewSequencer creates a sequencer that invokes tools through the gateway.
func NewSequencer(gateway ToolGateway, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		gateway:   gateway,
		retryWait: DefaultRetryWait,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the workflow against a context seeded with initial values.
//
// The returned error is non-nil only for problems that prevent execution
// from starting (missing gateway, validation failure). Runtime outcomes,
// including failures and cancellation, are encoded in the result so every
// step executed so far is preserved.
func (s *Sequencer) Execute(ctx context.Context, def WorkflowDefinition, initial map[string]any) (*ExecutionResult, error) {
	if s.gateway == nil {
		return nil, ErrNoGateway
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	ec := NewExecutionContext(initial)
	result := &ExecutionResult{
		Workflow: def.Name,
		Status:   RunCompleted,
		Steps:    make([]StepResult, 0, len(def.Steps)),
	}

	s.notifyRun(ctx, notify.EventRunStarted, def.Name, notify.SeverityInfo, "")

	for _, step := range def.Steps {
		// Cancellation is polled between steps; an in-flight call is never
		// forcibly aborted, but nothing further is scheduled.
		if ctx.Err() != nil {
			result.Status = RunCancelled
			break
		}

		stepResult := s.executeStep(ctx, step, ec)
		result.Steps = append(result.Steps, stepResult)

		switch stepResult.Status {
		case StepSkipped:
			// Skips never count toward failures.
		case StepFailed:
			result.FailedCount++
			if !step.ContinueOnError {
				result.Status = RunFailed
			}
		}
		if result.Status == RunFailed {
			break
		}
	}

	if result.Status == RunCompleted && result.FailedCount > 0 {
		result.Status = RunPartial
	}
	result.Duration = time.Since(start)
	result.Context = ec.Snapshot()

	eventType := notify.EventRunCompleted
	severity := notify.SeverityInfo
	if result.Status == RunFailed {
		eventType = notify.EventRunFailed
		severity = notify.SeverityError
	}
	s.notifyRun(ctx, eventType, def.Name, severity, string(result.Status))

	s.logger.Debug("workflow run finished",
		"workflow", def.Name,
		"status", result.Status,
		"steps", len(result.Steps),
		"failed", result.FailedCount,
		"duration", result.Duration)

	return result, nil
}

// ExecuteStep runs a single step against the given context, honoring its
// condition, retry bound, and assignment. The graph adapter uses this to
// run declared steps as individual flowgraph nodes.
func (s *Sequencer) ExecuteStep(ctx context.Context, step StepDefinition, ec *ExecutionContext) StepResult {
	return s.executeStep(ctx, step, ec)
}

func (s *Sequencer) executeStep(ctx context.Context, step StepDefinition, ec *ExecutionContext) StepResult {
	start := time.Now()
	result := StepResult{Name: step.Name}

	if step.Condition != nil && !step.Condition.Eval(ec) {
		result.Status = StepSkipped
		result.Skipped = step.Condition.String()
		result.Duration = time.Since(start)
		s.logger.Debug("step skipped", "step", step.Name, "condition", result.Skipped)
		return result
	}

	provider, method, _ := step.toolRef()

	params, err := ec.ResolveParams(step.Params)
	if err != nil {
		if pathErr, ok := err.(*PathError); ok {
			pathErr.Step = step.Name
		}
		result.Status = StepFailed
		result.Attempts = 1
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	attempts := step.Retry
	if attempts < 1 {
		attempts = 1
	}

	var output any
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt
		output, lastErr = s.gateway.Call(ctx, provider, method, params)
		if lastErr == nil {
			break
		}
		lastErr = &ToolInvocationError{
			Provider: provider,
			Method:   method,
			Attempt:  attempt,
			Err:      lastErr,
		}
		s.logger.Warn("step attempt failed",
			"step", step.Name, "attempt", attempt, "of", attempts, "error", lastErr)

		if attempt < attempts {
			if !s.waitRetry(ctx) {
				break
			}
		}
	}
	result.Retries = result.Attempts - 1

	if lastErr != nil {
		result.Status = StepFailed
		result.Error = lastErr.Error()
		result.Duration = time.Since(start)
		return result
	}

	if step.Assign != "" {
		if err := ec.Set(step.Assign, output); err != nil {
			result.Status = StepFailed
			result.Error = err.Error()
			result.Duration = time.Since(start)
			return result
		}
	}

	result.Status = StepSuccess
	result.Output = output
	result.Duration = time.Since(start)
	return result
}

// waitRetry sleeps the fixed retry interval, returning false if the run
// was cancelled while waiting.
func (s *Sequencer) waitRetry(ctx context.Context) bool {
	if s.retryWait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.retryWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Sequencer) notifyRun(ctx context.Context, eventType notify.EventType, workflow string, severity, message string) {
	notifier := notify.NotifierFromContext(ctx)
	if notifier == nil {
		return
	}
	_ = notifier.Notify(ctx, notify.Event{
		Type:      eventType,
		FlowID:    workflow,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
	})
}
