package autoflow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Orchestration errors
var (
	// ErrTerminalState indicates a transition or execution was attempted on
	// a work item in DONE or KILLED. Never retried: reactivating finished or
	// cancelled work requires a new work item.
	ErrTerminalState = errors.New("work item is in a terminal state")

	// ErrStateConflict indicates the stored state changed since the caller
	// observed it (optimistic concurrency guard).
	ErrStateConflict = errors.New("work item state changed since observed")

	// ErrUnknownState indicates a state symbol outside the canonical set.
	ErrUnknownState = errors.New("unknown state")

	// ErrNoGateway indicates no ToolGateway was configured.
	ErrNoGateway = errors.New("no tool gateway configured")

	// ErrNoLLMClient indicates no LLM client was configured for the agent.
	ErrNoLLMClient = errors.New("no llm client configured")
)

// ValidationError rejects malformed workflow or transition input before any
// side effect. Issues lists every problem found, not just the first.
type ValidationError struct {
	Subject string   // What was validated (e.g., workflow name, "transition")
	Issues  []string // Human-readable problems
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("invalid %s: %s", e.Subject, e.Issues[0])
	}
	return fmt.Sprintf("invalid %s:\n  - %s", e.Subject, strings.Join(e.Issues, "\n  - "))
}

// TerminalStateError reports an attempted transition out of DONE or KILLED.
type TerminalStateError struct {
	ItemID string
	State  State // The terminal state the item is in
	Target State // The state the caller asked for
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("work item %s: cannot transition %s -> %s: %s is terminal",
		e.ItemID, e.State, e.Target, e.State)
}

func (e *TerminalStateError) Unwrap() error {
	return ErrTerminalState
}

// StateConflictError reports a rejected transition because the stored state
// no longer matches the state the caller observed.
type StateConflictError struct {
	ItemID   string
	Observed State
	Current  State
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("work item %s: observed state %s but current state is %s",
		e.ItemID, e.Observed, e.Current)
}

func (e *StateConflictError) Unwrap() error {
	return ErrStateConflict
}

// ToolInvocationError wraps a downstream tool failure. It is retryable up
// to the owning step's configured bound, then escalated as a step failure.
type ToolInvocationError struct {
	Provider string
	Method   string
	Attempt  int // 1-based attempt number that produced this error
	Err      error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s.%s (attempt %d): %v", e.Provider, e.Method, e.Attempt, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// TimeoutError reports an operation that exceeded its deadline.
type TimeoutError struct {
	Op      string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Op, e.Elapsed)
}

// PathError reports a `${path}` parameter reference that did not resolve
// against the execution context. Missing paths are step-level failures,
// never silently defaulted.
type PathError struct {
	Path string
	Step string
}

func (e *PathError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("step %s: context path %q not found", e.Step, e.Path)
	}
	return fmt.Sprintf("context path %q not found", e.Path)
}
