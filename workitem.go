package autoflow

import (
	"context"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/autoflow/notify"
)

// TransitionRecord captures one applied transition. Records are immutable
// once appended to a work item's history.
type TransitionRecord struct {
	From       State            `json:"from"`
	To         State            `json:"to"`
	At         time.Time        `json:"at"`
	Actor      string           `json:"actor"`
	Evidence   GuardrailContext `json:"evidence"`
	Conditions []ConditionCheck `json:"conditions,omitempty"`
}

// WorkItem is the unit of work tracked through the canonical state
// machine. It is owned exclusively by the orchestration core and mutated
// only through a successful AttemptTransition.
//
// Concurrent AttemptTransition calls against the same item are serialized
// by a per-item mutex; the Observed field of the request acts as an
// optimistic-concurrency guard on top of that.
type WorkItem struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`

	mu      sync.Mutex
	state   State
	history []TransitionRecord
}

// NewWorkItem creates a work item in CREATED with a generated ID.
func NewWorkItem(title string) *WorkItem {
	id, err := nanoid.New()
	if err != nil {
		// nanoid only fails when the system randomness source is broken.
		panic("autoflow: generate work item id: " + err.Error())
	}
	return &WorkItem{
		ID:    id,
		Title: title,
		state: StateCreated,
	}
}

// CurrentState returns the item's current state.
func (w *WorkItem) CurrentState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// History returns a copy of the item's transition records in append order.
func (w *WorkItem) History() []TransitionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	records := make([]TransitionRecord, len(w.history))
	copy(records, w.history)
	return records
}

// TransitionRequest carries everything needed to attempt a transition.
type TransitionRequest struct {
	// Observed is the state the caller last read. The transition is
	// rejected with StateConflictError if the stored state has moved on.
	Observed State

	// Actor identifies who or what initiated the transition.
	Actor string

	// Evidence is the guardrail evidence bundle for the target state.
	Evidence GuardrailContext

	// Evaluator overrides the default guardrail evaluator when set.
	Evaluator *Evaluator
}

// TransitionOutcome is the structured result of a transition attempt.
// Applied is false for guardrail denials (Result explains why) and for
// errors; it is true only when the state changed and a record was appended.
type TransitionOutcome struct {
	Applied bool              `json:"applied"`
	Result  GuardrailResult   `json:"result"`
	Record  *TransitionRecord `json:"record,omitempty"`
}

// AttemptTransition tries to move the item to the target state.
//
// The state update and history append happen atomically under the item's
// lock. Three distinct failure shapes exist:
//
//   - terminal source state: TerminalStateError, nothing changes
//   - observed-state mismatch: StateConflictError, nothing changes
//   - guardrail denial: Applied=false with a populated Result and no error
//     (a block is a deliberate halt the caller branches on, not a fault)
//
// A notify.Notifier found in ctx receives a transition_applied or
// transition_blocked event; notification failures never affect the outcome.
func (w *WorkItem) AttemptTransition(ctx context.Context, to State, req TransitionRequest) (TransitionOutcome, error) {
	if issues := validateTransitionRequest(to, req); len(issues) > 0 {
		return TransitionOutcome{}, &ValidationError{Subject: "transition", Issues: issues}
	}

	evaluator := req.Evaluator
	if evaluator == nil {
		evaluator = defaultEvaluator
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if IsTerminal(w.state) {
		err := &TerminalStateError{ItemID: w.ID, State: w.state, Target: to}
		outcome := TransitionOutcome{
			Applied: false,
			Result:  GuardrailResult{Allowed: false, Reason: err.Error()},
		}
		w.notifyLocked(ctx, notify.EventTransitionBlocked, w.state, to, err.Error())
		return outcome, err
	}

	if w.state != req.Observed {
		return TransitionOutcome{}, &StateConflictError{
			ItemID:   w.ID,
			Observed: req.Observed,
			Current:  w.state,
		}
	}

	from := w.state
	result := evaluator.ValidateStateTransition(from, to, req.Evidence)
	if !result.Allowed {
		w.notifyLocked(ctx, notify.EventTransitionBlocked, from, to, result.Reason)
		return TransitionOutcome{Applied: false, Result: result}, nil
	}

	record := TransitionRecord{
		From:       from,
		To:         to,
		At:         time.Now(),
		Actor:      req.Actor,
		Evidence:   req.Evidence,
		Conditions: result.Conditions,
	}
	w.state = to
	w.history = append(w.history, record)

	w.notifyLocked(ctx, notify.EventTransitionApplied, from, to, "")
	return TransitionOutcome{Applied: true, Result: result, Record: &record}, nil
}

// AttemptProgression tries to advance the item along the canonical forward
// path using its current state as the observed state. It is the typical
// call site after a workflow run or agent run produces fresh evidence.
func (w *WorkItem) AttemptProgression(ctx context.Context, req TransitionRequest) (TransitionOutcome, error) {
	evaluator := req.Evaluator
	if evaluator == nil {
		evaluator = defaultEvaluator
	}

	current := w.CurrentState()
	progression := evaluator.EvaluateNextStateProgression(current, req.Evidence)
	if !progression.HasNext {
		if IsTerminal(current) {
			err := &TerminalStateError{ItemID: w.ID, State: current, Target: current}
			return TransitionOutcome{Applied: false, Result: progression.Result}, err
		}
		return TransitionOutcome{Applied: false, Result: progression.Result}, nil
	}

	req.Observed = current
	return w.AttemptTransition(ctx, progression.Next, req)
}

func validateTransitionRequest(to State, req TransitionRequest) []string {
	var issues []string
	if !IsValidState(to) {
		issues = append(issues, "target state "+string(to)+" is not a canonical state")
	}
	if req.Observed == "" {
		issues = append(issues, "observed state is required")
	} else if !IsValidState(req.Observed) {
		issues = append(issues, "observed state "+string(req.Observed)+" is not a canonical state")
	}
	return issues
}

// notifyLocked emits a transition event if a notifier is configured.
// Called with w.mu held; the notifier contract requires non-blocking sends.
func (w *WorkItem) notifyLocked(ctx context.Context, eventType notify.EventType, from, to State, reason string) {
	notifier := notify.NotifierFromContext(ctx)
	if notifier == nil {
		return
	}

	severity := notify.SeverityInfo
	message := "transition applied"
	if eventType == notify.EventTransitionBlocked {
		severity = notify.SeverityWarning
		message = reason
	}

	_ = notifier.Notify(ctx, notify.Event{
		Type:      eventType,
		ItemID:    w.ID,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"from": string(from),
			"to":   string(to),
		},
	})
}
