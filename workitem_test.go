package autoflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/randalmurphal/autoflow/notify"
)

func advance(t *testing.T, item *WorkItem, to State, evidence GuardrailContext) {
	t.Helper()
	outcome, err := item.AttemptTransition(context.Background(), to, TransitionRequest{
		Observed: item.CurrentState(),
		Actor:    "test",
		Evidence: evidence,
	})
	if err != nil {
		t.Fatalf("AttemptTransition(%s) error = %v", to, err)
	}
	if !outcome.Applied {
		t.Fatalf("AttemptTransition(%s) not applied: %s", to, outcome.Result.Reason)
	}
}

// =============================================================================
// WorkItem Tests
// =============================================================================

func TestNewWorkItem(t *testing.T) {
	item := NewWorkItem("add login page")

	if item.ID == "" {
		t.Error("ID should be generated")
	}
	if item.CurrentState() != StateCreated {
		t.Errorf("CurrentState() = %s, want CREATED", item.CurrentState())
	}
	if len(item.History()) != 0 {
		t.Errorf("History() = %d records, want 0", len(item.History()))
	}

	other := NewWorkItem("other")
	if other.ID == item.ID {
		t.Error("IDs should be unique")
	}
}

func TestAttemptTransition_Applied(t *testing.T) {
	item := NewWorkItem("feature")

	outcome, err := item.AttemptTransition(context.Background(), StateSpecReady, TransitionRequest{
		Observed: StateCreated,
		Actor:    "planner",
		Evidence: GuardrailContext{Specification: fullSpecEvidence()},
	})
	if err != nil {
		t.Fatalf("AttemptTransition() error = %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("Applied = false: %s", outcome.Result.Reason)
	}

	if item.CurrentState() != StateSpecReady {
		t.Errorf("CurrentState() = %s, want SPEC_READY", item.CurrentState())
	}

	history := item.History()
	if len(history) != 1 {
		t.Fatalf("History() = %d records, want 1", len(history))
	}
	record := history[0]
	if record.From != StateCreated || record.To != StateSpecReady {
		t.Errorf("record = %s -> %s, want CREATED -> SPEC_READY", record.From, record.To)
	}
	if record.Actor != "planner" {
		t.Errorf("Actor = %s, want planner", record.Actor)
	}
	if record.At.IsZero() {
		t.Error("At should be set")
	}
	if outcome.Record == nil {
		t.Error("outcome.Record should be set")
	}
}

func TestAttemptTransition_GuardrailDenial(t *testing.T) {
	item := NewWorkItem("feature")
	spec := fullSpecEvidence()
	spec.IsComplete = false

	// A denial is a deliberate halt: no error, populated result, no mutation.
	outcome, err := item.AttemptTransition(context.Background(), StateSpecReady, TransitionRequest{
		Observed: StateCreated,
		Actor:    "planner",
		Evidence: GuardrailContext{Specification: spec},
	})
	if err != nil {
		t.Fatalf("AttemptTransition() error = %v, want nil for guardrail denial", err)
	}
	if outcome.Applied {
		t.Error("Applied = true, want false")
	}
	if outcome.Result.Reason == "" {
		t.Error("Result.Reason should explain the denial")
	}

	if item.CurrentState() != StateCreated {
		t.Errorf("CurrentState() = %s, want CREATED (unchanged)", item.CurrentState())
	}
	if len(item.History()) != 0 {
		t.Errorf("History() = %d records, want 0 (denials never recorded)", len(item.History()))
	}
}

func TestAttemptTransition_StateConflict(t *testing.T) {
	item := NewWorkItem("feature")
	advance(t, item, StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})

	// Caller still believes the item is CREATED.
	_, err := item.AttemptTransition(context.Background(), StateSpecReady, TransitionRequest{
		Observed: StateCreated,
		Actor:    "stale-caller",
		Evidence: GuardrailContext{Specification: fullSpecEvidence()},
	})
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("error = %v, want ErrStateConflict", err)
	}

	var conflict *StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatal("error should be *StateConflictError")
	}
	if conflict.Observed != StateCreated || conflict.Current != StateSpecReady {
		t.Errorf("conflict = observed %s, current %s", conflict.Observed, conflict.Current)
	}
}

func TestAttemptTransition_TerminalImmutable(t *testing.T) {
	item := NewWorkItem("feature")
	advance(t, item, StateKilled, GuardrailContext{})

	historyBefore := len(item.History())

	// Every transition out of a terminal state is rejected, whatever the
	// target or the evidence.
	for _, to := range States() {
		outcome, err := item.AttemptTransition(context.Background(), to, TransitionRequest{
			Observed: StateKilled,
			Actor:    "necromancer",
			Evidence: GuardrailContext{Specification: fullSpecEvidence()},
		})
		if !errors.Is(err, ErrTerminalState) {
			t.Errorf("transition to %s: error = %v, want ErrTerminalState", to, err)
		}
		if outcome.Applied {
			t.Errorf("transition to %s: Applied = true, want false", to)
		}
	}

	if item.CurrentState() != StateKilled {
		t.Errorf("CurrentState() = %s, want KILLED", item.CurrentState())
	}
	if len(item.History()) != historyBefore {
		t.Error("history changed after rejected transitions")
	}
}

func TestAttemptTransition_FullLifecycle(t *testing.T) {
	item := NewWorkItem("feature")

	advance(t, item, StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})
	advance(t, item, StateImplementing, GuardrailContext{})
	advance(t, item, StateVerified, GuardrailContext{QA: &QAEvidence{Executed: true, Passed: true}})
	advance(t, item, StateMergeReady, GuardrailContext{Merge: fullMergeEvidence()})
	advance(t, item, StateDone, GuardrailContext{})

	if item.CurrentState() != StateDone {
		t.Errorf("CurrentState() = %s, want DONE", item.CurrentState())
	}

	history := item.History()
	if len(history) != 5 {
		t.Fatalf("History() = %d records, want 5", len(history))
	}
	// Each record's From chains to the previous record's To.
	for i := 1; i < len(history); i++ {
		if history[i].From != history[i-1].To {
			t.Errorf("record %d: From = %s, want %s", i, history[i].From, history[i-1].To)
		}
	}
}

func TestAttemptTransition_HoldRoundTrip(t *testing.T) {
	item := NewWorkItem("feature")
	advance(t, item, StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})
	advance(t, item, StateHold, GuardrailContext{})
	advance(t, item, StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})

	if item.CurrentState() != StateSpecReady {
		t.Errorf("CurrentState() = %s, want SPEC_READY", item.CurrentState())
	}
}

func TestAttemptTransition_InvalidRequest(t *testing.T) {
	item := NewWorkItem("feature")

	_, err := item.AttemptTransition(context.Background(), "BOGUS", TransitionRequest{Observed: StateCreated})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error = %v, want *ValidationError", err)
	}

	_, err = item.AttemptTransition(context.Background(), StateSpecReady, TransitionRequest{})
	if !errors.As(err, &verr) {
		t.Errorf("error = %v, want *ValidationError for missing observed state", err)
	}
}

func TestAttemptTransition_ConcurrentSingleWinner(t *testing.T) {
	item := NewWorkItem("feature")

	const goroutines = 16
	var wg sync.WaitGroup
	applied := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := item.AttemptTransition(context.Background(), StateSpecReady, TransitionRequest{
				Observed: StateCreated,
				Actor:    "racer",
				Evidence: GuardrailContext{Specification: fullSpecEvidence()},
			})
			if err == nil && outcome.Applied {
				applied <- true
			}
		}()
	}
	wg.Wait()
	close(applied)

	wins := 0
	for range applied {
		wins++
	}
	if wins != 1 {
		t.Errorf("applied transitions = %d, want exactly 1", wins)
	}
	if len(item.History()) != 1 {
		t.Errorf("History() = %d records, want 1", len(item.History()))
	}
}

// =============================================================================
// Progression Tests
// =============================================================================

func TestAttemptProgression(t *testing.T) {
	item := NewWorkItem("feature")

	outcome, err := item.AttemptProgression(context.Background(), TransitionRequest{
		Actor:    "scheduler",
		Evidence: GuardrailContext{Specification: fullSpecEvidence()},
	})
	if err != nil {
		t.Fatalf("AttemptProgression() error = %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("Applied = false: %s", outcome.Result.Reason)
	}
	if item.CurrentState() != StateSpecReady {
		t.Errorf("CurrentState() = %s, want SPEC_READY", item.CurrentState())
	}
}

func TestAttemptProgression_Blocked(t *testing.T) {
	item := NewWorkItem("feature")

	outcome, err := item.AttemptProgression(context.Background(), TransitionRequest{
		Actor:    "scheduler",
		Evidence: GuardrailContext{},
	})
	if err != nil {
		t.Fatalf("AttemptProgression() error = %v", err)
	}
	if outcome.Applied {
		t.Error("Applied = true with no evidence, want false")
	}
	if item.CurrentState() != StateCreated {
		t.Errorf("CurrentState() = %s, want CREATED", item.CurrentState())
	}
}

func TestAttemptProgression_Terminal(t *testing.T) {
	item := NewWorkItem("feature")
	advance(t, item, StateKilled, GuardrailContext{})

	_, err := item.AttemptProgression(context.Background(), TransitionRequest{Actor: "scheduler"})
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("error = %v, want ErrTerminalState", err)
	}
}

// =============================================================================
// Notification Tests
// =============================================================================

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(ctx context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

func TestAttemptTransition_Notifications(t *testing.T) {
	notifier := &recordingNotifier{}
	ctx := notify.WithNotifier(context.Background(), notifier)

	item := NewWorkItem("feature")

	item.AttemptTransition(ctx, StateSpecReady, TransitionRequest{
		Observed: StateCreated,
		Evidence: GuardrailContext{Specification: fullSpecEvidence()},
	})
	item.AttemptTransition(ctx, StateVerified, TransitionRequest{
		Observed: StateSpecReady,
		Evidence: GuardrailContext{},
	})

	events := notifier.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != notify.EventTransitionApplied {
		t.Errorf("events[0].Type = %s, want transition_applied", events[0].Type)
	}
	if events[0].Metadata["from"] != "CREATED" || events[0].Metadata["to"] != "SPEC_READY" {
		t.Errorf("events[0].Metadata = %v", events[0].Metadata)
	}
	if events[1].Type != notify.EventTransitionBlocked {
		t.Errorf("events[1].Type = %s, want transition_blocked", events[1].Type)
	}
}
