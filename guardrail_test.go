package autoflow

import (
	"reflect"
	"testing"
)

func fullSpecEvidence() *SpecificationEvidence {
	return &SpecificationEvidence{
		Exists:                true,
		IsComplete:            true,
		HasRequirements:       true,
		HasAcceptanceCriteria: true,
	}
}

func fullMergeEvidence() *MergeEvidence {
	return &MergeEvidence{
		HasChanges:        true,
		ConflictsResolved: true,
		ReviewsApproved:   true,
		CIPassing:         true,
	}
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func TestEvaluate_SpecReady_AllPass(t *testing.T) {
	result := Evaluate(StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})

	if !result.Allowed {
		t.Errorf("Allowed = false, want true (reason: %s)", result.Reason)
	}
	if len(result.Conditions) != 4 {
		t.Errorf("Conditions = %d, want 4", len(result.Conditions))
	}
	for _, c := range result.Conditions {
		if !c.Passed {
			t.Errorf("condition %s failed, want passed", c.Name)
		}
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want empty", result.Suggestions)
	}
}

func TestEvaluate_SpecReady_IncompleteSpec(t *testing.T) {
	spec := fullSpecEvidence()
	spec.IsComplete = false

	result := Evaluate(StateSpecReady, GuardrailContext{Specification: spec})

	if result.Allowed {
		t.Error("Allowed = true, want false")
	}

	var failed *ConditionCheck
	for i, c := range result.Conditions {
		if !c.Passed {
			if failed != nil {
				t.Errorf("multiple failed conditions, want only spec_complete")
			}
			failed = &result.Conditions[i]
		}
	}
	if failed == nil {
		t.Fatal("no failed condition, want spec_complete")
	}
	if failed.Name != "spec_complete" {
		t.Errorf("failed condition = %s, want spec_complete", failed.Name)
	}

	want := "Complete all sections of the specification"
	if len(result.Suggestions) != 1 || result.Suggestions[0] != want {
		t.Errorf("Suggestions = %v, want [%q]", result.Suggestions, want)
	}
}

func TestEvaluate_SpecReady_FlipEachCondition(t *testing.T) {
	flips := []struct {
		name string
		flip func(*SpecificationEvidence)
	}{
		{"spec_exists", func(s *SpecificationEvidence) { s.Exists = false }},
		{"spec_complete", func(s *SpecificationEvidence) { s.IsComplete = false }},
		{"spec_has_requirements", func(s *SpecificationEvidence) { s.HasRequirements = false }},
		{"spec_has_acceptance_criteria", func(s *SpecificationEvidence) { s.HasAcceptanceCriteria = false }},
	}

	for _, tt := range flips {
		t.Run(tt.name, func(t *testing.T) {
			spec := fullSpecEvidence()
			tt.flip(spec)

			result := Evaluate(StateSpecReady, GuardrailContext{Specification: spec})
			if result.Allowed {
				t.Error("Allowed = true, want false")
			}
			found := false
			for _, c := range result.Conditions {
				if c.Name == tt.name && !c.Passed {
					found = true
					if c.Suggestion == "" {
						t.Errorf("condition %s has no suggestion", c.Name)
					}
				}
			}
			if !found {
				t.Errorf("condition %s not reported failed", tt.name)
			}
		})
	}
}

func TestEvaluate_Verified(t *testing.T) {
	result := Evaluate(StateVerified, GuardrailContext{QA: &QAEvidence{Executed: true, Passed: true}})
	if !result.Allowed {
		t.Errorf("Allowed = false, want true (reason: %s)", result.Reason)
	}

	result = Evaluate(StateVerified, GuardrailContext{QA: &QAEvidence{Executed: true, Passed: false}})
	if result.Allowed {
		t.Error("Allowed = true with failing tests, want false")
	}
}

func TestEvaluate_Verified_Coverage(t *testing.T) {
	evaluator := NewEvaluator(WithMinCoverage(80))

	coverage := func(pct float64) *QAEvidence {
		return &QAEvidence{Executed: true, Passed: true, CoveragePercent: &pct}
	}

	if r := evaluator.Evaluate(StateVerified, GuardrailContext{QA: coverage(85)}); !r.Allowed {
		t.Errorf("85%% coverage: Allowed = false, want true")
	}
	if r := evaluator.Evaluate(StateVerified, GuardrailContext{QA: coverage(60)}); r.Allowed {
		t.Error("60% coverage: Allowed = true, want false")
	}

	// Evidence that omits coverage still passes; the check only applies to
	// reported values.
	if r := evaluator.Evaluate(StateVerified, GuardrailContext{QA: &QAEvidence{Executed: true, Passed: true}}); !r.Allowed {
		t.Error("omitted coverage: Allowed = false, want true")
	}
}

func TestEvaluate_MergeReady(t *testing.T) {
	result := Evaluate(StateMergeReady, GuardrailContext{Merge: fullMergeEvidence()})
	if !result.Allowed {
		t.Errorf("Allowed = false, want true (reason: %s)", result.Reason)
	}
	if len(result.Conditions) != 4 {
		t.Errorf("Conditions = %d, want 4", len(result.Conditions))
	}

	merge := fullMergeEvidence()
	merge.CIPassing = false
	result = Evaluate(StateMergeReady, GuardrailContext{Merge: merge})
	if result.Allowed {
		t.Error("Allowed = true with failing CI, want false")
	}
}

func TestEvaluate_MergeReady_SecurityChecks(t *testing.T) {
	passed := true
	failed := false

	merge := fullMergeEvidence()
	merge.SecurityChecksPassed = &passed
	if r := Evaluate(StateMergeReady, GuardrailContext{Merge: merge}); !r.Allowed {
		t.Error("security passed: Allowed = false, want true")
	}

	merge = fullMergeEvidence()
	merge.SecurityChecksPassed = &failed
	if r := Evaluate(StateMergeReady, GuardrailContext{Merge: merge}); r.Allowed {
		t.Error("security failed: Allowed = true, want false")
	}
}

func TestEvaluate_MissingEvidence(t *testing.T) {
	// Missing evidence blocks rather than passing silently.
	for _, target := range []State{StateSpecReady, StateVerified, StateMergeReady} {
		t.Run(string(target), func(t *testing.T) {
			result := Evaluate(target, GuardrailContext{})
			if result.Allowed {
				t.Error("Allowed = true with no evidence, want false")
			}
			if len(result.Conditions) != 1 || result.Conditions[0].Name != "insufficient_evidence" {
				t.Errorf("Conditions = %v, want single insufficient_evidence", result.Conditions)
			}
		})
	}
}

func TestEvaluate_NoCriteriaStates(t *testing.T) {
	// States without defined entry criteria are unconditionally allowed.
	for _, target := range []State{StateImplementing, StateDone, StateHold, StateKilled} {
		result := Evaluate(target, GuardrailContext{})
		if !result.Allowed {
			t.Errorf("Evaluate(%s) Allowed = false, want true", target)
		}
	}
}

func TestEvaluate_Pure(t *testing.T) {
	// Identical inputs always produce identical results.
	gctx := GuardrailContext{Specification: &SpecificationEvidence{Exists: true}}
	first := Evaluate(StateSpecReady, gctx)
	for i := 0; i < 5; i++ {
		if got := Evaluate(StateSpecReady, gctx); !reflect.DeepEqual(got, first) {
			t.Fatalf("Evaluate() not deterministic: %+v != %+v", got, first)
		}
	}
}

// =============================================================================
// ValidateStateTransition Tests
// =============================================================================

func TestValidateStateTransition(t *testing.T) {
	result := ValidateStateTransition(StateCreated, StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})
	if !result.Allowed {
		t.Errorf("Allowed = false, want true (reason: %s)", result.Reason)
	}
}

func TestValidateStateTransition_IllegalEdge(t *testing.T) {
	// Adjacency runs first: even perfect evidence cannot justify skipping.
	result := ValidateStateTransition(StateCreated, StateMergeReady, GuardrailContext{Merge: fullMergeEvidence()})
	if result.Allowed {
		t.Error("Allowed = true for skip transition, want false")
	}
	if len(result.Conditions) != 0 {
		t.Errorf("Conditions = %v, want empty (guardrails not consulted)", result.Conditions)
	}
}

func TestValidateStateTransition_Terminal(t *testing.T) {
	for _, from := range []State{StateDone, StateKilled} {
		result := ValidateStateTransition(from, StateCreated, GuardrailContext{})
		if result.Allowed {
			t.Errorf("Allowed = true from %s, want false", from)
		}
	}
}

func TestValidateStateTransition_UnknownState(t *testing.T) {
	result := ValidateStateTransition("BOGUS", StateSpecReady, GuardrailContext{})
	if result.Allowed {
		t.Error("Allowed = true for unknown state, want false")
	}
}

func TestValidateStateTransition_ReworkNeedsNoEvidence(t *testing.T) {
	// Backward edges target states with no entry criteria.
	result := ValidateStateTransition(StateImplementing, StateSpecReady, GuardrailContext{Specification: fullSpecEvidence()})
	if !result.Allowed {
		t.Errorf("rework to SPEC_READY: Allowed = false, want true (reason: %s)", result.Reason)
	}
}

// =============================================================================
// Progression Tests
// =============================================================================

func TestEvaluateNextStateProgression(t *testing.T) {
	// Scenario: CREATED with complete spec evidence advances to SPEC_READY.
	progression := EvaluateNextStateProgression(StateCreated, GuardrailContext{Specification: fullSpecEvidence()})

	if !progression.HasNext {
		t.Fatal("HasNext = false, want true")
	}
	if progression.Next != StateSpecReady {
		t.Errorf("Next = %s, want SPEC_READY", progression.Next)
	}
	if !progression.CanProgress {
		t.Errorf("CanProgress = false, want true (reason: %s)", progression.Result.Reason)
	}
}

func TestEvaluateNextStateProgression_Blocked(t *testing.T) {
	spec := fullSpecEvidence()
	spec.IsComplete = false

	progression := EvaluateNextStateProgression(StateCreated, GuardrailContext{Specification: spec})
	if progression.CanProgress {
		t.Error("CanProgress = true with incomplete spec, want false")
	}
	if progression.Next != StateSpecReady {
		t.Errorf("Next = %s, want SPEC_READY", progression.Next)
	}
}

func TestEvaluateNextStateProgression_NoSuccessor(t *testing.T) {
	for _, s := range []State{StateDone, StateKilled, StateHold} {
		t.Run(string(s), func(t *testing.T) {
			progression := EvaluateNextStateProgression(s, GuardrailContext{})
			if progression.HasNext {
				t.Errorf("HasNext = true for %s, want false", s)
			}
			if progression.CanProgress {
				t.Errorf("CanProgress = true for %s, want false", s)
			}
		})
	}
}
