package autoflow

import "fmt"

// =============================================================================
// Guardrail Evidence
// =============================================================================

// SpecificationEvidence is the evidence bundle required to enter SPEC_READY.
type SpecificationEvidence struct {
	Exists                bool `json:"exists"`
	IsComplete            bool `json:"isComplete"`
	HasRequirements       bool `json:"hasRequirements"`
	HasAcceptanceCriteria bool `json:"hasAcceptanceCriteria"`
}

// QAEvidence is the evidence bundle required to enter VERIFIED.
// CoveragePercent is optional; when nil, coverage is not evaluated.
type QAEvidence struct {
	Executed        bool     `json:"executed"`
	Passed          bool     `json:"passed"`
	CoveragePercent *float64 `json:"coveragePercent,omitempty"`
}

// MergeEvidence is the evidence bundle required to enter MERGE_READY.
// SecurityChecksPassed is optional; when nil, security checks are not
// evaluated.
type MergeEvidence struct {
	HasChanges           bool  `json:"hasChanges"`
	ConflictsResolved    bool  `json:"conflictsResolved"`
	ReviewsApproved      bool  `json:"reviewsApproved"`
	CIPassing            bool  `json:"ciPassing"`
	SecurityChecksPassed *bool `json:"securityChecksPassed,omitempty"`
}

// GuardrailContext carries the evidence for one transition attempt. Only
// the bundle matching the target state is consulted; the others may be nil.
type GuardrailContext struct {
	Specification *SpecificationEvidence `json:"specification,omitempty"`
	QA            *QAEvidence            `json:"qa,omitempty"`
	Merge         *MergeEvidence         `json:"merge,omitempty"`
}

// =============================================================================
// Guardrail Results
// =============================================================================

// ConditionCheck is the outcome of one named guardrail condition.
type ConditionCheck struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Suggestion string `json:"suggestion,omitempty"` // Remediation hint, set when failed
}

// GuardrailResult is the structured allow/deny verdict for a transition.
// A denied result is a deliberate halt, not an error: callers branch on
// Allowed rather than unwrapping exceptions.
type GuardrailResult struct {
	Allowed     bool             `json:"allowed"`
	Reason      string           `json:"reason,omitempty"` // Set when denied
	Conditions  []ConditionCheck `json:"conditions,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// ProgressionResult reports whether a work item may automatically advance
// to its canonical forward-path successor.
type ProgressionResult struct {
	Current     State           `json:"current"`
	Next        State           `json:"next,omitempty"`
	HasNext     bool            `json:"hasNext"`
	CanProgress bool            `json:"canProgress"`
	Result      GuardrailResult `json:"result"`
}

// =============================================================================
// Evaluator
// =============================================================================

// Evaluator evaluates target-state entry criteria against supplied
// evidence. Evaluation is pure: identical inputs always produce identical
// results.
type Evaluator struct {
	minCoverage float64 // 0 disables the coverage check
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithMinCoverage requires QAEvidence.CoveragePercent to meet the given
// threshold when entering VERIFIED. Evidence that omits coverage still
// passes; the check only applies to reported values.
func WithMinCoverage(percent float64) EvaluatorOption {
	return func(e *Evaluator) {
		e.minCoverage = percent
	}
}

// NewEvaluator creates a guardrail evaluator.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultEvaluator backs the package-level convenience functions. It holds
// no mutable state.
var defaultEvaluator = NewEvaluator()

// insufficientEvidence builds the denial used when the evidence bundle for
// a target state is missing entirely. Missing evidence blocks rather than
// passing silently.
func insufficientEvidence(target State, bundle, hint string) GuardrailResult {
	check := ConditionCheck{
		Name:       "insufficient_evidence",
		Passed:     false,
		Suggestion: hint,
	}
	return GuardrailResult{
		Allowed:     false,
		Reason:      fmt.Sprintf("no %s evidence supplied for %s", bundle, target),
		Conditions:  []ConditionCheck{check},
		Suggestions: []string{hint},
	}
}

// finish folds per-condition outcomes into the overall verdict.
func finish(checks []ConditionCheck) GuardrailResult {
	result := GuardrailResult{Allowed: true, Conditions: checks}
	for _, c := range checks {
		if !c.Passed {
			result.Allowed = false
			result.Suggestions = append(result.Suggestions, c.Suggestion)
		}
	}
	if !result.Allowed {
		result.Reason = "entry criteria not met"
	}
	return result
}

// Evaluate checks the entry criteria for the target state against the
// supplied evidence. Allowed is the logical AND of every named condition;
// each failing condition contributes a remediation suggestion. States with
// no defined criteria are unconditionally allowed (the adjacency check
// still applies separately).
func (e *Evaluator) Evaluate(target State, gctx GuardrailContext) GuardrailResult {
	switch target {
	case StateSpecReady:
		spec := gctx.Specification
		if spec == nil {
			return insufficientEvidence(target, "specification", "Supply specification evidence for the transition")
		}
		return finish([]ConditionCheck{
			{Name: "spec_exists", Passed: spec.Exists,
				Suggestion: "Create a specification document"},
			{Name: "spec_complete", Passed: spec.IsComplete,
				Suggestion: "Complete all sections of the specification"},
			{Name: "spec_has_requirements", Passed: spec.HasRequirements,
				Suggestion: "Add a requirements section to the specification"},
			{Name: "spec_has_acceptance_criteria", Passed: spec.HasAcceptanceCriteria,
				Suggestion: "Define acceptance criteria in the specification"},
		})

	case StateVerified:
		qa := gctx.QA
		if qa == nil {
			return insufficientEvidence(target, "qa", "Supply QA evidence for the transition")
		}
		checks := []ConditionCheck{
			{Name: "tests_executed", Passed: qa.Executed,
				Suggestion: "Run the test suite"},
			{Name: "tests_passed", Passed: qa.Passed,
				Suggestion: "Fix failing tests before verification"},
		}
		if e.minCoverage > 0 && qa.CoveragePercent != nil {
			checks = append(checks, ConditionCheck{
				Name:   "coverage_met",
				Passed: *qa.CoveragePercent >= e.minCoverage,
				Suggestion: fmt.Sprintf("Raise test coverage to at least %.1f%%",
					e.minCoverage),
			})
		}
		return finish(checks)

	case StateMergeReady:
		merge := gctx.Merge
		if merge == nil {
			return insufficientEvidence(target, "merge", "Supply merge evidence for the transition")
		}
		checks := []ConditionCheck{
			{Name: "has_changes", Passed: merge.HasChanges,
				Suggestion: "Push changes before requesting merge"},
			{Name: "conflicts_resolved", Passed: merge.ConflictsResolved,
				Suggestion: "Resolve merge conflicts with the base branch"},
			{Name: "reviews_approved", Passed: merge.ReviewsApproved,
				Suggestion: "Obtain the required review approvals"},
			{Name: "ci_passing", Passed: merge.CIPassing,
				Suggestion: "Fix the failing CI pipeline"},
		}
		if merge.SecurityChecksPassed != nil {
			checks = append(checks, ConditionCheck{
				Name:       "security_checks_passed",
				Passed:     *merge.SecurityChecksPassed,
				Suggestion: "Resolve security scan findings",
			})
		}
		return finish(checks)

	default:
		// No entry criteria defined for this state.
		return GuardrailResult{Allowed: true}
	}
}

// ValidateStateTransition composes the adjacency check with guardrail
// evaluation. The adjacency check runs first and short-circuits with its
// own message; guardrails are only consulted for structurally legal moves.
func (e *Evaluator) ValidateStateTransition(from, to State, gctx GuardrailContext) GuardrailResult {
	if !IsValidState(from) || !IsValidState(to) {
		return GuardrailResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown state in transition %s -> %s", from, to),
		}
	}
	if IsTerminal(from) {
		return GuardrailResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s is terminal: no outgoing transitions", from),
		}
	}
	if !CanTransition(from, to) {
		return GuardrailResult{
			Allowed: false,
			Reason:  fmt.Sprintf("transition %s -> %s is not permitted", from, to),
		}
	}
	return e.Evaluate(to, gctx)
}

// EvaluateNextStateProgression reports whether the item may automatically
// advance from current to its single canonical forward-path successor.
func (e *Evaluator) EvaluateNextStateProgression(current State, gctx GuardrailContext) ProgressionResult {
	next, ok := ForwardSuccessor(current)
	if !ok {
		return ProgressionResult{
			Current: current,
			HasNext: false,
			Result: GuardrailResult{
				Allowed: false,
				Reason:  fmt.Sprintf("%s has no forward-path successor", current),
			},
		}
	}
	result := e.ValidateStateTransition(current, next, gctx)
	return ProgressionResult{
		Current:     current,
		Next:        next,
		HasNext:     true,
		CanProgress: result.Allowed,
		Result:      result,
	}
}

// =============================================================================
// Package-Level Convenience
// =============================================================================

// Evaluate checks target-state entry criteria with the default evaluator.
func Evaluate(target State, gctx GuardrailContext) GuardrailResult {
	return defaultEvaluator.Evaluate(target, gctx)
}

// ValidateStateTransition validates a transition with the default evaluator.
func ValidateStateTransition(from, to State, gctx GuardrailContext) GuardrailResult {
	return defaultEvaluator.ValidateStateTransition(from, to, gctx)
}

// EvaluateNextStateProgression evaluates automatic forward progression with
// the default evaluator.
func EvaluateNextStateProgression(current State, gctx GuardrailContext) ProgressionResult {
	return defaultEvaluator.EvaluateNextStateProgression(current, gctx)
}
