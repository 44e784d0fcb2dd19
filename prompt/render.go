package prompt

// Typed front-ends for the prompts the orchestration loop renders. Callers
// that assemble ad-hoc templates keep using LoadWithVars directly.

// AgentSystemVars parameterizes the agent system prompt.
type AgentSystemVars struct {
	// Goal is the objective handed to the agent for this run.
	Goal string

	// Constraints are rendered as a bulleted list. May be empty.
	Constraints []string
}

// AgentSystem renders the system prompt for an agent run.
func (l *Loader) AgentSystem(vars AgentSystemVars) (string, error) {
	return l.LoadWithVars("agent-system", map[string]any{
		"goal":        vars.Goal,
		"constraints": vars.Constraints,
	})
}

// RunSummaryVars parameterizes the run summary prompt.
type RunSummaryVars struct {
	Goal   string
	Status string

	// Transcript is the raw agent transcript; it is indented into the
	// prompt body.
	Transcript string
}

// RunSummary renders the prompt that asks a model to summarize a
// finished run.
func (l *Loader) RunSummary(vars RunSummaryVars) (string, error) {
	return l.LoadWithVars("run-summary", map[string]any{
		"goal":       vars.Goal,
		"status":     vars.Status,
		"transcript": vars.Transcript,
	})
}

// SpecReviewVars parameterizes the specification review prompt.
type SpecReviewVars struct {
	// Title is the work item title the specification belongs to.
	Title string

	// Document is the full specification text.
	Document string
}

// SpecReview renders the prompt that asks a model to review a
// specification document for completeness.
func (l *Loader) SpecReview(vars SpecReviewVars) (string, error) {
	return l.LoadWithVars("spec-review", map[string]any{
		"title":    vars.Title,
		"document": vars.Document,
	})
}
