package graph

import (
	"context"
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/autoflow"
)

// RunState flows through a compiled workflow graph. Each step node
// appends its result and updates the run status.
type RunState struct {
	// Workflow is the definition name.
	Workflow string

	// Exec is the shared execution context steps read and write.
	Exec *autoflow.ExecutionContext

	// Steps are the results recorded so far, in execution order.
	Steps []autoflow.StepResult

	// Status is the run outcome so far.
	Status autoflow.RunStatus

	// FailedCount counts failed steps, including continue-on-error ones.
	FailedCount int
}

// NewRunState seeds a run state with initial context values under "input".
func NewRunState(workflow string, initial map[string]any) RunState {
	return RunState{
		Workflow: workflow,
		Exec:     autoflow.NewExecutionContext(initial),
		Status:   autoflow.RunCompleted,
	}
}

// RunFunc executes a compiled workflow graph to completion.
type RunFunc func(ctx flowgraph.Context, state RunState) (RunState, error)

// StepNode wraps one declared step as a graph node. Step failure is
// recorded in the state rather than returned as a node error, so the
// routing after the node decides whether the run proceeds.
func StepNode(seq *autoflow.Sequencer, step autoflow.StepDefinition) flowgraph.NodeFunc[RunState] {
	return func(ctx flowgraph.Context, state RunState) (RunState, error) {
		result := seq.ExecuteStep(ctx, step, state.Exec)
		state.Steps = append(state.Steps, result)
		if result.Status == autoflow.StepFailed {
			state.FailedCount++
			if !step.ContinueOnError {
				state.Status = autoflow.RunFailed
			}
		}
		return state, nil
	}
}

// Build compiles a workflow definition into a runnable graph. Steps are
// chained in declared order; a failed step without continueOnError routes
// straight to the end, matching the sequencer's abort semantics.
func Build(def autoflow.WorkflowDefinition, seq *autoflow.Sequencer) (RunFunc, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	g := flowgraph.NewGraph[RunState]()
	for _, step := range def.Steps {
		g = g.AddNode(step.Name, StepNode(seq, step))
	}
	for i, step := range def.Steps {
		next := flowgraph.END
		if i+1 < len(def.Steps) {
			next = def.Steps[i+1].Name
		}
		g = g.AddConditionalEdge(step.Name, routeAfter(next))
	}
	g = g.SetEntry(def.Steps[0].Name)

	compiled, err := g.Compile()
	if err != nil {
		return nil, err
	}
	return func(ctx flowgraph.Context, state RunState) (RunState, error) {
		return compiled.Run(ctx, state)
	}, nil
}

// routeAfter continues to the next step unless the run has failed.
func routeAfter(next string) func(flowgraph.Context, RunState) string {
	return func(ctx flowgraph.Context, state RunState) string {
		if state.Status == autoflow.RunFailed {
			return flowgraph.END
		}
		return next
	}
}

// Run builds and executes a workflow as a graph, returning the same
// result shape the sequencer produces.
func Run(ctx context.Context, def autoflow.WorkflowDefinition, seq *autoflow.Sequencer, initial map[string]any) (*autoflow.ExecutionResult, error) {
	run, err := Build(def, seq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	state, err := run(flowgraph.NewContext(ctx), NewRunState(def.Name, initial))
	if err != nil {
		return nil, err
	}

	status := state.Status
	if status == autoflow.RunCompleted && state.FailedCount > 0 {
		status = autoflow.RunPartial
	}

	return &autoflow.ExecutionResult{
		Workflow:    def.Name,
		Status:      status,
		Steps:       state.Steps,
		FailedCount: state.FailedCount,
		Duration:    time.Since(start),
		Context:     state.Exec.Snapshot(),
	}, nil
}
