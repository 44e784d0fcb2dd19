// Package autoflow provides the orchestration core for autonomous work items:
// a canonical state machine with guard-gated transitions, a sequential
// workflow step executor, and a bounded LLM-directed tool-calling loop.
//
// The package is organized into subpackages by domain:
//
//   - evidence: guardrail evidence collectors (GitHub, GitLab, spec documents)
//   - rpc: HTTP client for remote tool providers (the ToolGateway transport)
//   - graph: adapter that runs workflow definitions inside flowgraph graphs
//   - journal: durable run journals for workflows, agents, and transitions
//   - notify: notification services (Slack, webhook, log)
//   - prompt: prompt template loading for agent runs
//   - task: task-based model selection for agent iterations
//   - auth: gateway credentials (API keys, service tokens)
//   - config: hierarchical configuration resolution
//   - testutil: test utilities
//
// # Quick Start
//
//	gw := rpc.NewGateway(rpc.GatewayConfig{BaseURL: "https://tools.internal"})
//
//	// Run a declared workflow.
//	seq := autoflow.NewSequencer(gw)
//	result, err := seq.Execute(ctx, def, map[string]any{"ticket": "TK-421"})
//
//	// Advance a work item through the state machine.
//	item := autoflow.NewWorkItem("add retry budget to uploader")
//	outcome, err := item.AttemptTransition(ctx, autoflow.StateSpecReady, autoflow.TransitionRequest{
//	    Observed: autoflow.StateCreated,
//	    Actor:    "orchestrator",
//	    Evidence: autoflow.GuardrailContext{Specification: spec},
//	})
//
// Work items never move except through AttemptTransition, and transitions
// out of DONE or KILLED always fail. See individual package documentation
// for detailed usage.
package autoflow
