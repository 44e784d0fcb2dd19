// Package task provides kind-based model selection for agent runs.
//
// Each stage of a work item's lifecycle calls the model tier it needs:
// specification and planning get the thinking tier, implementation and
// verification the default tier, and mechanical jobs like classification
// or summarization the fast tier.
//
// The agent consults a selector for each run's Task kind; set the kind
// on the run config to steer which model serves it:
//
//	result, err := agent.Run(ctx, prompt, autoflow.AgentConfig{
//	    Task: task.Triage, // reasoning tier
//	})
//
// SelectModel answers the same question without a selector:
//
//	model := task.SelectModel(task.Verify)
package task
