// Package journal records durable run journals for orchestration runs:
// agent conversations, workflow step outcomes, and applied or blocked
// state transitions.
//
// Core types:
//   - Manager: Interface for journal operations
//   - FileStore: File-based journal storage (one directory per run)
//   - Entry: A single journal entry (turn, step, or transition)
//
// Example usage:
//
//	store, _ := journal.NewFileStore(journal.StoreConfig{BaseDir: ".autoflow/journals"})
//	store.StartRun("run-1", journal.RunMetadata{Kind: journal.KindWorkflow, FlowID: "deploy"})
//	store.Record("run-1", journal.Entry{Kind: journal.EntryStep, Step: &journal.StepEntry{...}})
//	store.EndRun("run-1", journal.RunCompleted)
package journal
