package journal

import (
	"errors"
	"time"
)

// Journal errors
var (
	// ErrRunAlreadyExists indicates a run with this ID was already started.
	ErrRunAlreadyExists = errors.New("run already exists")

	// ErrRunNotStarted indicates no active run with this ID.
	ErrRunNotStarted = errors.New("run not started")

	// ErrRunNotFound indicates no stored journal for this ID.
	ErrRunNotFound = errors.New("run not found")
)

// RunKind distinguishes what produced a journal.
type RunKind string

// Run kinds.
const (
	KindWorkflow RunKind = "workflow"
	KindAgent    RunKind = "agent"
	KindItem     RunKind = "workitem"
)

// RunStatus is the stored terminal status of a run.
type RunStatus string

// Run statuses.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunPartial   RunStatus = "partial"
	RunCancelled RunStatus = "cancelled"
	RunAborted   RunStatus = "aborted"
)

// RunMetadata describes a run at start time.
type RunMetadata struct {
	Kind   RunKind `json:"kind"`
	FlowID string  `json:"flowId,omitempty"` // Workflow name or agent label
	ItemID string  `json:"itemId,omitempty"` // Associated work item, if any
	Input  string  `json:"input,omitempty"`  // Seed prompt or input summary
}

// Meta is the stored run header.
type Meta struct {
	RunID      string    `json:"runId"`
	Kind       RunKind   `json:"kind"`
	FlowID     string    `json:"flowId,omitempty"`
	ItemID     string    `json:"itemId,omitempty"`
	Input      string    `json:"input,omitempty"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt,omitempty"`
	EntryCount int       `json:"entryCount"`
	TokensIn   int       `json:"tokensIn,omitempty"`
	TokensOut  int       `json:"tokensOut,omitempty"`
}

// EntryKind tags what a journal entry records.
type EntryKind string

// Entry kinds.
const (
	EntryTurn       EntryKind = "turn"
	EntryStep       EntryKind = "step"
	EntryTransition EntryKind = "transition"
)

// Turn is one message in an agent conversation.
type Turn struct {
	Role      string `json:"role"` // system, user, assistant, tool
	Content   string `json:"content"`
	Tool      string `json:"tool,omitempty"`
	TokensIn  int    `json:"tokensIn,omitempty"`
	TokensOut int    `json:"tokensOut,omitempty"`
}

// StepEntry records one workflow step outcome.
type StepEntry struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"` // success, failed, skipped
	Attempts int           `json:"attempts,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// TransitionEntry records one state transition attempt.
type TransitionEntry struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Actor   string `json:"actor,omitempty"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"` // Denial reason when not applied
}

// Entry is one journal record. Exactly one of Turn, Step, Transition is
// set, matching Kind.
type Entry struct {
	ID         int              `json:"id"`
	Kind       EntryKind        `json:"kind"`
	At         time.Time        `json:"at"`
	Turn       *Turn            `json:"turn,omitempty"`
	Step       *StepEntry       `json:"step,omitempty"`
	Transition *TransitionEntry `json:"transition,omitempty"`
}

// Journal is a complete stored run.
type Journal struct {
	RunID   string  `json:"runId"`
	Meta    Meta    `json:"meta"`
	Entries []Entry `json:"entries"`
}

// ListFilter filters journal listing.
type ListFilter struct {
	Kind   RunKind
	FlowID string
	ItemID string
	Status RunStatus
	After  time.Time
	Before time.Time
	Limit  int
}

// Manager is the interface for journal operations.
type Manager interface {
	// Lifecycle
	StartRun(runID string, metadata RunMetadata) error
	Record(runID string, entry Entry) error
	EndRun(runID string, status RunStatus) error
	EndRunWithError(runID string, err error) error

	// Retrieval
	Load(runID string) (*Journal, error)
	LoadMeta(runID string) (*Meta, error)
	List(filter ListFilter) ([]Meta, error)
	Search(query string, filter ListFilter) ([]Match, error)

	// Maintenance
	Delete(runID string) error
}
