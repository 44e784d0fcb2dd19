package autoflow

// State is a canonical work-item lifecycle state.
type State string

// The eight canonical states. DONE and KILLED are terminal: once a work
// item reaches either, no further transition is ever permitted.
const (
	StateCreated      State = "CREATED"
	StateSpecReady    State = "SPEC_READY"
	StateImplementing State = "IMPLEMENTING"
	StateVerified     State = "VERIFIED"
	StateMergeReady   State = "MERGE_READY"
	StateDone         State = "DONE"
	StateHold         State = "HOLD"
	StateKilled       State = "KILLED"
)

// forwardPath is the canonical happy-path ordering. HOLD and KILLED sit
// outside the path; EvaluateNextStateProgression uses this, not a search
// over all edges.
var forwardPath = map[State]State{
	StateCreated:      StateSpecReady,
	StateSpecReady:    StateImplementing,
	StateImplementing: StateVerified,
	StateVerified:     StateMergeReady,
	StateMergeReady:   StateDone,
}

// transitions is the fixed adjacency table. Backward edges exist for
// rework; HOLD is reachable from and returns to every non-terminal state;
// KILLED is reachable from every non-terminal state. Terminal states have
// no entries.
var transitions = map[State][]State{
	StateCreated:      {StateSpecReady, StateHold, StateKilled},
	StateSpecReady:    {StateImplementing, StateHold, StateKilled},
	StateImplementing: {StateVerified, StateSpecReady, StateHold, StateKilled},
	StateVerified:     {StateMergeReady, StateImplementing, StateHold, StateKilled},
	StateMergeReady:   {StateDone, StateVerified, StateHold, StateKilled},
	StateHold:         {StateCreated, StateSpecReady, StateImplementing, StateVerified, StateMergeReady, StateKilled},
	StateDone:         {},
	StateKilled:       {},
}

// States returns all canonical states in forward-path order, terminal and
// parking states last.
func States() []State {
	return []State{
		StateCreated, StateSpecReady, StateImplementing, StateVerified,
		StateMergeReady, StateDone, StateHold, StateKilled,
	}
}

// IsValidState reports whether s is one of the eight canonical states.
func IsValidState(s State) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether s permits no outgoing transitions.
// Only DONE and KILLED are terminal.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateKilled
}

// CanTransition reports whether the fixed adjacency table permits moving
// from one state to another. It never consults guardrail evidence; callers
// that need entry criteria use ValidateStateTransition.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ForwardSuccessor returns the single canonical happy-path successor of s.
// The second return is false for states with no forward successor
// (DONE, KILLED, HOLD).
func ForwardSuccessor(s State) (State, bool) {
	next, ok := forwardPath[s]
	return next, ok
}
