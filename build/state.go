package build

// State identifies a phase of the build lifecycle.
type State int

const (
	// StateInit is the state before Run is called.
	StateInit State = iota + 1
	// StateResolvingStart determines the starting batch (fresh or resumed).
	StateResolvingStart
	// StateEmbedding is the per-batch embed-and-append loop.
	StateEmbedding
	// StateCheckpointing persists the index and a checkpoint mid-build.
	StateCheckpointing
	// StateFinalizing persists the completed index and final checkpoint.
	StateFinalizing
	// StateVerifying reloads the saved index and probes it.
	StateVerifying
	// StateDone is a verified, completed build.
	StateDone
	// StateAborting writes emergency artifacts after a failure.
	StateAborting
	// StateFailed is a build stopped by a fatal error or cancellation.
	StateFailed
)

var stateNames = map[State]string{
	StateInit:           "INIT",
	StateResolvingStart: "RESOLVING_START",
	StateEmbedding:      "EMBEDDING",
	StateCheckpointing:  "CHECKPOINTING",
	StateFinalizing:     "FINALIZING",
	StateVerifying:      "VERIFYING",
	StateDone:           "DONE",
	StateAborting:       "ABORTING",
	StateFailed:         "FAILED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}
