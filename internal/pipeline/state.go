package pipeline

// State is a step of a pipeline run.
type State int

const (
	StateInit State = iota
	StateSchemaBuilt
	StateDataLoaded
	StateCommitted
	StateExported
	StateReported
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:        "INIT",
	StateSchemaBuilt: "SCHEMA_BUILT",
	StateDataLoaded:  "DATA_LOADED",
	StateCommitted:   "COMMITTED",
	StateExported:    "EXPORTED",
	StateReported:    "REPORTED",
	StateDone:        "DONE",
	StateFailed:      "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
