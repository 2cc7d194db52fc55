package graph

// State is the caller-owned mutable context threaded through a run. The
// engine borrows it for the duration of each step and for taking history
// snapshots; it is never mutated by the engine itself. A state must not be
// shared across concurrent runs.
//
// A run may also execute without any state at all: pass nil to Run or Next.
type State interface {
	// Clone returns a deep copy used for history snapshots. The copy must
	// be semantically faithful, but states holding non-cloneable resources
	// (open handles, connections) may snapshot only their serializable
	// fields.
	Clone() State
}

// Serializer is optionally implemented by states that can serialize
// themselves; History.Export uses it when present.
type Serializer interface {
	Serialize() ([]byte, error)
}

// snapshot deep-copies a state for a history record; an absent (nil) state
// stays nil.
func snapshot(s State) State {
	if s == nil {
		return nil
	}
	return s.Clone()
}
