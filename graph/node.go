package graph

import (
	"context"
	"reflect"
)

// Node is a unit of computation in a graph. One instance exists per step and
// is discarded once its outcome has been read; instance fields carry the
// step's input (see the question graph example).
//
// Identity defaults to the node's type name; implement Identifier to
// override it. Outcomes declares the complete set of results Run may
// produce and is read once, at graph construction time.
type Node interface {
	// Outcomes declares which transitions Run may return.
	Outcomes() OutcomeSet

	// Run executes the node against the live state and returns the next
	// transition: Goto another node, or End carrying the run's final
	// result.
	Run(ctx context.Context, rc *RunContext) (Outcome, error)
}

// Identifier overrides the identity derived from a node's type name.
// An empty NodeID falls back to the type name.
type Identifier interface {
	NodeID() string
}

// RunContext wraps the live state for the duration of one node computation.
// Mutations to State are visible to later steps; history snapshots are not
// affected.
type RunContext struct {
	State State
}

// Outcome is the result of a node computation: either Goto or End.
type Outcome interface {
	isOutcome()
}

// Goto transitions the run to the given node instance.
type Goto struct {
	Node Node
}

// End terminates the run, carrying its final result value.
type End struct {
	Result any
}

func (Goto) isOutcome() {}
func (End) isOutcome()  {}

// NodeID resolves a node's identity: the Identifier override when present
// and non-empty, otherwise the node's type name.
func NodeID(n Node) string {
	if ident, ok := n.(Identifier); ok {
		if id := ident.NodeID(); id != "" {
			return id
		}
	}
	t := reflect.TypeOf(n)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}
