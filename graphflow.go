// Package graphflow provides a top-level convenience entry point for building
// and running workflow graphs with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/graphflow"
//
//	g, err := graphflow.New([]graphflow.Node{Ask{}, Answer{}}, graphflow.WithName("question"))
//	result, history, err := g.Run(ctx, state, Ask{})
//
// This is a thin wrapper around the [graph] package; both produce identical
// results. Use this package when you prefer the shorter import path.
package graphflow

import (
	"github.com/BaSui01/graphflow/graph"
)

// Core types re-exported so callers never need to import graph/ directly.

// Node is a unit of computation in a graph.
type Node = graph.Node

// OutcomeSet declares a node type's outcome contract.
type OutcomeSet = graph.OutcomeSet

// State is the caller-owned mutable context threaded through a run.
type State = graph.State

// RunContext wraps the live state during one node computation.
type RunContext = graph.RunContext

// Outcome is the result of a node computation.
type Outcome = graph.Outcome

// Goto transitions the run to another node instance.
type Goto = graph.Goto

// End terminates the run, carrying its final result value.
type End = graph.End

// Graph is an immutable registry of node types plus the run engine.
type Graph = graph.Graph

// History is the ordered, append-only audit log of one run.
type History = graph.History

// New builds a graph from the given node types.
func New(nodes []Node, opts ...graph.Option) (*Graph, error) {
	return graph.New(nodes, opts...)
}

// Outcome declaration constructors.

// To declares transitions to the given node identities.
var To = graph.To

// Terminal declares a node that only ends the run.
var Terminal = graph.Terminal

// ToAny declares a wildcard node.
var ToAny = graph.ToAny

// Graph construction options.

// WithName names the graph.
var WithName = graph.WithName

// WithStateType tags the graph with its expected state type.
var WithStateType = graph.WithStateType

// WithLogger sets a custom zap logger.
var WithLogger = graph.WithLogger

// WithMeterRegistry enables prometheus run/step metrics.
var WithMeterRegistry = graph.WithMeterRegistry
