package graph

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/graphflow/internal/metrics"
)

// nodeDef is the registry entry derived once from a node type's
// declarations.
type nodeDef struct {
	exemplar Node
	id       string
	typeName string
	edges    []Edge
	canEnd   bool
	endLabel string
	wildcard bool
	note     string
}

// Graph is an immutable registry of node types and their declared outcome
// contracts, plus the engine that runs them (Next and Run, see run.go).
// A graph is built once per definition and reused across many runs.
type Graph struct {
	name      string
	stateType reflect.Type
	defs      map[string]*nodeDef
	order     []string

	logger     *zap.Logger
	registerer prometheus.Registerer
	collector  *metrics.Collector
}

// Option configures graph construction.
type Option func(*Graph)

// WithName names the graph; the name appears in logs, spans and metrics.
func WithName(name string) Option {
	return func(g *Graph) { g.name = name }
}

// WithStateType tags the graph with the state type it expects. The tag is
// diagnostic only; the engine never enforces it.
func WithStateType(prototype State) Option {
	return func(g *Graph) {
		if prototype != nil {
			g.stateType = reflect.TypeOf(prototype)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Graph) { g.logger = logger.With(zap.String("component", "graph")) }
}

// WithMeterRegistry enables prometheus run/step metrics, registered on reg.
func WithMeterRegistry(reg prometheus.Registerer) Option {
	return func(g *Graph) { g.registerer = reg }
}

// New builds a graph from the given node types. Each node's identity and
// outcome contract is derived once, and the whole topology is validated
// eagerly: all dangling references are collected before failing, so a caller
// fixes every problem in one pass rather than iteratively.
func New(nodes []Node, opts ...Option) (*Graph, error) {
	logger, _ := zap.NewProduction()
	g := &Graph{
		defs:   make(map[string]*nodeDef),
		logger: logger.With(zap.String("component", "graph")),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, n := range nodes {
		if err := g.register(n); err != nil {
			return nil, err
		}
	}
	if err := g.validateEdges(); err != nil {
		return nil, err
	}

	if g.registerer != nil {
		g.collector = metrics.NewCollector(g.registerer, g.logger)
	}

	g.logger.Info("graph built",
		zap.String("graph", g.displayName()),
		zap.Int("nodes", len(g.order)),
	)
	return g, nil
}

// register derives and records one node type's definition.
func (g *Graph) register(n Node) error {
	if n == nil {
		return setupErrorf(ErrInvalidOutcomes, "nil node in node list")
	}
	id := NodeID(n)
	typeName := fmt.Sprintf("%T", n)
	if id == "" {
		return setupErrorf(ErrInvalidOutcomes, "node type %s has no derivable identity", typeName)
	}
	if existing, ok := g.defs[id]; ok {
		return setupErrorf(ErrDuplicateNode,
			"node ID %q is not unique: declared by both %s and %s",
			id, existing.typeName, typeName)
	}

	set := n.Outcomes()
	if set.empty() {
		return setupErrorf(ErrInvalidOutcomes,
			"node %q (%s) declares no outcomes: declare successors, an end, or a wildcard",
			id, typeName)
	}
	for _, e := range set.edges {
		if e.To == "" {
			return setupErrorf(ErrInvalidOutcomes,
				"node %q (%s) declares an edge with an empty target", id, typeName)
		}
	}

	g.defs[id] = &nodeDef{
		exemplar: n,
		id:       id,
		typeName: typeName,
		edges:    set.edges,
		canEnd:   set.canEnd,
		endLabel: set.endLabel,
		wildcard: set.wildcard,
		note:     set.note,
	}
	g.order = append(g.order, id)
	return nil
}

// validateEdges cross-checks every declared non-wildcard successor against
// the registered set. Wildcard nodes may transition to any registered node,
// so their declarations cannot dangle and are exempt.
func (g *Graph) validateEdges() error {
	var unknown []string              // discovery order of unresolved targets
	refs := make(map[string][]string) // unresolved target -> referencing node IDs

	for _, id := range g.order {
		def := g.defs[id]
		if def.wildcard {
			continue
		}
		for _, e := range def.edges {
			if _, ok := g.defs[e.To]; ok {
				continue
			}
			if _, seen := refs[e.To]; !seen {
				unknown = append(unknown, e.To)
			}
			refs[e.To] = append(refs[e.To], fmt.Sprintf("%q", id))
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	lines := make([]string, 0, len(unknown))
	for _, target := range unknown {
		lines = append(lines, fmt.Sprintf("%q is referenced by %s", target, commaAnd(refs[target])))
	}
	if len(lines) == 1 {
		return setupErrorf(ErrDanglingEdge, "%s but not included in the graph", lines[0])
	}
	return setupErrorf(ErrDanglingEdge,
		"nodes are referenced in the graph but not included in the graph:\n  %s",
		strings.Join(lines, "\n  "))
}

// NodeInfo is the read-only topology view of one registered node, consumed
// by diagram renderers and other external inspectors.
type NodeInfo struct {
	// ID is the node identity.
	ID string
	// TypeName is the Go type that declared the node.
	TypeName string
	// Edges are the declared successor transitions.
	Edges []Edge
	// CanEnd reports whether the node may terminate the run.
	CanEnd bool
	// EndLabel annotates the end edge in diagrams.
	EndLabel string
	// Wildcard reports an unconstrained successor set.
	Wildcard bool
	// Note is an optional description shown in diagrams.
	Note string
}

// Name returns the graph name, or "" when unnamed.
func (g *Graph) Name() string { return g.name }

// StateType returns the state type tag set via WithStateType, or nil.
func (g *Graph) StateType() reflect.Type { return g.stateType }

// Nodes returns topology entries for all registered nodes, in registration
// order.
func (g *Graph) Nodes() []NodeInfo {
	infos := make([]NodeInfo, 0, len(g.order))
	for _, id := range g.order {
		infos = append(infos, g.info(g.defs[id]))
	}
	return infos
}

// Lookup returns the topology entry for one node identity.
func (g *Graph) Lookup(id string) (NodeInfo, bool) {
	def, ok := g.defs[id]
	if !ok {
		return NodeInfo{}, false
	}
	return g.info(def), true
}

func (g *Graph) info(def *nodeDef) NodeInfo {
	edges := make([]Edge, len(def.edges))
	copy(edges, def.edges)
	return NodeInfo{
		ID:       def.id,
		TypeName: def.typeName,
		Edges:    edges,
		CanEnd:   def.canEnd,
		EndLabel: def.endLabel,
		Wildcard: def.wildcard,
		Note:     def.note,
	}
}

// displayName is the graph name used in logs and metrics labels.
func (g *Graph) displayName() string {
	if g.name == "" {
		return "graph"
	}
	return g.name
}
