package graph

// Edge describes a declared transition to another node identity, with an
// optional label used by diagram renderers.
type Edge struct {
	// To is the target node identity.
	To string `json:"to"`
	// Label annotates the edge in diagrams.
	Label string `json:"label,omitempty"`
}

// OutcomeSet declares the outcome contract of a node type: the identities it
// may transition to, whether it may end the run, and whether its successor
// set is unconstrained (wildcard). Declarations are built with the package
// constructors and chained methods:
//
//	func (Ask) Outcomes() graph.OutcomeSet      { return graph.To("Answer") }
//	func (Evaluate) Outcomes() graph.OutcomeSet { return graph.To("Congratulate", "Reprimand") }
//	func (Congratulate) Outcomes() graph.OutcomeSet {
//		return graph.Terminal().LabelEnd("success")
//	}
//
// Values are immutable; every chained call returns a derived copy.
type OutcomeSet struct {
	edges    []Edge
	canEnd   bool
	endLabel string
	wildcard bool
	note     string
}

// To declares transitions to the given node identities.
func To(ids ...string) OutcomeSet {
	return OutcomeSet{}.To(ids...)
}

// Terminal declares a node that only ends the run.
func Terminal() OutcomeSet {
	return OutcomeSet{canEnd: true}
}

// ToAny declares a wildcard node: it may transition to any node registered
// in the same graph. Wildcard nodes are exempt from dangling-reference
// validation.
func ToAny() OutcomeSet {
	return OutcomeSet{wildcard: true}
}

// To adds transitions to the given node identities.
func (s OutcomeSet) To(ids ...string) OutcomeSet {
	for _, id := range ids {
		s = s.add(Edge{To: id})
	}
	return s
}

// Labeled adds a transition annotated with a diagram label.
func (s OutcomeSet) Labeled(id, label string) OutcomeSet {
	return s.add(Edge{To: id, Label: label})
}

// OrEnd marks that the node may end the run.
func (s OutcomeSet) OrEnd() OutcomeSet {
	s.canEnd = true
	return s
}

// LabelEnd marks that the node may end the run and labels the end edge.
func (s OutcomeSet) LabelEnd(label string) OutcomeSet {
	s.canEnd = true
	s.endLabel = label
	return s
}

// OrAny marks the successor set as unconstrained.
func (s OutcomeSet) OrAny() OutcomeSet {
	s.wildcard = true
	return s
}

// WithNote attaches a descriptive note shown by diagram renderers.
func (s OutcomeSet) WithNote(note string) OutcomeSet {
	s.note = note
	return s
}

// add appends an edge, keeping declaration order and deduplicating targets;
// a later declaration of the same target overrides its label.
func (s OutcomeSet) add(e Edge) OutcomeSet {
	edges := make([]Edge, len(s.edges), len(s.edges)+1)
	copy(edges, s.edges)
	for i := range edges {
		if edges[i].To == e.To {
			edges[i].Label = e.Label
			s.edges = edges
			return s
		}
	}
	s.edges = append(edges, e)
	return s
}

// empty reports whether the declaration contains no outcome at all.
func (s OutcomeSet) empty() bool {
	return len(s.edges) == 0 && !s.canEnd && !s.wildcard
}
