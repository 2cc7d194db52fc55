package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// listState accumulates step markers; Clone copies the backing slice.
type listState struct {
	entries []string
}

func (s *listState) Clone() State {
	cp := make([]string, len(s.entries))
	copy(cp, s.entries)
	return &listState{entries: cp}
}

// stepA transitions to stepB.
type stepA struct{}

func (stepA) Outcomes() OutcomeSet { return To("stepB") }
func (stepA) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	if st, ok := rc.State.(*listState); ok {
		st.entries = append(st.entries, "A")
	}
	return Goto{Node: stepB{}}, nil
}

// stepB ends the run with 42.
type stepB struct{}

func (stepB) Outcomes() OutcomeSet { return Terminal() }
func (stepB) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	if st, ok := rc.State.(*listState); ok {
		st.entries = append(st.entries, "B")
	}
	return End{Result: 42}, nil
}

// danglingNode declares a successor that is never registered.
type danglingNode struct{}

func (danglingNode) Outcomes() OutcomeSet { return To("Z") }
func (danglingNode) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	return End{}, nil
}

// routerNode may transition to any registered node.
type routerNode struct {
	next Node
}

func (routerNode) Outcomes() OutcomeSet { return ToAny() }
func (n routerNode) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	return Goto{Node: n.next}, nil
}

// dupOne and dupTwo claim the same identity.
type dupOne struct{}

func (dupOne) NodeID() string       { return "dup" }
func (dupOne) Outcomes() OutcomeSet { return Terminal() }
func (dupOne) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	return End{}, nil
}

type dupTwo struct{}

func (dupTwo) NodeID() string      { return "dup" }
func (dupTwo) Outcomes() OutcomeSet { return Terminal() }
func (dupTwo) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	return End{}, nil
}

func newTestGraph(t *testing.T, nodes []Node, opts ...Option) *Graph {
	t.Helper()
	opts = append(opts, WithLogger(zap.NewNop()))
	g, err := New(nodes, opts...)
	require.NoError(t, err)
	return g
}

func TestNew_BasicGraph(t *testing.T) {
	g := newTestGraph(t, []Node{stepA{}, stepB{}}, WithName("linear"))

	assert.Equal(t, "linear", g.Name())

	infos := g.Nodes()
	require.Len(t, infos, 2)
	assert.Equal(t, "stepA", infos[0].ID)
	assert.Equal(t, "stepB", infos[1].ID)
	assert.Equal(t, []Edge{{To: "stepB"}}, infos[0].Edges)
	assert.False(t, infos[0].CanEnd)
	assert.True(t, infos[1].CanEnd)

	info, ok := g.Lookup("stepA")
	require.True(t, ok)
	assert.Equal(t, "stepA", info.ID)

	_, ok = g.Lookup("missing")
	assert.False(t, ok)
}

func TestNew_StateType(t *testing.T) {
	g := newTestGraph(t, []Node{stepA{}, stepB{}}, WithStateType(&listState{}))
	require.NotNil(t, g.StateType())
	assert.Equal(t, "*graph.listState", g.StateType().String())
}

func TestNew_DuplicateID(t *testing.T) {
	_, err := New([]Node{dupOne{}, dupTwo{}}, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.True(t, IsSetupError(err))
	assert.Contains(t, err.Error(), "DUPLICATE_NODE")
	assert.Contains(t, err.Error(), `"dup"`)
	assert.Contains(t, err.Error(), "graph.dupOne")
	assert.Contains(t, err.Error(), "graph.dupTwo")
}

func TestNew_DanglingEdge(t *testing.T) {
	_, err := New([]Node{danglingNode{}, stepB{}}, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.True(t, IsSetupError(err))
	assert.Contains(t, err.Error(), "DANGLING_EDGE")
	assert.Contains(t, err.Error(), `"Z"`)
	assert.Contains(t, err.Error(), `"danglingNode"`)
	assert.Contains(t, err.Error(), "not included in the graph")
}

// twoRefs also references the missing "Z", plus its own missing "Y".
type twoRefs struct{}

func (twoRefs) Outcomes() OutcomeSet { return To("Z", "Y") }
func (twoRefs) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	return End{}, nil
}

func TestNew_DanglingEdgesGrouped(t *testing.T) {
	_, err := New([]Node{danglingNode{}, twoRefs{}}, WithLogger(zap.NewNop()))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "nodes are referenced in the graph but not included in the graph")
	assert.Contains(t, msg, `"Z" is referenced by "danglingNode" and "twoRefs"`)
	assert.Contains(t, msg, `"Y" is referenced by "twoRefs"`)
}

func TestNew_WildcardExemptFromValidation(t *testing.T) {
	// routerNode constrains nothing, so it cannot dangle even though no
	// explicit successor set exists.
	g := newTestGraph(t, []Node{routerNode{}, stepB{}})
	info, ok := g.Lookup("routerNode")
	require.True(t, ok)
	assert.True(t, info.Wildcard)
}

// emptyNode declares no outcome at all.
type emptyNode struct{}

func (emptyNode) Outcomes() OutcomeSet { return OutcomeSet{} }
func (emptyNode) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	return End{}, nil
}

func TestNew_InvalidDeclarations(t *testing.T) {
	_, err := New([]Node{emptyNode{}}, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_OUTCOMES")
	assert.Contains(t, err.Error(), "declares no outcomes")

	_, err = New([]Node{nil}, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.True(t, IsSetupError(err))
}

func TestOutcomeSet_Builders(t *testing.T) {
	set := To("a").Labeled("b", "went b").OrEnd().WithNote("picks a branch")
	assert.Equal(t, []Edge{{To: "a"}, {To: "b", Label: "went b"}}, set.edges)
	assert.True(t, set.canEnd)
	assert.Equal(t, "picks a branch", set.note)

	// a later declaration of the same target overrides its label
	set = To("a").Labeled("a", "again")
	assert.Equal(t, []Edge{{To: "a", Label: "again"}}, set.edges)

	set = Terminal().LabelEnd("success")
	assert.True(t, set.canEnd)
	assert.Equal(t, "success", set.endLabel)
}

func TestNodeID(t *testing.T) {
	assert.Equal(t, "stepA", NodeID(stepA{}))
	assert.Equal(t, "dup", NodeID(dupOne{}))
	// pointer receivers resolve to the element type name
	assert.Equal(t, "stepA", NodeID(&stepA{}))
}
