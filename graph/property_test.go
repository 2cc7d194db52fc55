package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// chainNode is link i of a linear chain of length n; the last link ends the
// run with n.
type chainNode struct {
	idx, length int
}

func (n chainNode) NodeID() string { return fmt.Sprintf("chain-%d", n.idx) }

func (n chainNode) Outcomes() OutcomeSet {
	if n.idx == n.length-1 {
		return Terminal()
	}
	return To(fmt.Sprintf("chain-%d", n.idx+1))
}

func (n chainNode) Run(ctx context.Context, rc *RunContext) (Outcome, error) {
	if st, ok := rc.State.(*listState); ok {
		st.entries = append(st.entries, n.NodeID())
	}
	if n.idx == n.length-1 {
		return End{Result: n.length}, nil
	}
	return Goto{Node: chainNode{idx: n.idx + 1, length: n.length}}, nil
}

func chainGraph(length int) (*Graph, error) {
	nodes := make([]Node, 0, length)
	for i := 0; i < length; i++ {
		nodes = append(nodes, chainNode{idx: i, length: length})
	}
	return New(nodes, WithLogger(zap.NewNop()))
}

func TestProperty_HistoryLengthMatchesSteps(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("a run's history holds one record per executed step plus one terminal record, appended last", prop.ForAll(
		func(length int) bool {
			g, err := chainGraph(length)
			if err != nil {
				t.Logf("build failed: %v", err)
				return false
			}

			result, history, err := g.Run(context.Background(), nil, chainNode{idx: 0, length: length})
			if err != nil {
				t.Logf("run failed: %v", err)
				return false
			}
			if result != length {
				return false
			}
			if len(history) != length+1 {
				return false
			}
			for i := 0; i < length; i++ {
				if history[i].Kind() != KindStep {
					return false
				}
			}
			return history[length].Kind() == KindEnd
		},
		gen.IntRange(1, 25),
	))

	properties.TestingRun(t)
}

func TestProperty_SnapshotIsolation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(1, 15).Draw(t, "length")
		g, err := chainGraph(length)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}

		state := &listState{}
		_, history, err := g.Run(context.Background(), state, chainNode{idx: 0, length: length})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		// freeze what each snapshot held at run time
		want := make([][]string, len(history))
		for i, step := range history {
			snap := step.Snapshot().(*listState)
			want[i] = append([]string(nil), snap.entries...)
		}

		// arbitrary post-run tampering of the live state
		tampered := rapid.SliceOfN(rapid.String(), 0, 5).Draw(t, "tampered")
		state.entries = append(state.entries, tampered...)
		for i := range state.entries {
			state.entries[i] = "x"
		}

		for i, step := range history {
			snap := step.Snapshot().(*listState)
			if len(snap.entries) != len(want[i]) {
				t.Fatalf("record %d snapshot length changed: %d != %d", i, len(snap.entries), len(want[i]))
			}
			for j := range want[i] {
				if snap.entries[j] != want[i][j] {
					t.Fatalf("record %d snapshot entry %d changed: %q != %q", i, j, snap.entries[j], want[i][j])
				}
			}
		}
	})
}
