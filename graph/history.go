package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepKind discriminates history records.
type StepKind string

const (
	// KindStep records the execution of one node.
	KindStep StepKind = "step"
	// KindInterrupt records an interruption of a manually driven run.
	KindInterrupt StepKind = "interrupt"
	// KindEnd records the terminal event of a run.
	KindEnd StepKind = "end"
)

// HistoryStep is one record in a run's audit history: a step, an interrupt,
// or the terminal event. Each record freezes a deep-copy snapshot of the
// state at record-creation time; mutating the live state afterwards never
// alters a recorded snapshot.
type HistoryStep interface {
	// Kind returns the record discriminator.
	Kind() StepKind
	// Snapshot returns the state copy frozen when the record was created.
	Snapshot() State
	// Time returns the record timestamp.
	Time() time.Time
	// Summary returns a short human-readable description of the record.
	Summary() string
}

// History is the ordered, append-only audit log of one run. Records are
// created by the engine (or NewInterrupt) and must not be mutated by
// callers.
type History []HistoryStep

// StepRecord records the execution of a single node. Duration is the only
// field written after creation, once, when the computation returns.
type StepRecord struct {
	state State
	node  Node

	// NodeID is the identity of the executed node.
	NodeID string
	// Start is when the computation began.
	Start time.Time
	// Duration is the wall-clock time the computation took.
	Duration time.Duration
}

func newStepRecord(state State, node Node) *StepRecord {
	return &StepRecord{
		state:  snapshot(state),
		node:   node,
		NodeID: NodeID(node),
		Start:  time.Now(),
	}
}

// Kind implements HistoryStep.
func (r *StepRecord) Kind() StepKind { return KindStep }

// Snapshot implements HistoryStep.
func (r *StepRecord) Snapshot() State { return r.state }

// Time implements HistoryStep.
func (r *StepRecord) Time() time.Time { return r.Start }

// Node returns the node value that ran in this step.
func (r *StepRecord) Node() Node { return r.node }

// Summary implements HistoryStep.
func (r *StepRecord) Summary() string { return r.NodeID }

// InterruptRecord records an interruption raised by a caller driving a run
// manually with Next (for example to collect user input between steps).
type InterruptRecord struct {
	state State

	// Payload describes the interruption.
	Payload any
	// TS is when the record was created.
	TS time.Time
}

// NewInterrupt creates an interrupt record, freezing a snapshot of state.
func NewInterrupt(state State, payload any) *InterruptRecord {
	return &InterruptRecord{state: snapshot(state), Payload: payload, TS: time.Now()}
}

// Kind implements HistoryStep.
func (r *InterruptRecord) Kind() StepKind { return KindInterrupt }

// Snapshot implements HistoryStep.
func (r *InterruptRecord) Snapshot() State { return r.state }

// Time implements HistoryStep.
func (r *InterruptRecord) Time() time.Time { return r.TS }

// Summary implements HistoryStep.
func (r *InterruptRecord) Summary() string { return fmt.Sprintf("interrupt(%v)", r.Payload) }

// EndRecord records the terminal event of a run.
type EndRecord struct {
	state State

	// Result is the run's final result value.
	Result any
	// TS is when the record was created.
	TS time.Time
}

func newEndRecord(state State, end End) *EndRecord {
	return &EndRecord{state: snapshot(state), Result: end.Result, TS: time.Now()}
}

// Kind implements HistoryStep.
func (r *EndRecord) Kind() StepKind { return KindEnd }

// Snapshot implements HistoryStep.
func (r *EndRecord) Snapshot() State { return r.state }

// Time implements HistoryStep.
func (r *EndRecord) Time() time.Time { return r.TS }

// Summary implements HistoryStep.
func (r *EndRecord) Summary() string { return fmt.Sprintf("end(%v)", r.Result) }

// Export serializes the history to indented JSON for audit. States
// implementing Serializer contribute their serialized form verbatim; other
// states are marshaled with encoding/json.
func (h History) Export() ([]byte, error) {
	out := make([]map[string]any, 0, len(h))
	for i, step := range h {
		rec := map[string]any{
			"kind": step.Kind(),
			"ts":   step.Time(),
		}
		if st := step.Snapshot(); st != nil {
			if ser, ok := st.(Serializer); ok {
				data, err := ser.Serialize()
				if err != nil {
					return nil, fmt.Errorf("serialize state of record %d: %w", i, err)
				}
				rec["state"] = json.RawMessage(data)
			} else {
				rec["state"] = st
			}
		}
		switch r := step.(type) {
		case *StepRecord:
			rec["node_id"] = r.NodeID
			rec["duration_ms"] = float64(r.Duration) / float64(time.Millisecond)
		case *InterruptRecord:
			rec["payload"] = r.Payload
		case *EndRecord:
			rec["result"] = r.Result
		}
		out = append(out, rec)
	}
	return json.MarshalIndent(out, "", "  ")
}
