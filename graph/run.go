package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/BaSui01/graphflow/graph"

// Next executes a single step. It appends a step record to history before
// the computation runs, capturing a snapshot of state and the node value;
// invokes the node against the live state; backfills the record's duration;
// and returns whatever outcome the computation produced, unchanged.
//
// Next fails with a runtime error when the node's identity is not
// registered in the graph. A computation error aborts the step; the step
// record stays in history with its duration recorded.
func (g *Graph) Next(ctx context.Context, state State, node Node, history *History) (Outcome, error) {
	if node == nil {
		return nil, runtimeErrorf(ErrMalformedOutcome, "nil node passed to Next")
	}
	id := NodeID(node)
	if _, ok := g.defs[id]; !ok {
		return nil, runtimeErrorf(ErrNodeNotRegistered, "node %q (%T) is not in the graph", id, node)
	}

	record := newStepRecord(state, node)
	*history = append(*history, record)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "run node "+id,
		trace.WithAttributes(attribute.String("graphflow.node_id", id)))
	defer span.End()

	outcome, err := node.Run(ctx, &RunContext{State: state})
	record.Duration = time.Since(record.Start)

	if g.collector != nil {
		g.collector.ObserveStep(g.displayName(), id, record.Duration, err == nil)
	}
	if err != nil {
		g.logger.Error("node computation failed",
			zap.String("graph", g.displayName()),
			zap.String("node_id", id),
			zap.Duration("duration", record.Duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("node %q failed: %w", id, err)
	}

	g.logger.Debug("node executed",
		zap.String("graph", g.displayName()),
		zap.String("node_id", id),
		zap.Duration("duration", record.Duration),
	)
	return outcome, nil
}

// Run drives the loop from start until a node returns End: invoke the
// current node, append history, follow the returned transition. On End it
// appends the terminal record and returns End's carried result together
// with the full history.
//
// Cycles are legal and not detected; a graph with no reachable End runs
// until a node computation fails (for example by honoring ctx
// cancellation). An outcome that is neither a transition to a node nor an
// End is a defensive runtime error.
func (g *Graph) Run(ctx context.Context, state State, start Node) (any, History, error) {
	runID := uuid.NewString()
	name := g.displayName()

	ctx, span := otel.Tracer(tracerName).Start(ctx, name+" run",
		trace.WithAttributes(
			attribute.String("graphflow.run_id", runID),
			attribute.String("graphflow.start_node", NodeID(start)),
		))
	defer span.End()

	logger := g.logger.With(zap.String("graph", name), zap.String("run_id", runID))
	logger.Info("run started", zap.String("start_node", NodeID(start)))
	began := time.Now()

	var history History
	current := start
	for {
		outcome, err := g.Next(ctx, state, current, &history)
		if err != nil {
			if g.collector != nil {
				g.collector.ObserveRun(name, time.Since(began), false)
			}
			logger.Error("run failed", zap.Int("records", len(history)), zap.Error(err))
			return nil, history, err
		}

		switch o := outcome.(type) {
		case End:
			history = append(history, newEndRecord(state, o))
			if g.collector != nil {
				g.collector.ObserveRun(name, time.Since(began), true)
			}
			logger.Info("run completed",
				zap.Int("records", len(history)),
				zap.Duration("duration", time.Since(began)),
			)
			return o.Result, history, nil
		case Goto:
			if o.Node == nil {
				err := runtimeErrorf(ErrMalformedOutcome,
					"node %q returned a transition to a nil node", NodeID(current))
				return nil, history, err
			}
			current = o.Node
		default:
			// Unreachable when outcome declarations are accurate.
			err := runtimeErrorf(ErrMalformedOutcome,
				"node %q returned %T, expected graph.Goto or graph.End", NodeID(current), outcome)
			return nil, history, err
		}
	}
}
