// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

// Package tool implements schema-validated function invocation with bounded
// retry, intended for use inside node computations. A tool owns a JSON
// Schema for its arguments; invalid calls produce a retryable validation
// signal until the retry budget is spent.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/graphflow/graph"
)

// DefaultMaxRetries is the retry budget applied when none is configured.
const DefaultMaxRetries = 1

// ErrMaxRetries reports that a tool's retry budget is spent.
var ErrMaxRetries = errors.New("max retries exceeded")

// CallContext carries the run's shared state and the current retry count
// into a tool function.
type CallContext struct {
	// State is the live run state, shared with node computations.
	State graph.State
	// Retry is the number of failed validation attempts preceding this
	// call. Zero on a clean first call.
	Retry int
}

// Func is the computation behind a tool. It receives decoded,
// schema-validated arguments and returns a content string.
type Func func(ctx context.Context, call CallContext, args map[string]any) (string, error)

// ValidationError signals that call arguments failed schema validation. It
// is returned while the retry budget lasts so the caller can repair the
// arguments and try again.
type ValidationError struct {
	// Tool is the tool name.
	Tool string
	// Problems are the schema violations found.
	Problems []Problem
	// Retry is the attempt number that failed, starting at 1.
	Retry int
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("tool %q arguments invalid (attempt %d): %s",
		e.Tool, e.Retry, strings.Join(msgs, "; "))
}

// Tool binds a name, an argument schema and a function, and enforces the
// retry budget across repeated invocations.
type Tool struct {
	name        string
	description string
	schema      *Schema
	fn          Func

	maxRetries int
	retries    int
	logger     *zap.Logger
}

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithMaxRetries sets the retry budget for validation failures.
func WithMaxRetries(n int) ToolOption {
	return func(t *Tool) { t.maxRetries = n }
}

// WithLogger sets a custom logger.
func WithLogger(logger *zap.Logger) ToolOption {
	return func(t *Tool) { t.logger = logger.With(zap.String("component", "tool")) }
}

// New creates a tool with the given argument schema and function.
func New(name, description string, schema *Schema, fn Func, opts ...ToolOption) *Tool {
	logger, _ := zap.NewProduction()
	t := &Tool{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
		maxRetries:  DefaultMaxRetries,
		logger:      logger.With(zap.String("component", "tool")),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description.
func (t *Tool) Description() string { return t.description }

// Schema returns the argument schema.
func (t *Tool) Schema() *Schema { return t.schema }

// Retries returns the number of consecutive failed validation attempts.
func (t *Tool) Retries() int { return t.retries }

// Reset clears the retry counter.
func (t *Tool) Reset() { t.retries = 0 }

// Invoke decodes rawArgs, validates them against the schema and calls the
// tool function. A validation failure consumes one retry and returns a
// *ValidationError while the budget lasts; once spent, the failure wraps
// ErrMaxRetries. A successful call resets the retry counter.
func (t *Tool) Invoke(ctx context.Context, call CallContext, rawArgs json.RawMessage) (string, error) {
	args := make(map[string]any)
	var problems []Problem
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			problems = []Problem{{Path: "$", Message: fmt.Sprintf("arguments are not a JSON object: %v", err)}}
		}
	}
	if problems == nil && t.schema != nil {
		problems = t.schema.Validate(args)
	}

	if len(problems) > 0 {
		t.retries++
		t.logger.Warn("tool arguments rejected",
			zap.String("tool", t.name),
			zap.Int("retry", t.retries),
			zap.Int("problems", len(problems)),
		)
		vErr := &ValidationError{Tool: t.name, Problems: problems, Retry: t.retries}
		if t.retries > t.maxRetries {
			return "", fmt.Errorf("tool %q: %w: %s", t.name, ErrMaxRetries, vErr.Error())
		}
		return "", vErr
	}

	call.Retry = t.retries
	content, err := t.fn(ctx, call, args)
	if err != nil {
		return "", fmt.Errorf("tool %q failed: %w", t.name, err)
	}
	t.retries = 0
	return content, nil
}
