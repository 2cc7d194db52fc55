// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

// Package mermaid renders graph topology as Mermaid state diagrams and can
// request rendered images from the mermaid.ink service.
package mermaid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BaSui01/graphflow/graph"
)

// DefaultHighlightCSS is the CSS applied to highlighted nodes.
const DefaultHighlightCSS = "fill:#fdff32"

// ErrUnknownNode reports a start or highlight identity that is not part of
// the graph.
var ErrUnknownNode = errors.New("node is not in the graph")

// Option configures diagram generation.
type Option func(*genConfig)

type genConfig struct {
	startNodes   []string
	highlighted  []string
	highlightCSS string
	edgeLabels   bool
	notes        bool
}

func defaultGenConfig() genConfig {
	return genConfig{
		highlightCSS: DefaultHighlightCSS,
		edgeLabels:   true,
		notes:        true,
	}
}

// WithStart marks nodes as entry points, drawn from the initial state
// marker.
func WithStart(ids ...string) Option {
	return func(c *genConfig) { c.startNodes = append(c.startNodes, ids...) }
}

// WithHighlight highlights nodes using the configured CSS.
func WithHighlight(ids ...string) Option {
	return func(c *genConfig) { c.highlighted = append(c.highlighted, ids...) }
}

// WithHighlightCSS overrides the CSS used for highlighted nodes.
func WithHighlightCSS(css string) Option {
	return func(c *genConfig) { c.highlightCSS = css }
}

// WithoutEdgeLabels omits edge labels from the diagram.
func WithoutEdgeLabels() Option {
	return func(c *genConfig) { c.edgeLabels = false }
}

// WithoutNotes omits node notes from the diagram.
func WithoutNotes() Option {
	return func(c *genConfig) { c.notes = false }
}

var multiBlank = regexp.MustCompile(`\n{2,}`)

// Generate produces Mermaid stateDiagram-v2 code for the graph topology.
// Wildcard nodes draw an edge to every registered node. Unknown start or
// highlight identities fail with ErrUnknownNode.
func Generate(g *graph.Graph, opts ...Option) (string, error) {
	cfg := defaultGenConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	starts := make(map[string]bool, len(cfg.startNodes))
	for _, id := range cfg.startNodes {
		if _, ok := g.Lookup(id); !ok {
			return "", fmt.Errorf("start node %q: %w", id, ErrUnknownNode)
		}
		starts[id] = true
	}

	nodes := g.Nodes()
	lines := []string{"stateDiagram-v2"}
	for _, info := range nodes {
		if starts[info.ID] {
			lines = append(lines, fmt.Sprintf("  [*] --> %s", info.ID))
		}

		if info.Wildcard {
			for _, dest := range nodes {
				lines = append(lines, fmt.Sprintf("  %s --> %s", info.ID, dest.ID))
			}
		} else {
			for _, e := range info.Edges {
				line := fmt.Sprintf("  %s --> %s", info.ID, e.To)
				if cfg.edgeLabels && e.Label != "" {
					line += ": " + e.Label
				}
				lines = append(lines, line)
			}
		}

		if info.CanEnd {
			line := fmt.Sprintf("  %s --> [*]", info.ID)
			if cfg.edgeLabels && info.EndLabel != "" {
				line += ": " + info.EndLabel
			}
			lines = append(lines, line)
		}

		if cfg.notes && info.Note != "" {
			lines = append(lines, fmt.Sprintf("  note right of %s", info.ID))
			// mermaid mis-renders notes containing multiple paragraphs
			note := multiBlank.ReplaceAllString(strings.TrimSpace(info.Note), "\n")
			for _, noteLine := range strings.Split(note, "\n") {
				lines = append(lines, "    "+noteLine)
			}
			lines = append(lines, "  end note")
		}
	}

	if len(cfg.highlighted) > 0 {
		lines = append(lines, "", "classDef highlighted "+cfg.highlightCSS)
		for _, id := range cfg.highlighted {
			if _, ok := g.Lookup(id); !ok {
				return "", fmt.Errorf("highlighted node %q: %w", id, ErrUnknownNode)
			}
			lines = append(lines, fmt.Sprintf("class %s highlighted", id))
		}
	}

	return strings.Join(lines, "\n"), nil
}
