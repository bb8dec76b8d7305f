// Package synmap builds immutable synonym graphs from parsed edges and applies
// them to bleve token streams.
package synmap

import (
	"fmt"
	"io"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/synonym"
)

// Entry holds everything an input term rewrites to.
type Entry struct {
	// Outputs in the order their edges were added.
	Outputs []synonym.Term
	// KeepOriginal is set when any edge for the input asked to keep it.
	KeepOriginal bool
}

// Map is an immutable synonym graph keyed by input term.
// It is safe for concurrent use.
type Map struct {
	entries       map[synonym.Term]Entry
	inputs        []synonym.Term
	maxInputWords int
	edgeCount     int
	dedup         bool
}

// Lookup returns the entry for input. The returned Outputs must not be modified.
func (m *Map) Lookup(input synonym.Term) (Entry, bool) {
	e, ok := m.entries[input]
	return e, ok
}

// Len returns the number of distinct input terms.
func (m *Map) Len() int {
	return len(m.inputs)
}

// EdgeCount returns the number of recorded input/output pairs.
func (m *Map) EdgeCount() int {
	return m.edgeCount
}

// MaxInputWords returns the word count of the longest input term.
func (m *Map) MaxInputWords() int {
	return m.maxInputWords
}

// Dedup reports whether duplicate outputs were dropped while building.
func (m *Map) Dedup() bool {
	return m.dedup
}

// Inputs returns input terms in first-seen order.
func (m *Map) Inputs() []synonym.Term {
	out := make([]synonym.Term, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// Edges flattens the map back into edges, grouped by input in first-seen
// order. Feeding them to FromEdges yields an identical map.
func (m *Map) Edges() []synonym.Edge {
	edges := make([]synonym.Edge, 0, m.edgeCount)
	for _, input := range m.inputs {
		e := m.entries[input]
		for _, out := range e.Outputs {
			edges = append(edges, synonym.Edge{Input: input, Output: out, IncludeOriginal: e.KeepOriginal})
		}
	}
	return edges
}

// Builder accumulates edges into a Map. It implements
// synonym.GraphBuilder[*Map] and is not safe for concurrent use.
type Builder struct {
	dedup   bool
	entries map[synonym.Term]*entryBuilder
	inputs  []synonym.Term
	maxLen  int
	edges   int
	err     error
	built   bool
}

type entryBuilder struct {
	outputs      []synonym.Term
	seen         map[synonym.Term]struct{}
	keepOriginal bool
}

var _ synonym.GraphBuilder[*Map] = (*Builder)(nil)

// NewBuilder creates a builder. With dedup, an output already recorded for
// an input is not recorded again.
func NewBuilder(dedup bool) *Builder {
	return &Builder{
		dedup:   dedup,
		entries: make(map[synonym.Term]*entryBuilder),
	}
}

// AddEdge records input -> output. Invalid edges are remembered and
// reported by Build.
func (b *Builder) AddEdge(input, output synonym.Term, includeOriginal bool) {
	if b.err != nil {
		return
	}
	if b.built {
		b.err = synerr.New(synerr.ErrCodeBuildFailed, "edge added after Build", nil)
		return
	}
	if input == "" || output == "" {
		b.err = synerr.New(synerr.ErrCodeBuildFailed,
			fmt.Sprintf("empty term in synonym edge %q -> %q", input.String(), output.String()), nil)
		return
	}

	e, ok := b.entries[input]
	if !ok {
		e = &entryBuilder{seen: make(map[synonym.Term]struct{})}
		b.entries[input] = e
		b.inputs = append(b.inputs, input)
		if n := input.WordCount(); n > b.maxLen {
			b.maxLen = n
		}
	}

	e.keepOriginal = e.keepOriginal || includeOriginal
	if b.dedup {
		if _, dup := e.seen[output]; dup {
			return
		}
		e.seen[output] = struct{}{}
	}
	e.outputs = append(e.outputs, output)
	b.edges++
}

// Build freezes the recorded edges into a Map. The builder cannot be used
// afterwards.
func (b *Builder) Build() (*Map, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, synerr.New(synerr.ErrCodeBuildFailed, "Build called twice", nil)
	}
	b.built = true

	m := &Map{
		entries:       make(map[synonym.Term]Entry, len(b.entries)),
		inputs:        b.inputs,
		maxInputWords: b.maxLen,
		edgeCount:     b.edges,
		dedup:         b.dedup,
	}
	for input, e := range b.entries {
		m.entries[input] = Entry{Outputs: e.outputs, KeepOriginal: e.keepOriginal}
	}
	b.entries = nil

	return m, nil
}

// Compile parses rule text from r into a Map.
func Compile(r io.Reader, opts synonym.Options, normalizer synonym.Normalizer) (*Map, error) {
	return synonym.Compile[*Map](r, opts, normalizer, NewBuilder(opts.Dedup))
}

// FromEdges rebuilds a Map from previously exported edges.
func FromEdges(edges []synonym.Edge, dedup bool) (*Map, error) {
	b := NewBuilder(dedup)
	for _, e := range edges {
		b.AddEdge(e.Input, e.Output, e.IncludeOriginal)
	}
	return b.Build()
}
