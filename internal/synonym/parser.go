package synonym

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
)

// termsPerGroup is the arity every mapping group must have.
const termsPerGroup = 2

// Options configures a Parser. They are fixed at construction.
type Options struct {
	// Expand maps every term of a group onto every other term and keeps the
	// original token. When false, every term collapses onto the first one.
	Expand bool `json:"expand"`

	// Dedup asks the graph builder to drop identical edges.
	Dedup bool `json:"dedup"`
}

// Normalizer turns raw term text into a Term.
type Normalizer interface {
	Normalize(text string) (Term, error)
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(text string) (Term, error)

// Normalize implements Normalizer.
func (f NormalizerFunc) Normalize(text string) (Term, error) {
	return f(text)
}

// EdgeSink receives the edges produced by a Parser.
type EdgeSink interface {
	AddEdge(input, output Term, includeOriginal bool)
}

// GraphBuilder is an EdgeSink that can be finalized into a graph G.
type GraphBuilder[G any] interface {
	EdgeSink
	Build() (G, error)
}

// Stats counts what a Parser has consumed so far.
type Stats struct {
	Lines  int
	Groups int
	Edges  int
}

// Parser converts rule text into edges. A Parser is not safe for concurrent
// use; it writes to its sink from the calling goroutine only.
type Parser struct {
	opts       Options
	normalizer Normalizer
	sink       EdgeSink
	stats      Stats
}

// NewParser creates a parser that normalizes terms with normalizer and sends
// the resulting edges to sink.
func NewParser(opts Options, normalizer Normalizer, sink EdgeSink) *Parser {
	return &Parser{
		opts:       opts,
		normalizer: normalizer,
		sink:       sink,
	}
}

// Options returns the parser configuration.
func (p *Parser) Options() Options {
	return p.opts
}

// Stats returns counters for the input consumed so far.
func (p *Parser) Stats() Stats {
	return p.stats
}

// Parse reads rules from r line by line and stops at the first error.
// Invalid mappings are reported as ERR_402_INVALID_MAPPING; errors from the
// reader and the normalizer are returned unchanged.
func (p *Parser) Parse(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line == "" && err != nil {
			break
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if perr := p.ParseLine(line); perr != nil {
			return perr
		}

		if err != nil {
			break
		}
	}

	slog.Debug("synonym_rules_parsed",
		slog.Int("lines", p.stats.Lines),
		slog.Int("groups", p.stats.Groups),
		slog.Int("edges", p.stats.Edges),
		slog.Bool("expand", p.opts.Expand))

	return nil
}

// ParseLine parses a single rule line. A blank line yields no edges.
func (p *Parser) ParseLine(line string) error {
	p.stats.Lines++
	if err := p.AddGroups(SplitGroups(line)); err != nil {
		if se, ok := synerr.As(err); ok && se.Code == synerr.ErrCodeInvalidMapping {
			se.WithDetail("line", strconv.Itoa(p.stats.Lines))
		}
		return err
	}
	return nil
}

// AddGroups validates, normalizes and expands each mapping group in order.
func (p *Parser) AddGroups(groups []string) error {
	for _, group := range groups {
		raw, err := SplitTerms(group)
		if err != nil {
			return err
		}

		terms := make([]Term, len(raw))
		for i, text := range raw {
			term, err := p.normalizer.Normalize(text)
			if err != nil {
				return err
			}
			terms[i] = term
		}

		p.stats.Groups++
		for _, e := range ExpandEdges(terms, p.opts.Expand) {
			p.sink.AddEdge(e.Input, e.Output, e.IncludeOriginal)
			p.stats.Edges++
		}
	}
	return nil
}

// SplitGroups splits a rule line into its mapping groups.
func SplitGroups(line string) []string {
	return SplitEscaped(line, GroupSeparator)
}

// SplitTerms splits a mapping group into its two raw terms. Each term is
// unescaped before it is trimmed.
func SplitTerms(group string) ([]string, error) {
	parts := SplitEscaped(group, TermSeparator)
	if len(parts) != termsPerGroup {
		return nil, synerr.New(synerr.ErrCodeInvalidMapping,
			"synonym mapping is invalid for "+group, nil).
			WithDetail("group", group).
			WithDetail("terms", strconv.Itoa(len(parts))).
			WithSuggestion(`each group must name exactly two terms; escape literal ',' and '|' with '\'`)
	}

	terms := make([]string, len(parts))
	for i, part := range parts {
		terms[i] = strings.TrimSpace(Unescape(part))
	}
	return terms, nil
}

// ExpandEdges fans a group's terms out into edges. Without expansion every
// term, the first included, maps onto the first term. With expansion every
// ordered pair of distinct positions becomes an edge that keeps the original.
func ExpandEdges(terms []Term, expand bool) []Edge {
	if len(terms) == 0 {
		return nil
	}

	if !expand {
		edges := make([]Edge, 0, len(terms))
		for _, t := range terms {
			edges = append(edges, Edge{Input: t, Output: terms[0]})
		}
		return edges
	}

	edges := make([]Edge, 0, len(terms)*(len(terms)-1))
	for i := range terms {
		for j := range terms {
			if i != j {
				edges = append(edges, Edge{Input: terms[i], Output: terms[j], IncludeOriginal: true})
			}
		}
	}
	return edges
}

// Compile parses every rule in r into builder and finalizes it.
func Compile[G any](r io.Reader, opts Options, normalizer Normalizer, builder GraphBuilder[G]) (G, error) {
	p := NewParser(opts, normalizer, builder)
	if err := p.Parse(r); err != nil {
		var zero G
		return zero, err
	}
	return builder.Build()
}
