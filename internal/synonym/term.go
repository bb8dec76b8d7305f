package synonym

import "strings"

// WordSeparator joins the words of a multi-word Term.
const WordSeparator = '\x00'

// Term is a normalized term: the analyzed words of a raw term joined by
// WordSeparator. Two terms are the same graph node iff they are equal.
type Term string

// JoinWords builds a Term from already normalized words.
func JoinWords(words ...string) Term {
	return Term(strings.Join(words, string(WordSeparator)))
}

// Words splits the term back into its words.
func (t Term) Words() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), string(WordSeparator))
}

// WordCount returns the number of words in the term.
func (t Term) WordCount() int {
	if t == "" {
		return 0
	}
	return strings.Count(string(t), string(WordSeparator)) + 1
}

// String renders the term with words separated by spaces.
func (t Term) String() string {
	return strings.ReplaceAll(string(t), string(WordSeparator), " ")
}

// Edge is one directed synonym relation: matching Input during analysis may
// produce Output. IncludeOriginal asks the graph to keep Input alongside.
type Edge struct {
	Input           Term
	Output          Term
	IncludeOriginal bool
}

// String renders the edge as "input -> output", marking kept originals with "+".
func (e Edge) String() string {
	arrow := " -> "
	if e.IncludeOriginal {
		arrow = " +> "
	}
	return e.Input.String() + arrow + e.Output.String()
}
