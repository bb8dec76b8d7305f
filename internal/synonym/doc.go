// Package synonym parses synonym rule text into directed synonym graph edges.
//
// A rule source is line oriented. Each line holds one or more mapping groups
// separated by '|', and each group names exactly two terms separated by ','.
// A backslash escapes the character that follows it, so "\|" and "\," can
// appear inside a term:
//
//	a, b|plz, plaza|ix, pie\,ix
//
// Terms are unescaped, trimmed and passed through a Normalizer before edges
// are handed to an EdgeSink. Without expansion every term of a group maps onto
// the first one; with expansion every term maps onto every other term.
//
// The parser never recovers from a malformed group: the first invalid mapping
// aborts the whole parse, because a partially built synonym graph silently
// changes search relevance.
package synonym
