package structure

import (
	"regexp"
	"strings"
)

// PatternSet is an ordered list of expressions searched against a sentence.
// When Lower is set the text is lower-cased before matching.
type PatternSet struct {
	Name     string
	Lower    bool
	patterns []*regexp.Regexp
}

// NewPatternSet compiles exprs. It panics on an invalid expression.
func NewPatternSet(name string, lower bool, exprs ...string) *PatternSet {
	ps := &PatternSet{Name: name, Lower: lower}
	for _, e := range exprs {
		ps.patterns = append(ps.patterns, regexp.MustCompile(e))
	}
	return ps
}

var tocExprs = []string{
	`contents`,
	`table of contents`,
	`chapters?`,
	`sections?`,
	`^\s*(chapter|section|part|appendix)\s+[ivx\d]+`,
	`^\s*\d+(\.\d+)*\s+`,
	`^\s*[ivx]+(\s+[a-z])?\s*[–-]`,
	`\.{3,}\s*\d+$`,
}

// The keyword rule ignores case on its own so "Chapter 2" opens a section,
// while the text itself is matched as written.
var headingExprs = []string{
	`^\s*(?i:(chapter|section|part|appendix)\s+[ivx\d]+)`,
	`^\s*\d+(\.\d+)*\s+`,
	`^\s*[A-Z][A-Z0-9\s]+\s*$`,
}

var (
	// TOCPatterns match against lower-cased sentence text.
	TOCPatterns = NewPatternSet("toc", true, tocExprs...)

	// HeadingPatterns match against the original text.
	HeadingPatterns = NewPatternSet("heading", false, headingExprs...)
)

// NewHeadingPatterns returns the heading set, optionally matching lower-cased
// text the same way the TOC set does.
func NewHeadingPatterns(foldCase bool) *PatternSet {
	if !foldCase {
		return HeadingPatterns
	}
	return NewPatternSet("heading", true, headingExprs...)
}

// MatchesAny reports whether any pattern is found anywhere in text.
func (ps *PatternSet) MatchesAny(text string) bool {
	if ps.Lower {
		text = strings.ToLower(text)
	}
	for _, re := range ps.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchesAny is a shorthand for set.MatchesAny(text).
func MatchesAny(text string, set *PatternSet) bool {
	return set.MatchesAny(text)
}
