// Package sentence splits document text into an ordered sentence stream.
package sentence

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/dgallion1/pdfstruct/internal/structure"
)

var (
	loadOnce  sync.Once
	tokenizer *sentences.DefaultSentenceTokenizer
	loadErr   error
)

func englishTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	loadOnce.Do(func() {
		tokenizer, loadErr = english.NewSentenceTokenizer(nil)
	})
	return tokenizer, loadErr
}

// Segmenter turns full text into sentences using the Punkt English model.
// The tokenizer is shared and safe for concurrent use.
type Segmenter struct {
	tok    *sentences.DefaultSentenceTokenizer
	breaks []*structure.PatternSet
}

// NewSegmenter loads the model. Lines matching any of breaks are kept as
// their own block; with none given the TOC and heading sets are used.
func NewSegmenter(breaks ...*structure.PatternSet) (*Segmenter, error) {
	tok, err := englishTokenizer()
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	if len(breaks) == 0 {
		breaks = []*structure.PatternSet{structure.TOCPatterns, structure.HeadingPatterns}
	}
	return &Segmenter{tok: tok, breaks: breaks}, nil
}

// Split rejoins soft-wrapped lines into blocks and tokenizes each block.
// Heading and TOC lines stay separate so they never merge with body text.
func (s *Segmenter) Split(text string) []string {
	out := []string{}
	for _, block := range s.blocks(text) {
		for _, sent := range s.tok.Tokenize(block) {
			if t := strings.TrimSpace(sent.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// blocks groups lines: a block ends at a blank line, at a line ending in
// terminal punctuation, or before and after a line matching a break set.
func (s *Segmenter) blocks(text string) []string {
	var (
		out []string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case s.isBreak(line):
			flush()
			out = append(out, line)
		default:
			cur = append(cur, line)
			if endsSentence(line) {
				flush()
			}
		}
	}
	flush()
	return out
}

func (s *Segmenter) isBreak(line string) bool {
	for _, set := range s.breaks {
		if set.MatchesAny(line) {
			return true
		}
	}
	return false
}

func endsSentence(line string) bool {
	line = strings.TrimRight(line, "\"')]”’")
	if line == "" {
		return false
	}
	switch line[len(line)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

// Segment returns the sentences of text in document order.
func (s *Segmenter) Segment(text string) []structure.Sentence {
	return structure.NewSentences(s.Split(text))
}
