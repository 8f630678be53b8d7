package structure

import (
	"strings"
	"unicode/utf8"
)

const (
	UnknownAuthor = "Unknown"
	UntitledTitle = "Untitled"

	// DefaultMinParagraphLen is the length a stripped sentence must exceed to
	// be listed as a paragraph.
	DefaultMinParagraphLen = 20
)

// Metadata is the basic document information shown on the overview tab.
type Metadata struct {
	Pages  int    `json:"pages"`
	Author string `json:"author"`
	Title  string `json:"title"`
}

// NewMetadata applies the "Unknown" / "Untitled" fallbacks.
func NewMetadata(pages int, author, title string) Metadata {
	author = strings.TrimSpace(author)
	if author == "" {
		author = UnknownAuthor
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledTitle
	}
	return Metadata{Pages: pages, Author: author, Title: title}
}

// Counts are the summary statistics of a result.
type Counts struct {
	Headers    int `json:"headers"`
	Footers    int `json:"footers"`
	Paragraphs int `json:"paragraphs"`
	TOC        int `json:"toc"`
	Sections   int `json:"sections"`
}

// AnalysisResult is everything the display layer needs for one document.
type AnalysisResult struct {
	Metadata   Metadata  `json:"metadata"`
	Headers    []string  `json:"headers"`
	Footers    []string  `json:"footers"`
	Paragraphs []string  `json:"paragraphs"`
	TOC        []string  `json:"toc"`
	Sections   []Section `json:"sections"`
	Counts     Counts    `json:"counts"`
}

// NewResult returns an empty result with non-nil slices, so a partially
// populated result still serializes to empty lists.
func NewResult() *AnalysisResult {
	return &AnalysisResult{
		Metadata:   NewMetadata(0, "", ""),
		Headers:    []string{},
		Footers:    []string{},
		Paragraphs: []string{},
		TOC:        []string{},
		Sections:   []Section{},
	}
}

// Recount refreshes Counts from the slices.
func (r *AnalysisResult) Recount() {
	r.Counts = Counts{
		Headers:    len(r.Headers),
		Footers:    len(r.Footers),
		Paragraphs: len(r.Paragraphs),
		TOC:        len(r.TOC),
		Sections:   len(r.Sections),
	}
}

// Aggregate merges the classifier outputs into one result.
func Aggregate(meta Metadata, zones *ZoneCollector, paragraphs, toc []string, sections []Section) *AnalysisResult {
	r := NewResult()
	r.Metadata = meta
	if zones != nil {
		r.Headers = zones.Headers.Items()
		r.Footers = zones.Footers.Items()
	}
	if paragraphs != nil {
		r.Paragraphs = paragraphs
	}
	if toc != nil {
		r.TOC = toc
	}
	if sections != nil {
		r.Sections = sections
	}
	r.Recount()
	return r
}

// Paragraphs returns the stripped sentence texts longer than minLen characters.
func Paragraphs(sentences []Sentence, minLen int) []string {
	out := []string{}
	for _, s := range sentences {
		t := strings.TrimSpace(s.Text)
		if utf8.RuneCountInString(t) > minLen {
			out = append(out, t)
		}
	}
	return out
}

// FilterParagraphs keeps paragraphs of at least minLen characters. It is the
// display-side filter and does not change a stored result.
func FilterParagraphs(paragraphs []string, minLen int) []string {
	out := []string{}
	for _, p := range paragraphs {
		if utf8.RuneCountInString(p) >= minLen {
			out = append(out, p)
		}
	}
	return out
}
