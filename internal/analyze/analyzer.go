// Package analyze runs one document through parsing, layout detection,
// sentence segmentation and structure classification.
package analyze

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/dgallion1/pdfstruct/internal/layout"
	"github.com/dgallion1/pdfstruct/internal/parser"
	"github.com/dgallion1/pdfstruct/internal/sentence"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

// Phase names a step of an analysis.
type Phase string

const (
	PhaseParsing     Phase = "parsing"
	PhaseLayout      Phase = "detecting_layout"
	PhaseSegmenting  Phase = "segmenting"
	PhaseClassifying Phase = "classifying"
)

// Error reports the phase an analysis stopped in.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis failed: %s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Analysis is the result together with the intermediate data it was built from.
type Analysis struct {
	Result    *structure.AnalysisResult
	Doc       *doctree.DocTree
	Layouts   []structure.PageLayout
	Sentences []structure.Sentence
	Text      string
	Duration  time.Duration
}

// Blocks counts layout blocks over all sampled pages.
func (a *Analysis) Blocks() int {
	n := 0
	for _, p := range a.Layouts {
		n += len(p.Blocks)
	}
	return n
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	parserOpts parser.Options
	detector   layout.Detector
	segmenter  *sentence.Segmenter
	classifier *structure.Classifier
	fileRoot   string
	log        *slog.Logger
}

// Options configures an Analyzer. A nil Detector uses the heuristic detector.
type Options struct {
	Parser      parser.Options
	Detector    layout.Detector
	Classifier  structure.Config
	SamplePages int

	// FileRoot is the directory analyze_document reads from. Empty leaves
	// the tool unregistered.
	FileRoot string
}

func New(opts Options, log *slog.Logger) (*Analyzer, error) {
	classifier := structure.NewClassifier(opts.Classifier)
	seg, err := sentence.NewSegmenter(classifier.BreakPatterns()...)
	if err != nil {
		return nil, err
	}
	det := opts.Detector
	if det == nil {
		samples := opts.SamplePages
		if samples == 0 {
			samples = layout.DefaultSamplePages
		}
		det = layout.NewHeuristicDetector(samples)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		parserOpts: opts.Parser,
		detector:   det,
		segmenter:  seg,
		classifier: classifier,
		fileRoot:   opts.FileRoot,
		log:        log,
	}, nil
}

func (a *Analyzer) Classifier() *structure.Classifier { return a.classifier }

// Analyze returns the structure of one document. On failure the partially
// populated result is returned together with an *Error.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte, onPhase func(Phase)) (*structure.AnalysisResult, error) {
	an, err := a.Run(ctx, filename, data, onPhase)
	return an.Result, err
}

// Run is Analyze with the intermediate data kept. The returned Analysis is
// never nil.
func (a *Analyzer) Run(ctx context.Context, filename string, data []byte, onPhase func(Phase)) (*Analysis, error) {
	start := time.Now()
	an := &Analysis{Result: structure.NewResult()}
	enter := func(p Phase) {
		if onPhase != nil {
			onPhase(p)
		}
	}
	fail := func(p Phase, err error) (*Analysis, error) {
		an.Duration = time.Since(start)
		an.Result.Recount()
		a.log.Warn("analysis failed", "filename", filename, "phase", p, "error", err)
		return an, &Error{Phase: p, Err: err}
	}

	enter(PhaseParsing)
	p, err := parser.ForFile(filename, a.parserOpts)
	if err != nil {
		return fail(PhaseParsing, err)
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return fail(PhaseParsing, err)
	}
	an.Doc = doc
	pages := doc.Meta.Pages
	if pages == 0 {
		pages = len(doc.Pages)
	}
	an.Result.Metadata = structure.NewMetadata(pages, doc.Meta.Author, doc.Meta.Title)

	if err := ctx.Err(); err != nil {
		return fail(PhaseLayout, err)
	}
	enter(PhaseLayout)
	if doc.Format == doctree.FormatPDF {
		layouts, err := a.detector.Detect(ctx, doc)
		if err != nil {
			return fail(PhaseLayout, err)
		}
		an.Layouts = layouts
		zones := a.classifier.Zones()
		zones.CollectAll(layouts)
		an.Result.Headers = zones.Headers.Items()
		an.Result.Footers = zones.Footers.Items()
	}

	if err := ctx.Err(); err != nil {
		return fail(PhaseSegmenting, err)
	}
	enter(PhaseSegmenting)
	an.Text = doc.FullText()
	an.Sentences = a.segmenter.Segment(an.Text)

	enter(PhaseClassifying)
	an.Result.Paragraphs = a.classifier.Paragraphs(an.Sentences)
	an.Result.TOC = a.classifier.TOC(an.Sentences)
	an.Result.Sections = a.classifier.Sections(an.Sentences)
	an.Result.Recount()
	an.Duration = time.Since(start)

	a.log.Info("analysis complete",
		"filename", filename,
		"format", doc.Format,
		"pages", pages,
		"blocks", an.Blocks(),
		"sentences", len(an.Sentences),
		"sections", an.Result.Counts.Sections,
		"duration_ms", an.Duration.Milliseconds(),
	)
	return an, nil
}
