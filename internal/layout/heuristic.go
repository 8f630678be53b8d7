package layout

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

const (
	// titleRatio is the font size multiple over body text that marks a title.
	titleRatio = 1.2
	// maxTitleLen caps how long a title block may be.
	maxTitleLen = 200
	// sizeTolerance is the font size difference still treated as the same block.
	sizeTolerance = 0.5
	// gapRatio is the vertical gap, as a multiple of font size, that ends a block.
	gapRatio = 1.5
)

var listMarker = regexp.MustCompile(`^(\d+\.|[•\-\*]|\([a-z]\)|\([0-9]+\))\s`)

// HeuristicDetector builds blocks from line geometry. Lines with similar font
// sizes and small vertical gaps are merged; each block is then typed by its
// size relative to the page's body text and by list markers.
type HeuristicDetector struct {
	SamplePages int
}

func NewHeuristicDetector(samplePages int) *HeuristicDetector {
	return &HeuristicDetector{SamplePages: samplePages}
}

func (d *HeuristicDetector) Detect(ctx context.Context, doc *doctree.DocTree) ([]structure.PageLayout, error) {
	pages := samplePages(doc, d.SamplePages)
	layouts := make([]structure.PageLayout, 0, len(pages))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return layouts, err
		}
		if !p.HasGeometry() {
			continue
		}
		layouts = append(layouts, structure.PageLayout{
			Page:     p.Number,
			Geometry: structure.PageGeometry{Height: p.Height},
			Blocks:   pageBlocks(p.Lines),
		})
	}
	return layouts, nil
}

type lineGroup struct {
	lines  []doctree.Line
	size   float64
	top    float64
	bottom float64
}

func pageBlocks(lines []doctree.Line) []structure.Block {
	if len(lines) == 0 {
		return []structure.Block{}
	}
	body := bodySize(lines)

	var groups []*lineGroup
	var cur *lineGroup
	for _, l := range lines {
		if cur != nil && joins(cur, l) {
			cur.lines = append(cur.lines, l)
			if l.Bottom > cur.bottom {
				cur.bottom = l.Bottom
			}
			continue
		}
		cur = &lineGroup{lines: []doctree.Line{l}, size: l.FontSize, top: l.Top, bottom: l.Bottom}
		groups = append(groups, cur)
	}

	blocks := make([]structure.Block, 0, len(groups))
	for _, g := range groups {
		texts := make([]string, len(g.lines))
		for i, l := range g.lines {
			texts[i] = l.Text
		}
		text := strings.Join(texts, " ")
		blocks = append(blocks, structure.Block{
			Label:  classify(text, g.size, body),
			Top:    g.top,
			Bottom: g.bottom,
			Text:   text,
		})
	}
	return blocks
}

// joins reports whether l continues group g. List items always start a new block.
func joins(g *lineGroup, l doctree.Line) bool {
	if abs(g.size-l.FontSize) >= sizeTolerance {
		return false
	}
	if l.Top-g.bottom > gapRatio*l.FontSize {
		return false
	}
	return !listMarker.MatchString(l.Text)
}

func classify(text string, size, body float64) structure.Label {
	switch {
	case body > 0 && size >= titleRatio*body && len([]rune(text)) <= maxTitleLen:
		return structure.LabelTitle
	case listMarker.MatchString(text):
		return structure.LabelList
	default:
		return structure.LabelText
	}
}

// bodySize is the median font size over the page's lines, weighted by text length.
func bodySize(lines []doctree.Line) float64 {
	type weighted struct {
		size float64
		n    int
	}
	ws := make([]weighted, 0, len(lines))
	total := 0
	for _, l := range lines {
		n := len([]rune(l.Text))
		ws = append(ws, weighted{l.FontSize, n})
		total += n
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].size < ws[j].size })
	half := (total + 1) / 2
	acc := 0
	for _, w := range ws {
		acc += w.n
		if acc >= half {
			return w.size
		}
	}
	return ws[len(ws)-1].size
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
