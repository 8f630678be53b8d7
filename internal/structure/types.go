// Package structure classifies recognized text blocks and a sentence stream
// into headers, footers, a table-of-contents list and a section list.
package structure

// Label is the layout class a detector assigned to a block.
type Label string

const (
	LabelText   Label = "Text"
	LabelTitle  Label = "Title"
	LabelList   Label = "List"
	LabelTable  Label = "Table"
	LabelFigure Label = "Figure"
)

// ParseLabel maps a detector type name to a Label. Unknown names map to LabelText.
func ParseLabel(s string) Label {
	switch Label(s) {
	case LabelTitle, LabelList, LabelTable, LabelFigure:
		return Label(s)
	}
	return LabelText
}

// Block is a rectangular region on a page. Top and Bottom grow downward
// from the top edge of the page.
type Block struct {
	Label  Label   `json:"label"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Text   string  `json:"text"`
}

// PageGeometry holds the page dimensions used for zone thresholds.
type PageGeometry struct {
	Height float64 `json:"height"`
}

// PageLayout is the detector output for one page.
type PageLayout struct {
	Page     int          `json:"page"`
	Geometry PageGeometry `json:"geometry"`
	Blocks   []Block      `json:"blocks"`
}

// Sentence is one span of the document-order sentence stream.
type Sentence struct {
	Text  string `json:"text"`
	Index int    `json:"order_index"`
}

// NewSentences indexes texts in the order given.
func NewSentences(texts []string) []Sentence {
	out := make([]Sentence, len(texts))
	for i, t := range texts {
		out[i] = Sentence{Text: t, Index: i}
	}
	return out
}

// Section is a heading and the sentences that follow it up to the next heading.
type Section struct {
	Heading string   `json:"heading"`
	Content []string `json:"content"`
}
