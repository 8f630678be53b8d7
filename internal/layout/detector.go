// Package layout finds typed blocks on document pages.
package layout

import (
	"context"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

// DefaultSamplePages is how many leading pages a detector looks at.
const DefaultSamplePages = 5

// Detector returns per-page layout blocks for a parsed document.
type Detector interface {
	Detect(ctx context.Context, doc *doctree.DocTree) ([]structure.PageLayout, error)
}

// samplePages returns the first n pages of doc, or all of them when n <= 0.
func samplePages(doc *doctree.DocTree, n int) []*doctree.Page {
	if n <= 0 || n >= len(doc.Pages) {
		return doc.Pages
	}
	return doc.Pages[:n]
}
