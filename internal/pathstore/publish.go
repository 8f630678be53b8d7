package pathstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dgallion1/pdfstruct/internal/structure"
)

// StructurePath is where a document's structure summary lives.
func StructurePath(userID, docID string) string {
	return fmt.Sprintf("memory/users/%s/documents/%s/structure", userID, docID)
}

// DocumentPath is the root of everything published for a document.
func DocumentPath(userID, docID string) string {
	return fmt.Sprintf("memory/users/%s/documents/%s", userID, docID)
}

// Summary is the value published for one analysis.
type Summary struct {
	AnalysisID string           `json:"analysis_id"`
	Filename   string           `json:"filename"`
	Title      string           `json:"title"`
	Author     string           `json:"author"`
	Pages      int              `json:"pages"`
	Headings   []string         `json:"headings"`
	TOC        []string         `json:"toc"`
	Counts     structure.Counts `json:"counts"`
	CreatedAt  string           `json:"created_at"`
}

// NewSummary condenses a result to what other services need to navigate it.
func NewSummary(analysisID, filename string, r *structure.AnalysisResult, created time.Time) Summary {
	headings := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		headings[i] = s.Heading
	}
	return Summary{
		AnalysisID: analysisID,
		Filename:   filename,
		Title:      r.Metadata.Title,
		Author:     r.Metadata.Author,
		Pages:      r.Metadata.Pages,
		Headings:   headings,
		TOC:        r.TOC,
		Counts:     r.Counts,
		CreatedAt:  created.UTC().Format(time.RFC3339),
	}
}

// PublishStructure writes the summary for a document.
func (c *Client) PublishStructure(ctx context.Context, userID, docID string, sum Summary) error {
	return c.PutNode(ctx, StructurePath(userID, docID), NodeRequest{
		Value:      sum,
		MemoryType: "metacognitive",
		Salience:   0.5,
		Source:     "pdfstruct:" + docID,
	})
}

// UnpublishDocument removes a document and its children.
func (c *Client) UnpublishDocument(ctx context.Context, userID, docID string) error {
	return c.DeleteNode(ctx, DocumentPath(userID, docID), true)
}
