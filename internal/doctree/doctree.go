package doctree

import "strings"

// Format identifies the source document type.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatEPUB     Format = "epub"
	FormatText     Format = "txt"
)

// DocTree is a parsed document: metadata plus its pages in order.
type DocTree struct {
	Title    string   // Display title (from metadata or filename)
	Format   Format   // Source format
	Meta     Metadata // Raw document metadata, empty fields when absent
	Pages    []*Page  // Pages or page-like units (spine items, whole file)
	Source   []byte   // Original file bytes, kept for remote layout detection
	Filename string
}

// Metadata is what the document itself declares about itself.
type Metadata struct {
	Pages  int
	Author string
	Title  string
}

// Page is one page of extracted text. Width, Height and Lines are only set
// for formats with geometry.
type Page struct {
	Number int     // 1-based
	Width  float64 // Points
	Height float64 // Points
	Text   string  // Plain text of the page
	Lines  []Line  // Text lines with vertical bounds, top-down
}

// Line is a run of glyphs sharing a baseline. Top and Bottom grow downward
// from the top of the page.
type Line struct {
	Text     string
	Top      float64
	Bottom   float64
	FontSize float64
}

// HasGeometry reports whether the page has a height and positioned lines.
func (p *Page) HasGeometry() bool {
	return p.Height > 0 && len(p.Lines) > 0
}

// HasGeometry reports whether any page carries line geometry.
func (t *DocTree) HasGeometry() bool {
	for _, p := range t.Pages {
		if p.HasGeometry() {
			return true
		}
	}
	return false
}

// FullText joins the non-empty page texts with newlines.
func (t *DocTree) FullText() string {
	var sb strings.Builder
	for _, p := range t.Pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
