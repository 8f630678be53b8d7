package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/dgallion1/pdfstruct/internal/pdftest"
)

func samplePDF() []byte {
	return pdftest.Build(pdftest.Doc{
		Author: "Jane Doe",
		Title:  "Sample",
		Pages: []pdftest.Page{
			{Lines: []pdftest.Line{
				{Text: "Annual Report", X: 72, Y: 700, FontSize: 24},
				{Text: "The quick brown fox jumps over the lazy dog.", X: 72, Y: 650, FontSize: 11},
				{Text: "Page 1", X: 290, Y: 40, FontSize: 9},
			}},
			{Lines: []pdftest.Line{
				{Text: "Second page body text.", X: 72, Y: 700, FontSize: 11},
			}},
		},
	})
}

func TestPDFParser_Metadata(t *testing.T) {
	p := &PDFParser{}
	tree, err := p.Parse(bytes.NewReader(samplePDF()), "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if tree.Format != doctree.FormatPDF {
		t.Errorf("format = %q", tree.Format)
	}
	if tree.Meta.Pages != 2 {
		t.Errorf("pages = %d, want 2", tree.Meta.Pages)
	}
	if tree.Meta.Author != "Jane Doe" {
		t.Errorf("author = %q", tree.Meta.Author)
	}
	if tree.Meta.Title != "Sample" || tree.Title != "Sample" {
		t.Errorf("title = %q / %q", tree.Meta.Title, tree.Title)
	}
	if len(tree.Source) == 0 {
		t.Error("source bytes not kept")
	}
}

func TestPDFParser_Lines(t *testing.T) {
	p := &PDFParser{}
	tree, err := p.Parse(bytes.NewReader(samplePDF()), "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Pages) != 2 {
		t.Fatalf("got %d pages", len(tree.Pages))
	}
	first := tree.Pages[0]
	if first.Height != 792 || first.Width != 612 {
		t.Errorf("page size = %vx%v", first.Width, first.Height)
	}
	if !first.HasGeometry() {
		t.Fatal("expected line geometry")
	}
	if len(first.Lines) != 3 {
		t.Fatalf("got %d lines: %+v", len(first.Lines), first.Lines)
	}
	for i := 1; i < len(first.Lines); i++ {
		if first.Lines[i].Top < first.Lines[i-1].Top {
			t.Errorf("lines not sorted top-down: %+v", first.Lines)
		}
	}
	if !strings.Contains(first.Lines[0].Text, "Annual") {
		t.Errorf("first line = %q", first.Lines[0].Text)
	}
	if first.Lines[0].FontSize <= first.Lines[1].FontSize {
		t.Errorf("title font %v not larger than body %v", first.Lines[0].FontSize, first.Lines[1].FontSize)
	}
	footer := first.Lines[2]
	if footer.Top < 0.85*first.Height {
		t.Errorf("footer top = %v, want near page bottom", footer.Top)
	}
	if !strings.Contains(tree.FullText(), "Second page") {
		t.Errorf("full text missing second page: %q", tree.FullText())
	}
}

func TestPDFParser_Invalid(t *testing.T) {
	p := &PDFParser{}
	if _, err := p.Parse(strings.NewReader("not a pdf"), "bad.pdf"); err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestSplitPages(t *testing.T) {
	pages := mergeFallbackText(nil, splitPages("one\fTwo\f\f"))
	if len(pages) != 2 {
		t.Fatalf("got %d pages", len(pages))
	}
	if pages[1].Number != 2 || pages[1].Text != "Two" {
		t.Errorf("page 2 = %+v", pages[1])
	}
}
