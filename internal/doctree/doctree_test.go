package doctree

import "testing"

func TestFullText_SkipsEmptyPages(t *testing.T) {
	tree := &DocTree{Pages: []*Page{
		{Number: 1, Text: "first"},
		{Number: 2, Text: "   "},
		{Number: 3, Text: "third"},
	}}
	if got := tree.FullText(); got != "first\nthird" {
		t.Errorf("expected %q, got %q", "first\nthird", got)
	}
}

func TestHasGeometry(t *testing.T) {
	tree := &DocTree{Pages: []*Page{{Number: 1, Text: "x"}}}
	if tree.HasGeometry() {
		t.Error("expected no geometry for text-only page")
	}
	tree.Pages = append(tree.Pages, &Page{Number: 2, Height: 792, Lines: []Line{{Text: "x", Top: 10, Bottom: 20}}})
	if !tree.HasGeometry() {
		t.Error("expected geometry once a page has lines")
	}
}

func TestPageHasGeometry(t *testing.T) {
	line := Line{Text: "x", Top: 10, Bottom: 20, FontSize: 10}
	tests := []struct {
		name string
		page Page
		want bool
	}{
		{"text only", Page{Number: 1, Text: "x"}, false},
		{"height without lines", Page{Number: 1, Height: 792}, false},
		{"lines without height", Page{Number: 1, Lines: []Line{line}}, false},
		{"height and lines", Page{Number: 1, Height: 792, Lines: []Line{line}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.HasGeometry(); got != tt.want {
				t.Errorf("HasGeometry() = %v, want %v", got, tt.want)
			}
		})
	}
}
