package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Lines(t *testing.T) {
	input := `<html><head><title>Handbook</title><style>p{}</style></head>
<body>
<nav>Home | About</nav>
<h1>INTRODUCTION</h1>
<p>This   handbook explains
   the process.</p>
<h2>1.1 Scope</h2>
<ul><li>First item</li><li>Second item</li></ul>
<script>var x = 1;</script>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "handbook.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Handbook" {
		t.Errorf("expected title %q, got %q", "Handbook", tree.Title)
	}

	lines := strings.Split(tree.FullText(), "\n")
	want := []string{"INTRODUCTION", "This handbook explains the process.", "1.1 Scope", "First item", "Second item"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestHTMLParser_NoTitleUsesFilename(t *testing.T) {
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader("<p>hello</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "page" {
		t.Errorf("expected title %q, got %q", "page", tree.Title)
	}
}
