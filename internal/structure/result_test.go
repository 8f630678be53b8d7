package structure

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewMetadata_Fallbacks(t *testing.T) {
	m := NewMetadata(3, "", "  ")
	if m.Author != "Unknown" {
		t.Errorf("expected author %q, got %q", "Unknown", m.Author)
	}
	if m.Title != "Untitled" {
		t.Errorf("expected title %q, got %q", "Untitled", m.Title)
	}
	if m.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", m.Pages)
	}
}

func TestParagraphs_StrictLength(t *testing.T) {
	in := NewSentences([]string{
		"  exactly twenty chars ", // 20 after strip
		"twenty-one characters",   // 21
		"short",
	})
	got := Paragraphs(in, 20)
	if len(got) != 1 || got[0] != "twenty-one characters" {
		t.Errorf("expected only the 21-char sentence, got %v", got)
	}
}

func TestFilterParagraphs_Inclusive(t *testing.T) {
	paras := []string{strings.Repeat("a", 49), strings.Repeat("b", 50), strings.Repeat("c", 80)}
	got := FilterParagraphs(paras, 50)
	if len(got) != 2 {
		t.Errorf("expected 2 paragraphs, got %d", len(got))
	}
}

func TestAggregate_DedupsHeadersKeepsTOCDuplicates(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	pages := []PageLayout{
		{Geometry: PageGeometry{Height: 1000}, Blocks: []Block{{Label: LabelTitle, Top: 10, Bottom: 40, Text: "ACME Handbook"}}},
		{Geometry: PageGeometry{Height: 1000}, Blocks: []Block{{Label: LabelTitle, Top: 10, Bottom: 40, Text: "ACME Handbook"}}},
	}
	sentences := NewSentences([]string{"Table of contents", "Table of contents"})
	r := c.Classify(NewMetadata(2, "", ""), pages, sentences)

	if len(r.Headers) != 1 {
		t.Errorf("expected 1 header, got %v", r.Headers)
	}
	if len(r.TOC) != 2 {
		t.Errorf("expected 2 toc entries, got %v", r.TOC)
	}
	if r.Counts.Headers != 1 || r.Counts.TOC != 2 {
		t.Errorf("unexpected counts %+v", r.Counts)
	}
}

func TestAggregate_EmptySerializesAsLists(t *testing.T) {
	r := Aggregate(NewMetadata(0, "", ""), nil, nil, nil, nil)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"headers":[]`, `"footers":[]`, `"toc":[]`, `"sections":[]`, `"paragraphs":[]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}

func TestClassifier_FoldHeadingCase(t *testing.T) {
	in := NewSentences([]string{"SUMMARY", "text here."})
	if got := NewClassifier(DefaultConfig()).Sections(in); len(got) != 1 {
		t.Errorf("expected 1 section by default, got %d", len(got))
	}
	cfg := DefaultConfig()
	cfg.FoldHeadingCase = true
	if got := NewClassifier(cfg).Sections(in); len(got) != 0 {
		t.Errorf("expected 0 sections with folded case, got %d", len(got))
	}
}

func TestNewClassifier_ZeroConfigDefaults(t *testing.T) {
	c := NewClassifier(Config{})
	cfg := c.Config()
	if cfg.Zones.HeaderFraction != 0.15 || cfg.Zones.FooterFraction != 0.85 {
		t.Errorf("unexpected zones %+v", cfg.Zones)
	}
	if cfg.MinParagraphLen != 20 {
		t.Errorf("expected min paragraph len 20, got %d", cfg.MinParagraphLen)
	}
}
