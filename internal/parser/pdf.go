package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Letter size, used when a page declares no MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0

	// Glyphs whose baselines differ by less than this share a line.
	lineTolerance = 2.0
)

// PDFParser handles PDF files. Text and glyph geometry come from
// ledongthuc/pdf; document info comes from pdfcpu. If the Go library yields
// no text it can fall back to pdftotext.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	tree := &doctree.DocTree{
		Title:    stem(filename),
		Format:   doctree.FormatPDF,
		Source:   data,
		Filename: filename,
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	var pages []*doctree.Page
	if err == nil {
		pages = extractPDFPages(reader)
	}
	if (err != nil || !hasText(pages)) && p.FallbackPdftotext {
		if text, ferr := extractPdftotext(data); ferr == nil {
			pages = mergeFallbackText(pages, splitPages(text))
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	tree.Pages = pages

	tree.Meta = readPDFInfo(data, reader)
	if tree.Meta.Pages == 0 {
		tree.Meta.Pages = len(pages)
	}
	if tree.Meta.Title != "" {
		tree.Title = tree.Meta.Title
	}

	return tree, nil
}

func extractPDFPages(reader *pdflib.Reader) []*doctree.Page {
	var pages []*doctree.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		width, height := pageSize(page)
		lines := pageLines(page, height)
		pages = append(pages, &doctree.Page{
			Number: i,
			Width:  width,
			Height: height,
			Text:   pageText(page, lines),
			Lines:  lines,
		})
	}
	return pages
}

// pageText joins the positioned lines top-down. Pages whose glyphs could not
// be positioned fall back to the library's plain text.
func pageText(page pdflib.Page, lines []doctree.Line) string {
	if len(lines) > 0 {
		texts := make([]string, len(lines))
		for i, l := range lines {
			texts[i] = l.Text
		}
		return strings.Join(texts, "\n")
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// pageSize reads the MediaBox, following Parent links for inherited boxes.
func pageSize(page pdflib.Page) (float64, float64) {
	v := page.V
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdflib.Array && box.Len() >= 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

// pageLines groups positioned glyphs into lines by baseline and converts
// them to top-down coordinates. Malformed content streams yield no lines.
func pageLines(page pdflib.Page, height float64) (lines []doctree.Line) {
	defer func() {
		if recover() != nil {
			lines = nil
		}
	}()

	type row struct {
		y     float64
		texts []pdflib.Text
	}
	var rows []*row
	for _, t := range page.Content().Text {
		if t.S == "" {
			continue
		}
		var target *row
		for _, r := range rows {
			if abs(r.y-t.Y) < lineTolerance {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{y: t.Y}
			rows = append(rows, target)
		}
		target.texts = append(target.texts, t)
	}

	for _, r := range rows {
		sort.SliceStable(r.texts, func(i, j int) bool { return r.texts[i].X < r.texts[j].X })

		var sb strings.Builder
		size := 0.0
		prevEnd := 0.0
		for i, t := range r.texts {
			if t.FontSize > size {
				size = t.FontSize
			}
			if i > 0 && t.X-prevEnd > t.FontSize*0.2 && !strings.HasSuffix(sb.String(), " ") && t.S != " " {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		text := strings.Join(strings.Fields(sb.String()), " ")
		if text == "" {
			continue
		}
		if size <= 0 {
			size = 10
		}
		lines = append(lines, doctree.Line{
			Text:     text,
			Top:      clamp(height-(r.y+size), 0, height),
			Bottom:   clamp(height-r.y, 0, height),
			FontSize: size,
		})
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Top < lines[j].Top })
	return lines
}

// readPDFInfo reads page count, author and title with pdfcpu, filling gaps
// from the Info dictionary as seen by ledongthuc/pdf.
func readPDFInfo(data []byte, reader *pdflib.Reader) doctree.Metadata {
	var meta doctree.Metadata

	conf := model.NewDefaultConfiguration()
	if ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf); err == nil {
		meta.Pages = ctx.PageCount
		meta.Author = strings.TrimSpace(ctx.Author)
		meta.Title = strings.TrimSpace(ctx.Title)
	}

	if reader == nil {
		return meta
	}
	if meta.Pages == 0 {
		meta.Pages = reader.NumPage()
	}
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	if meta.Author == "" {
		meta.Author = strings.TrimSpace(info.Key("Author").Text())
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(info.Key("Title").Text())
	}
	return meta
}

func extractPdftotext(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "pdfstruct-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// splitPages splits pdftotext output on form feeds.
func splitPages(text string) []string {
	return strings.Split(text, "\f")
}

// mergeFallbackText replaces page texts with pdftotext output while keeping
// any geometry the Go library did find.
func mergeFallbackText(pages []*doctree.Page, texts []string) []*doctree.Page {
	if len(pages) == 0 {
		for i, t := range texts {
			if strings.TrimSpace(t) == "" {
				continue
			}
			pages = append(pages, &doctree.Page{Number: i + 1, Text: strings.TrimSpace(t)})
		}
		return pages
	}
	for i, p := range pages {
		if i < len(texts) {
			p.Text = strings.TrimSpace(texts[i])
		}
	}
	return pages
}

func hasText(pages []*doctree.Page) bool {
	for _, p := range pages {
		if p.Text != "" {
			return true
		}
	}
	return false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
