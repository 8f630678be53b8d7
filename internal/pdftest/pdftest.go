// Package pdftest builds small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Line is one text line drawn at baseline Y (PDF user space, origin bottom-left).
type Line struct {
	Text     string
	X, Y     float64
	FontSize float64
}

// Page is a page of lines on a MediaBox of Width x Height points.
type Page struct {
	Width, Height float64
	Lines         []Line
}

// Doc describes a document to build.
type Doc struct {
	Pages  []Page
	Author string
	Title  string
}

// Build renders d as a PDF with a correct cross-reference table.
func Build(d Doc) []byte {
	var objs []string

	// 1: catalog, 2: pages, 3: font, 4: info, then page/content pairs.
	kids := make([]string, len(d.Pages))
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(d.Pages)),
		fontObject(),
		fmt.Sprintf("<< /Author (%s) /Title (%s) /Producer (pdftest) >>", escape(d.Author), escape(d.Title)),
	)

	for i, p := range d.Pages {
		w, h := p.Width, p.Height
		if w == 0 {
			w = 612
		}
		if h == 0 {
			h = 792
		}
		var content strings.Builder
		for _, l := range p.Lines {
			size := l.FontSize
			if size == 0 {
				size = 11
			}
			fmt.Fprintf(&content, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(size), num(l.X), num(l.Y), escape(l.Text))
		}
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>",
				num(w), num(h), 6+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func fontObject() string {
	widths := make([]string, 95)
	for i := range widths {
		widths[i] = "556"
	}
	widths[0] = "278" // space
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
