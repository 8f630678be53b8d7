package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become their
// own lines so the segmenter sees them as separate sentences.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var lines []string
	var title string

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			h := strings.TrimSpace(string(node.Text(src)))
			if h == "" {
				continue
			}
			if title == "" && node.Level == 1 {
				title = h
			}
			lines = append(lines, h)
		default:
			if t := extractText(n, src); t != "" {
				lines = append(lines, strings.Split(t, "\n")...)
			}
		}
	}

	return singlePage(doctree.FormatMarkdown, filename, title, joinLines(lines)), nil
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// (code blocks) carry their text in Lines; everything else in inline children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
