package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBParser handles .epub files. Each spine item with text becomes a page.
type EPUBParser struct{}

func (p *EPUBParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	// goreader opens archives by path.
	tmp, err := os.CreateTemp("", "pdfstruct-epub-*.epub")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	rc, err := epub.OpenReader(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]

	tree := &doctree.DocTree{
		Title:    stem(filename),
		Format:   doctree.FormatEPUB,
		Filename: filename,
		Meta: doctree.Metadata{
			Title:  strings.TrimSpace(book.Title),
			Author: strings.TrimSpace(book.Creator),
		},
	}
	if tree.Meta.Title != "" {
		tree.Title = tree.Meta.Title
	}

	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		text, err := spineItemText(ref.Item)
		if err != nil || text == "" {
			continue
		}
		tree.Pages = append(tree.Pages, &doctree.Page{
			Number: len(tree.Pages) + 1,
			Text:   text,
		})
	}
	tree.Meta.Pages = len(tree.Pages)

	return tree, nil
}

func spineItemText(item *epub.Item) (string, error) {
	rc, err := item.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	doc, err := html.Parse(rc)
	if err != nil {
		return "", err
	}
	return joinLines(htmlLines(doc)), nil
}
