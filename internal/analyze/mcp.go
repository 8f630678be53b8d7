package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/pdfstruct/internal/structure"
)

// MaxToolFileBytes bounds the files analyze_document will read.
const MaxToolFileBytes = 100 << 20

// ErrOutsideRoot is returned for tool paths that leave the file root.
var ErrOutsideRoot = errors.New("path is outside the file root")

// RegisterMCP registers the analysis tools on an MCP server. analyze_document
// is only registered when the analyzer has a file root.
func (a *Analyzer) RegisterMCP(srv *mcp.Server) {
	if a.fileRoot != "" {
		a.registerAnalyzeTool(srv)
	}
	a.registerSentencesTool(srv)
	a.registerBlocksTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool decodes arguments into Req, calls fn and returns its result as JSON text.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := fn(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- analyze_document ---

type analyzeReq struct {
	Path string `json:"path"`
}

func (a *Analyzer) registerAnalyzeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "analyze_document",
		Description: "Analyze a document file (pdf, docx, md, html, epub, txt) and return its headers, footers, paragraphs, table of contents and sections.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path, relative to the server's file root"},
		}, []string{"path"}),
	}

	addTool(srv, tool, func(ctx context.Context, r *analyzeReq) (any, error) {
		if r.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		data, err := a.readRootFile(r.Path)
		if err != nil {
			return nil, err
		}
		return a.Analyze(ctx, filepath.Base(r.Path), data, nil)
	})
}

// readRootFile reads path relative to the file root. Absolute paths must lie
// under the root; os.Root rejects ".." and symlinks that leave it.
func (a *Analyzer) readRootFile(path string) ([]byte, error) {
	rel := filepath.Clean(path)
	if filepath.IsAbs(rel) {
		base, err := filepath.Abs(a.fileRoot)
		if err != nil {
			return nil, fmt.Errorf("resolve file root: %w", err)
		}
		if rel, err = filepath.Rel(base, rel); err != nil {
			return nil, ErrOutsideRoot
		}
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ErrOutsideRoot
	}

	root, err := os.OpenRoot(a.fileRoot)
	if err != nil {
		return nil, fmt.Errorf("open file root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxToolFileBytes {
		return nil, fmt.Errorf("file too large: %d bytes", info.Size())
	}
	data, err := io.ReadAll(io.LimitReader(f, MaxToolFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

// --- classify_sentences ---

type sentencesReq struct {
	Sentences       []string `json:"sentences"`
	MinParagraphLen int      `json:"min_paragraph_len"`
}

type sentencesResp struct {
	TOC        []string            `json:"toc"`
	Sections   []structure.Section `json:"sections"`
	Paragraphs []string            `json:"paragraphs"`
}

func (a *Analyzer) registerSentencesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "classify_sentences",
		Description: "Find table-of-contents entries, sections and paragraphs in an ordered list of sentences.",
		InputSchema: inputSchema(map[string]any{
			"sentences": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Sentences in document order",
			},
			"min_paragraph_len": map[string]any{"type": "integer", "description": "Paragraph length threshold (default 20)"},
		}, []string{"sentences"}),
	}

	addTool(srv, tool, func(_ context.Context, r *sentencesReq) (any, error) {
		sents := structure.NewSentences(r.Sentences)
		minLen := a.classifier.Config().MinParagraphLen
		if r.MinParagraphLen > 0 {
			minLen = r.MinParagraphLen
		}
		return sentencesResp{
			TOC:        a.classifier.TOC(sents),
			Sections:   a.classifier.Sections(sents),
			Paragraphs: structure.Paragraphs(sents, minLen),
		}, nil
	})
}

// --- classify_blocks ---

type blocksReq struct {
	Pages []structure.PageLayout `json:"pages"`
}

type blocksResp struct {
	Headers []string `json:"headers"`
	Footers []string `json:"footers"`
}

func (a *Analyzer) registerBlocksTool(srv *mcp.Server) {
	block := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":  map[string]any{"type": "string", "enum": []string{"Text", "Title", "List", "Table", "Figure"}},
			"top":    map[string]any{"type": "number"},
			"bottom": map[string]any{"type": "number"},
			"text":   map[string]any{"type": "string"},
		},
	}
	tool := &mcp.Tool{
		Name:        "classify_blocks",
		Description: "Collect page headers and footers from layout blocks. Coordinates grow downward from the page top.",
		InputSchema: inputSchema(map[string]any{
			"pages": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"page":     map[string]any{"type": "integer"},
						"geometry": map[string]any{"type": "object", "properties": map[string]any{"height": map[string]any{"type": "number"}}},
						"blocks":   map[string]any{"type": "array", "items": block},
					},
				},
			},
		}, []string{"pages"}),
	}

	addTool(srv, tool, func(_ context.Context, r *blocksReq) (any, error) {
		zones := a.classifier.Zones()
		zones.CollectAll(r.Pages)
		return blocksResp{
			Headers: zones.Headers.Items(),
			Footers: zones.Footers.Items(),
		}, nil
	})
}
