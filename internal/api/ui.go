package api

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfstruct/internal/parser"
	"github.com/dgallion1/pdfstruct/internal/store"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

// Paragraph length filter bounds for the viewer.
const (
	MinLenFloor   = 20
	MinLenCeiling = 200
	MinLenStep    = 10
	MinLenDefault = 50
)

// UIUser owns analyses created from the browser form.
const UIUser = "web"

// PreviewSentences is how many content sentences a section preview shows.
const PreviewSentences = 3

// SectionPreview joins the first PreviewSentences content sentences of s.
func SectionPreview(s structure.Section) string {
	n := min(len(s.Content), PreviewSentences)
	return strings.Join(s.Content[:n], " ")
}

// ClampMinLen keeps a paragraph filter inside the viewer's range.
func ClampMinLen(n int) int {
	if n < MinLenFloor {
		return MinLenFloor
	}
	if n > MinLenCeiling {
		return MinLenCeiling
	}
	return n
}

type sectionView struct {
	Heading string
	Preview string
}

type paragraphView struct {
	N    int
	Len  int
	Text string
}

type analysisView struct {
	ID         string
	Filename   string
	Error      string
	Result     *structure.AnalysisResult
	Sections   []sectionView
	Paragraphs []paragraphView
	MinLen     int
	MinLens    []int
	RawText    string
	Tab        int
}

func newAnalysisView(id, filename string, res *structure.AnalysisResult, raw string, minLen int) analysisView {
	minLen = ClampMinLen(minLen)
	var steps []int
	for n := MinLenFloor; n <= MinLenCeiling; n += MinLenStep {
		steps = append(steps, n)
	}
	sections := make([]sectionView, len(res.Sections))
	for i, sec := range res.Sections {
		sections[i] = sectionView{Heading: sec.Heading, Preview: SectionPreview(sec)}
	}
	var paragraphs []paragraphView
	for i, p := range structure.FilterParagraphs(res.Paragraphs, minLen) {
		paragraphs = append(paragraphs, paragraphView{N: i + 1, Len: utf8.RuneCountInString(p), Text: p})
	}
	return analysisView{
		ID:         id,
		Filename:   filename,
		Result:     res,
		Sections:   sections,
		Paragraphs: paragraphs,
		MinLen:     minLen,
		MinLens:    steps,
		RawText:    raw,
		Tab:        1,
	}
}

const pageStyle = `<style>
body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#222;background:#fafafa}
h1{font-size:1.4rem;border-bottom:2px solid #e0e0e0;padding-bottom:.5rem}
.card{background:#fff;border:1px solid #e0e0e0;border-radius:6px;padding:1rem;margin-bottom:1rem}
.error{background:#fdecea;border-color:#f5c2c0;color:#8a1c17}
.empty{color:#999;font-style:italic}
.tabs input{display:none}
.tabs label{display:inline-block;padding:.5rem 1rem;border:1px solid #e0e0e0;border-bottom:none;border-radius:6px 6px 0 0;background:#eee;cursor:pointer}
.tabs input:checked+label{background:#fff;font-weight:600}
.panel{display:none;background:#fff;border:1px solid #e0e0e0;padding:1rem}
#t1:checked~#p1,#t2:checked~#p2,#t3:checked~#p3,#t4:checked~#p4{display:block}
pre{white-space:pre-wrap;max-height:40rem;overflow:auto}
table td{padding:.2rem .8rem .2rem 0}
</style>`

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>pdfstruct</title>` + pageStyle + `</head><body>
<h1>Document structure analyzer</h1>
<div class="card">
<form method="post" action="/ui/analyze" enctype="multipart/form-data">
<p><input type="file" name="file" accept="{{.Accept}}" required></p>
<p><button type="submit">Analyze</button></p>
</form>
</div>
</body></html>`))

var analysisTmpl = template.Must(template.New("analysis").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Filename}} - pdfstruct</title>` + pageStyle + `</head><body>
<h1>{{.Filename}}</h1>
<p><a href="/">Analyze another document</a></p>
{{- if .Error}}
<div class="card error">{{.Error}}</div>
{{- end}}
<div class="tabs">
<input type="radio" name="tab" id="t1"{{if eq .Tab 1}} checked{{end}}><label for="t1">Overview</label>
<input type="radio" name="tab" id="t2"{{if eq .Tab 2}} checked{{end}}><label for="t2">Structure</label>
<input type="radio" name="tab" id="t3"{{if eq .Tab 3}} checked{{end}}><label for="t3">Contents</label>
<input type="radio" name="tab" id="t4"{{if eq .Tab 4}} checked{{end}}><label for="t4">Raw Text</label>

<div class="panel" id="p1">
<table>
<tr><td>Title</td><td>{{.Result.Metadata.Title}}</td></tr>
<tr><td>Author</td><td>{{.Result.Metadata.Author}}</td></tr>
<tr><td>Pages</td><td>{{.Result.Metadata.Pages}}</td></tr>
<tr><td>Headers</td><td>{{.Result.Counts.Headers}}</td></tr>
<tr><td>Footers</td><td>{{.Result.Counts.Footers}}</td></tr>
<tr><td>Paragraphs</td><td>{{.Result.Counts.Paragraphs}}</td></tr>
<tr><td>TOC entries</td><td>{{.Result.Counts.TOC}}</td></tr>
<tr><td>Sections</td><td>{{.Result.Counts.Sections}}</td></tr>
</table>
</div>

<div class="panel" id="p2">
<h3>Headers</h3>
{{- if .Result.Headers}}<ul>{{range .Result.Headers}}<li>{{.}}</li>{{end}}</ul>{{else}}<p class="empty">No headers found.</p>{{end}}
<h3>Footers</h3>
{{- if .Result.Footers}}<ul>{{range .Result.Footers}}<li>{{.}}</li>{{end}}</ul>{{else}}<p class="empty">No footers found.</p>{{end}}
<h3>Table of contents</h3>
{{- if .Result.TOC}}<ol>{{range .Result.TOC}}<li>{{.}}</li>{{end}}</ol>{{else}}<p class="empty">No table of contents found.</p>{{end}}
</div>

<div class="panel" id="p3">
<h3>Document sections</h3>
{{- range .Sections}}
<details><summary>{{.Heading}}</summary><p>{{.Preview}}</p></details>
{{- else}}<p class="empty">No sections found.</p>{{end}}
</div>

<div class="panel" id="p4">
<h3>Extracted paragraphs</h3>
{{- if .ID}}
<form method="get" action="/ui/analyses/{{.ID}}">
<input type="hidden" name="tab" value="4">
<label>Minimum paragraph length <select name="min_len" onchange="this.form.submit()">
{{- $cur := .MinLen}}{{range .MinLens}}<option value="{{.}}"{{if eq . $cur}} selected{{end}}>{{.}}</option>{{end}}
</select></label> <noscript><button type="submit">Apply</button></noscript>
</form>
{{- end}}
{{- range .Paragraphs}}
<div class="card"><strong>Paragraph {{.N}}</strong> ({{.Len}} characters)<p>{{.Text}}</p></div>
{{- else}}<p class="empty">No paragraphs of at least {{.MinLen}} characters.</p>{{end}}
{{- if .RawText}}
<details><summary>Full extracted text</summary><pre>{{.RawText}}</pre></details>
{{- end}}
</div>
</div>
</body></html>`))

func (s *Server) handleUIIndex(w http.ResponseWriter, r *http.Request) {
	exts := make([]string, 0, len(parser.SupportedExtensions))
	for ext := range parser.SupportedExtensions {
		exts = append(exts, ext)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	slices.Sort(exts)
	indexTmpl.Execute(w, struct{ Accept string }{Accept: strings.Join(exts, ",")})
}

// handleUIAnalyze analyzes an upload synchronously and redirects to the
// stored result. Failed analyses are rendered directly with their partial result.
func (s *Server) handleUIAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		http.Error(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	data, err := s.readUpload(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	an, err := s.deps.Analyzer.Run(r.Context(), filename, data, nil)
	if err != nil {
		view := newAnalysisView("", filename, an.Result, an.Text, MinLenDefault)
		view.Error = err.Error()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		analysisTmpl.Execute(w, view)
		return
	}

	job, err := s.newJob(UIUser, "", filename, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rec := &store.Analysis{
		UserID:      UIUser,
		DocID:       job.DocID,
		Filename:    filename,
		ContentHash: job.ContentHash,
		Result:      an.Result,
		RawText:     an.Text,
	}
	if an.Doc != nil {
		rec.Format = string(an.Doc.Format)
	}
	if err := s.deps.Store.Save(r.Context(), rec); err != nil {
		http.Error(w, "failed to save analysis: "+err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/ui/analyses/%s?min_len=%d", rec.ID, MinLenDefault), http.StatusSeeOther)
}

func (s *Server) handleUIAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	// The viewer is public, so it only shows analyses uploaded through it.
	if errors.Is(err, store.ErrNotFound) || (err == nil && a.UserID != UIUser) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load analysis", http.StatusInternalServerError)
		return
	}

	minLen := MinLenDefault
	if v := r.URL.Query().Get("min_len"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			minLen = n
		}
	}

	view := newAnalysisView(a.ID, a.Filename, a.Result, a.RawText, minLen)
	if n, err := strconv.Atoi(r.URL.Query().Get("tab")); err == nil && n >= 1 && n <= 4 {
		view.Tab = n
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	analysisTmpl.Execute(w, view)
}
