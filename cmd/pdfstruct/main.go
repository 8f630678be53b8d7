package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/pdfstruct/internal/analyze"
	"github.com/dgallion1/pdfstruct/internal/api"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)
)

var tabNames = []string{"Overview", "Structure", "Contents", "Raw Text"}

const (
	tabOverview = iota
	tabStructure
	tabContents
	tabRaw
)

type model struct {
	filename string
	result   *structure.AnalysisResult
	rawText  string
	err      error

	tab    int
	minLen int

	viewport viewport.Model
	width    int
	height   int
}

func newModel(filename string, an *analyze.Analysis, err error, minLen int) model {
	m := model{
		filename: filename,
		result:   an.Result,
		rawText:  an.Text,
		err:      err,
		minLen:   api.ClampMinLen(minLen),
		width:    80,
		height:   24,
	}
	m.viewport = viewport.New(m.width, m.bodyHeight())
	m.viewport.SetContent(m.content())
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			return m, tea.Quit

		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(tabNames)
			return m.refresh(), nil

		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(tabNames) - 1) % len(tabNames)
			return m.refresh(), nil

		case "1", "2", "3", "4":
			m.tab = int(msg.String()[0] - '1')
			return m.refresh(), nil

		case "+", "=":
			m.minLen = api.ClampMinLen(m.minLen + api.MinLenStep)
			return m.refresh(), nil

		case "-":
			m.minLen = api.ClampMinLen(m.minLen - api.MinLenStep)
			return m.refresh(), nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = m.bodyHeight()
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the active tab into the viewport and scrolls to the top.
func (m model) refresh() model {
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
	return m
}

// bodyHeight reserves 4 lines: title, tab bar, blank line, controls.
func (m model) bodyHeight() int {
	h := m.height - 4
	if m.err != nil {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.filename))
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	sb.WriteString("\n\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	controls := "TAB/←/→: switch tab  ↑/↓: scroll  Q: quit"
	if m.tab == tabRaw {
		controls = fmt.Sprintf("TAB/←/→: switch tab  ↑/↓: scroll  +/-: min length (%d)  Q: quit", m.minLen)
	}
	sb.WriteString(controlsStyle.Render(controls))

	return sb.String()
}

func (m model) content() string {
	switch m.tab {
	case tabOverview:
		return m.overview()
	case tabStructure:
		return m.structureTab()
	case tabContents:
		return m.contents()
	default:
		return m.paragraphs()
	}
}

func (m model) overview() string {
	r := m.result
	rows := [][2]string{
		{"Title", r.Metadata.Title},
		{"Author", r.Metadata.Author},
		{"Pages", fmt.Sprint(r.Metadata.Pages)},
		{"Headers", fmt.Sprint(r.Counts.Headers)},
		{"Footers", fmt.Sprint(r.Counts.Footers)},
		{"Paragraphs", fmt.Sprint(r.Counts.Paragraphs)},
		{"TOC entries", fmt.Sprint(r.Counts.TOC)},
		{"Sections", fmt.Sprint(r.Counts.Sections)},
	}
	var sb strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&sb, "%-12s %s\n", row[0], row[1])
	}
	return sb.String()
}

func (m model) structureTab() string {
	var sb strings.Builder
	writeList(&sb, "Headers", m.result.Headers, "No headers found.", false)
	writeList(&sb, "Footers", m.result.Footers, "No footers found.", false)
	writeList(&sb, "Table of contents", m.result.TOC, "No table of contents found.", true)
	return sb.String()
}

func (m model) contents() string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render("Document sections"))
	sb.WriteString("\n")
	if len(m.result.Sections) == 0 {
		sb.WriteString(emptyStyle.Render("No sections found."))
		sb.WriteString("\n")
	}
	for _, s := range m.result.Sections {
		sb.WriteString("▸ " + s.Heading + "\n")
		if preview := api.SectionPreview(s); preview != "" {
			sb.WriteString("    " + preview + "\n")
		}
	}
	return sb.String()
}

func (m model) paragraphs() string {
	var sb strings.Builder
	paragraphs := structure.FilterParagraphs(m.result.Paragraphs, m.minLen)
	sb.WriteString(headingStyle.Render(fmt.Sprintf("Extracted paragraphs (min %d chars)", m.minLen)))
	sb.WriteString("\n\n")
	if len(paragraphs) == 0 {
		sb.WriteString(emptyStyle.Render(fmt.Sprintf("No paragraphs of at least %d characters.", m.minLen)))
		sb.WriteString("\n\n")
	}
	for i, p := range paragraphs {
		fmt.Fprintf(&sb, "Paragraph %d (%d characters)\n%s\n\n", i+1, utf8.RuneCountInString(p), p)
	}

	sb.WriteString(headingStyle.Render("Full extracted text"))
	sb.WriteString("\n")
	if strings.TrimSpace(m.rawText) == "" {
		sb.WriteString(emptyStyle.Render("No text extracted."))
		return sb.String()
	}
	sb.WriteString(m.rawText)
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string, empty string, numbered bool) {
	sb.WriteString(headingStyle.Render(title))
	sb.WriteString("\n")
	if len(items) == 0 {
		sb.WriteString(emptyStyle.Render(empty))
		sb.WriteString("\n\n")
		return
	}
	for i, it := range items {
		if numbered {
			fmt.Fprintf(sb, "%3d. %s\n", i+1, it)
		} else {
			sb.WriteString("  • " + it + "\n")
		}
	}
	sb.WriteString("\n")
}

func main() {
	minLen := flag.Int("min-len", api.MinLenDefault, "Minimum paragraph length to display (20-200)")
	asJSON := flag.Bool("json", false, "Print the analysis result as JSON and exit")
	verbose := flag.Bool("v", false, "Log analysis progress to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdfstruct - document structure viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  pdfstruct [options] file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  TAB, ←/→  Switch tab\n")
		fmt.Fprintf(os.Stderr, "  1-4       Jump to tab\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓       Scroll\n")
		fmt.Fprintf(os.Stderr, "  +/-       Change minimum paragraph length by 10\n")
		fmt.Fprintf(os.Stderr, "  Q         Quit\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	filename := flag.Arg(0)
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read file '%s': %v\n", filename, err)
		os.Exit(1)
	}

	var logOut io.Writer = io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	log := slog.New(slog.NewTextHandler(logOut, nil))

	analyzer, err := analyze.New(analyze.Options{}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	an, runErr := analyzer.Run(context.Background(), filepath.Base(filename), data, nil)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(an.Result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(newModel(filepath.Base(filename), an, runErr, *minLen), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
