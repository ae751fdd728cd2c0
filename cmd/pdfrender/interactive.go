package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pdfium "github.com/070hm/pdfium-core"
	"github.com/070hm/pdfium-core/engine"
	"github.com/070hm/pdfium-core/surface"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err        error
	eng        *engine.WazeroEngine
	core       *pdfium.Core
	doc        pdfium.Document
	file       *os.File
	enginePath string
	pdfPath    string
	result     string
	pages      []pageInfo
	dpiInput   textinput.Model
	selected   int
	state      modelState
}

type pageInfo struct {
	index    int
	widthPt  int
	heightPt int
}

type modelState int

const (
	statePickPage modelState = iota
	stateInputDPI
	stateShowResult
)

func newInteractiveModel(enginePath, pdfPath string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "96"
	ti.Prompt = "dpi: "
	ti.Width = 10

	return &interactiveModel{
		enginePath: enginePath,
		pdfPath:    pdfPath,
		dpiInput:   ti,
		state:      statePickPage,
	}
}

type loadedMsg struct {
	err   error
	eng   *engine.WazeroEngine
	core  *pdfium.Core
	doc   pdfium.Document
	file  *os.File
	pages []pageInfo
}

type renderedMsg struct {
	err    error
	output string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadDocument
}

func (m *interactiveModel) loadDocument() tea.Msg {
	ctx := context.Background()

	wasmBytes, err := os.ReadFile(m.enginePath)
	if err != nil {
		return loadedMsg{err: err}
	}

	eng, err := engine.NewWazeroEngine(ctx, wasmBytes)
	if err != nil {
		return loadedMsg{err: err}
	}

	core := pdfium.New(eng)

	// The document reads through this descriptor lazily; it must stay
	// open until teardown, not just for the duration of the load.
	file, err := os.Open(m.pdfPath)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	doc, err := core.OpenDocument(ctx, file)
	if err != nil {
		file.Close()
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	count, err := core.GetPageCount(ctx, doc)
	if err != nil {
		core.CloseDocument(ctx, doc)
		file.Close()
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	handles, err := core.LoadPages(ctx, doc, 0, count-1)
	if err != nil {
		core.CloseDocument(ctx, doc)
		file.Close()
		eng.Close(ctx)
		return loadedMsg{err: err}
	}
	defer core.ClosePages(ctx, handles)

	pages := make([]pageInfo, 0, count)
	for i, h := range handles {
		info := pageInfo{index: i}
		if h != pdfium.InvalidPage {
			info.widthPt, _ = core.PageWidthPoints(ctx, h)
			info.heightPt, _ = core.PageHeightPoints(ctx, h)
		}
		pages = append(pages, info)
	}

	return loadedMsg{eng: eng, core: core, doc: doc, file: file, pages: pages}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputDPI && msg.String() == "q" {
				break
			}
			m.teardown()
			return m, tea.Quit

		case "up", "k":
			if m.state == statePickPage && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == statePickPage && m.selected < len(m.pages)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case statePickPage:
				m.dpiInput.SetValue("")
				m.dpiInput.Focus()
				m.state = stateInputDPI

			case stateInputDPI:
				m.dpiInput.Blur()
				return m, m.renderPage

			case stateShowResult:
				m.state = statePickPage
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputDPI:
				m.dpiInput.Blur()
				m.state = statePickPage
			case stateShowResult:
				m.state = statePickPage
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.core = msg.core
		m.doc = msg.doc
		m.file = msg.file
		m.pages = msg.pages

	case renderedMsg:
		m.result = msg.output
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputDPI {
		var cmd tea.Cmd
		m.dpiInput, cmd = m.dpiInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) teardown() {
	ctx := context.Background()
	if m.core != nil {
		m.core.Close(ctx)
	}
	if m.file != nil {
		m.file.Close()
	}
	if m.eng != nil {
		m.eng.Close(ctx)
	}
}

func (m *interactiveModel) renderPage() tea.Msg {
	ctx := context.Background()

	dpi := 96
	if v := m.dpiInput.Value(); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return renderedMsg{err: fmt.Errorf("invalid dpi %q", v)}
		}
		dpi = parsed
	}

	info := m.pages[m.selected]

	page, err := m.core.LoadPage(ctx, m.doc, info.index)
	if err != nil {
		return renderedMsg{err: err}
	}
	if page == pdfium.InvalidPage {
		return renderedMsg{err: fmt.Errorf("page %d failed to load", info.index)}
	}
	defer m.core.ClosePage(ctx, page)

	width, err := m.core.PageWidthPixels(ctx, page, dpi)
	if err != nil {
		return renderedMsg{err: err}
	}
	height, err := m.core.PageHeightPixels(ctx, page, dpi)
	if err != nil {
		return renderedMsg{err: err}
	}

	target := surface.NewRGBABitmap(width, height)
	status := m.core.RenderPageToBitmap(ctx, page, target, pdfium.RenderOptions{
		DPI:        dpi,
		DrawWidth:  width,
		DrawHeight: height,
	})
	if status != pdfium.RenderOK {
		return renderedMsg{err: fmt.Errorf("render failed: %s", status)}
	}

	outPath := fmt.Sprintf("page-%d.png", info.index)
	out, err := os.Create(outPath)
	if err != nil {
		return renderedMsg{err: err}
	}
	defer out.Close()

	if err := png.Encode(out, target.Image()); err != nil {
		return renderedMsg{err: err}
	}

	return renderedMsg{output: fmt.Sprintf("page %d rendered at %d dpi (%d x %d px) -> %s",
		info.index, dpi, width, height, outPath)}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.pages) == 0 {
		return "Loading document..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("PDF Renderer"))
	b.WriteString(" ")
	b.WriteString(m.pdfPath)
	b.WriteString("\n\n")

	switch m.state {
	case statePickPage:
		b.WriteString("Select a page to render:\n\n")
		for i, p := range m.pages {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatPage(p)))
			} else {
				b.WriteString(cursor + m.formatPage(p))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter render • q quit"))

	case stateInputDPI:
		p := m.pages[m.selected]
		b.WriteString(fmt.Sprintf("Rendering %s\n\n", pageStyle.Render(fmt.Sprintf("page %d", p.index))))
		b.WriteString(m.dpiInput.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter render • esc back"))

	case stateShowResult:
		p := m.pages[m.selected]
		b.WriteString(fmt.Sprintf("Result for %s:\n\n", pageStyle.Render(fmt.Sprintf("page %d", p.index))))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatPage(p pageInfo) string {
	name := pageStyle.Render(fmt.Sprintf("page %d", p.index))
	if p.widthPt == 0 && p.heightPt == 0 {
		return name + " " + errorStyle.Render("(failed to load)")
	}
	return name + " " + dimStyle.Render(fmt.Sprintf("%d x %d pt", p.widthPt, p.heightPt))
}

func runInteractive(enginePath, pdfPath string) error {
	p := tea.NewProgram(newInteractiveModel(enginePath, pdfPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
