package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/wastats/internal/metrics"
	"github.com/Zuo-Peng/wastats/internal/report"
	"github.com/Zuo-Peng/wastats/internal/search"
	"github.com/Zuo-Peng/wastats/internal/store"
)

const debounceDelay = 200 * time.Millisecond

// archiveTitle is the last tab, after the report sections.
const archiveTitle = "Archive"

// message types

type searchResultMsg struct {
	query   string
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

// Options configures the dashboard.
type Options struct {
	Mode       report.Mode
	SearchOpts search.Options
}

// model

type model struct {
	ctx        context.Context
	db         *store.DB
	result     *metrics.Result
	mode       report.Mode
	rep        *report.Report
	tab        int
	searchOpts search.Options

	section viewport.Model

	query       string
	results     []search.Result
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewID   int64 // avoids duplicate renders
	width       int
	height      int
	ready       bool
	quitting    bool
	selected    *search.Result
}

func initialModel(ctx context.Context, db *store.DB, res *metrics.Result, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Search messages..."
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		ctx:         ctx,
		db:          db,
		result:      res,
		mode:        opts.Mode,
		rep:         report.Build(res, opts.Mode),
		searchOpts:  opts.SearchOpts,
		filterInput: ti,
		section:     viewport.New(0, 0),
		preview:     viewport.New(0, 0),
	}
}

// Run starts the dashboard and blocks until it exits. If the user picks a
// message on the archive tab it is copied to the clipboard.
func Run(ctx context.Context, db *store.DB, res *metrics.Result, opts Options) error {
	m := initialModel(ctx, db, res, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.selected != nil {
		return copyMessage(ctx, db, fm.selected.ID)
	}
	return nil
}

// copyMessage puts "[timestamp] sender: body" on the clipboard, printing it
// instead when no clipboard is available.
func copyMessage(ctx context.Context, db *store.DB, id int64) error {
	msg, err := db.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return fmt.Errorf("message not found: %d", id)
	}

	text := fmt.Sprintf("[%s] %s: %s", msg.Timestamp, msg.Sender, msg.Body)
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Printf("%s\n", text)
		return nil
	}
	fmt.Printf("Copied to clipboard: message #%d\n", id)
	return nil
}

func (m model) tabCount() int {
	return len(m.rep.Sections) + 1
}

func (m model) onArchive() bool {
	return m.tab == len(m.rep.Sections)
}

func (m model) tabTitle(i int) string {
	if i == len(m.rep.Sections) {
		return archiveTitle
	}
	return m.rep.Sections[i].Title
}

// switchTab moves to tab i, focusing the search input on the archive tab.
func (m *model) switchTab(i int) {
	n := m.tabCount()
	m.tab = ((i % n) + n) % n
	if m.onArchive() {
		m.filterInput.Focus()
	} else {
		m.filterInput.Blur()
		m.refreshSection()
	}
}

// refreshSection re-renders the current report section into the viewport.
func (m *model) refreshSection() {
	if m.onArchive() {
		return
	}
	m.section.SetContent(report.RenderSection(&m.rep.Sections[m.tab]))
	m.section.GotoTop()
}

func (m *model) toggleMode() {
	if m.mode == report.Relative {
		m.mode = report.Absolute
	} else {
		m.mode = report.Relative
	}
	m.rep = report.Build(m.result, m.mode)
	m.refreshSection()
}

// Init has nothing to load; the report is built before the program starts.
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.section = newViewport(m.width-2, m.panelHeight())
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewID = 0
		m.refreshSection()
		if m.onArchive() {
			cmds = append(cmds, m.loadCurrentPreview())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.NextTab):
			m.switchTab(m.tab + 1)
			return m, m.loadCurrentPreview()
		case key.Matches(msg, keys.PrevTab):
			m.switchTab(m.tab - 1)
			return m, m.loadCurrentPreview()
		}
		if m.onArchive() {
			return m.updateArchive(msg)
		}
		return m.updateSection(msg)

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}
		if !m.onArchive() {
			var vpCmd tea.Cmd
			m.section, vpCmd = m.section.Update(msg)
			return m, vpCmd
		}
		return m.updateArchiveMouse(msg)

	case debounceTickMsg:
		// Only fire search if query hasn't changed since debounce was scheduled
		if msg.query == m.query {
			cmds = append(cmds, m.doSearch(msg.query))
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.cursor = 0
		m.listOffset = 0
		m.previewID = 0
		if msg.err != nil {
			m.results = nil
			m.preview.SetContent("Error: " + msg.err.Error())
			return m, nil
		}
		m.results = msg.results
		if len(m.results) > 0 {
			cmds = append(cmds, m.loadCurrentPreview())
		} else {
			m.preview.SetContent("")
		}
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		if msg.id == m.previewID {
			return m, nil
		}
		if len(m.results) > 0 && m.cursor < len(m.results) && m.results[m.cursor].ID != msg.id {
			return m, nil // stale preview
		}
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
		} else {
			m.preview.SetContent(msg.content)
			if msg.hitLine > 0 {
				m.preview.SetYOffset(msg.hitLine)
			} else {
				m.preview.GotoTop()
			}
		}
		m.previewID = msg.id
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateSection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		m.switchTab(m.tab - 1)
		return m, m.loadCurrentPreview()
	case key.Matches(msg, keys.Right):
		m.switchTab(m.tab + 1)
		return m, m.loadCurrentPreview()
	case key.Matches(msg, keys.Jump):
		m.switchTab(int(msg.String()[0] - '1'))
		return m, m.loadCurrentPreview()
	case key.Matches(msg, keys.Relative):
		m.toggleMode()
		return m, nil
	case key.Matches(msg, keys.Up):
		m.section.LineUp(1)
	case key.Matches(msg, keys.Down):
		m.section.LineDown(1)
	case key.Matches(msg, keys.PreviewUp):
		m.section.LineUp(m.panelHeight() / 2)
	case key.Matches(msg, keys.PreviewDn):
		m.section.LineDown(m.panelHeight() / 2)
	case key.Matches(msg, keys.PageUp):
		m.section.LineUp(m.panelHeight())
	case key.Matches(msg, keys.PageDown):
		m.section.LineDown(m.panelHeight())
	}
	return m, nil
}

func (m model) updateArchive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, keys.Enter):
		if len(m.results) > 0 && m.cursor < len(m.results) {
			r := m.results[m.cursor]
			m.selected = &r
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustListScroll(m.panelHeight())
			cmds = append(cmds, m.loadCurrentPreview())
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
			m.adjustListScroll(m.panelHeight())
			cmds = append(cmds, m.loadCurrentPreview())
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(m.panelHeight() / 2)
		return m, nil

	case key.Matches(msg, keys.PreviewDn):
		m.preview.LineDown(m.panelHeight() / 2)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(m.panelHeight())
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(m.panelHeight())
		return m, nil
	}

	// Pass remaining keys to text input
	var tiCmd tea.Cmd
	m.filterInput, tiCmd = m.filterInput.Update(msg)
	cmds = append(cmds, tiCmd)

	if q := m.filterInput.Value(); q != m.query {
		m.query = q
		cmds = append(cmds, m.scheduleDebouncedSearch(q))
	}
	return m, tea.Batch(cmds...)
}

func (m model) updateArchiveMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if len(m.results) == 0 {
		return m, nil
	}

	region, itemIdx := m.hitTest(msg.X, msg.Y)

	switch {
	case region == regionList && msg.Button == tea.MouseButtonWheelUp:
		if m.listOffset > 0 {
			m.listOffset--
		}

	case region == regionList && msg.Button == tea.MouseButtonWheelDown:
		maxOffset := len(m.results) - m.panelHeight()/linesPerItem
		if maxOffset < 0 {
			maxOffset = 0
		}
		if m.listOffset < maxOffset {
			m.listOffset++
		}

	case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if itemIdx >= 0 && itemIdx < len(m.results) && m.cursor != itemIdx {
			m.cursor = itemIdx
			m.adjustListScroll(m.panelHeight())
			return m, m.loadCurrentPreview()
		}

	case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
		var vpCmd tea.Cmd
		m.preview, vpCmd = m.preview.Update(msg)
		return m, vpCmd
	}
	return m, nil
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	tabs := m.tabBar()
	status := m.statusBar()
	panelH := m.panelHeight()

	if !m.onArchive() {
		m.section.Width = m.width - 2
		m.section.Height = panelH
		body := styleActiveBorder.
			Width(m.width - 2).
			Height(panelH).
			Render(m.section.View())
		return lipgloss.JoinVertical(lipgloss.Left, tabs, body, status)
	}

	listW := m.listWidth()
	previewW := m.previewWidth()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, tabs, m.filterInput.View(), panels, status)
}

// helper methods

func (m model) tabBar() string {
	var parts []string
	for i := 0; i < m.tabCount(); i++ {
		label := fmt.Sprintf("%d %s", i+1, m.tabTitle(i))
		if i == m.tab {
			parts = append(parts, styleTabActive.Render(label))
		} else {
			parts = append(parts, styleTabInactive.Render(label))
		}
	}
	if !m.onArchive() {
		parts = append(parts, styleMode.Render("["+m.mode.String()+"]"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for preview, minus border padding
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract tab bar (1) + input row (1) + status bar (1) + borders (2)
	h := m.height - 5
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates on the archive tab to a panel region
// and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 3 // tab bar (1) + input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		return regionList, m.listOffset + (relY / linesPerItem)
	}
	if x > listBoxRight+1 {
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m model) statusBar() string {
	var parts []string
	if m.onArchive() {
		parts = append(parts, fmt.Sprintf("%d results", len(m.results)))
		parts = append(parts, "up/dn navigate")
		parts = append(parts, "C-u/C-d preview")
		parts = append(parts, "Enter copy message")
	} else {
		parts = append(parts, "left/right or 1-5 tabs")
		parts = append(parts, "r absolute/relative")
		parts = append(parts, "up/dn/pgup/pgdn scroll")
	}
	parts = append(parts, "Tab next tab")
	parts = append(parts, "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) doSearch(query string) tea.Cmd {
	ctx := m.ctx
	db := m.db
	opts := m.searchOpts
	opts.Query = query
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return searchResultMsg{query: query}
		}
		results, err := search.Search(ctx, db, opts)
		return searchResultMsg{query: query, results: results, err: err}
	}
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	if !m.onArchive() || len(m.results) == 0 || m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	if r.ID == m.previewID {
		return nil // already showing this preview
	}
	return loadPreviewCmd(m.ctx, m.db, r.ID, m.query, m.previewWidth())
}
