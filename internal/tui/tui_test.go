package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wastats/internal/metrics"
	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/report"
	"github.com/Zuo-Peng/wastats/internal/search"
)

func testModel(t *testing.T) model {
	t.Helper()
	base := time.Date(2023, 3, 13, 12, 0, 0, 0, time.UTC)
	msgs := []parse.Message{
		{Time: base, Sender: "Alice", Body: "hoi"},
		{Time: base.Add(time.Minute), Sender: "Bob", Body: "hoi?"},
	}
	res := metrics.NewEngine().Run(metrics.Prepare(msgs, metrics.Filter{}))
	m := initialModel(context.Background(), nil, res, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(model)
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabNavigation(t *testing.T) {
	m := testModel(t)
	require.Equal(t, 5, m.tabCount())
	assert.Equal(t, 0, m.tab)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.tab)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 4, m.tab, "wraps to the archive tab")
	assert.True(t, m.onArchive())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.tab)

	m = send(t, m, runes("3"))
	assert.Equal(t, 2, m.tab)
	assert.Contains(t, m.View(), "Behaviour")
}

func TestArchiveTypingUpdatesQuery(t *testing.T) {
	m := testModel(t)
	m = send(t, m, runes("5"))
	require.True(t, m.onArchive())

	m = send(t, m, runes("h"))
	assert.Equal(t, "h", m.query, "letters go to the search input on the archive tab")
	assert.Equal(t, 4, m.tab)
}

func TestToggleRelative(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, report.Absolute, m.mode)

	m = send(t, m, runes("r"))
	assert.Equal(t, report.Relative, m.mode)
	assert.Equal(t, report.Relative, m.rep.Mode)
	assert.Contains(t, m.tabBar(), "relative")
}

func TestStaleSearchResultsIgnored(t *testing.T) {
	m := testModel(t)
	m = send(t, m, runes("5"))
	m.query = "pizza"

	m = send(t, m, searchResultMsg{query: "old", results: []search.Result{{ID: 1}}})
	assert.Empty(t, m.results)
}

func TestAdjustListScroll(t *testing.T) {
	m := testModel(t)
	m.results = make([]search.Result, 20)
	m.cursor = 10
	m.adjustListScroll(8)
	assert.Equal(t, 7, m.listOffset)

	m.cursor = 2
	m.adjustListScroll(8)
	assert.Equal(t, 2, m.listOffset)
}

func TestFormatResultLine(t *testing.T) {
	r := search.Result{ID: 3, Timestamp: "2023-03-14 09:05:00", Sender: "Alice", Snippet: "we >>>pizza<<< now"}
	lines := formatResultLine(r, 40, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "03-14 09:05")
	assert.Contains(t, lines[0], "Alice")
	assert.Contains(t, lines[1], "we pizza now")
}
