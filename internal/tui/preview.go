package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/wastats/internal/report"
	"github.com/Zuo-Peng/wastats/internal/store"
)

// previewContext is how many neighbouring messages the archive preview shows.
const previewContext = 15

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	id      int64
	content string
	hitLine int
	err     error
}

// loadPreviewCmd renders the conversation around message id asynchronously.
func loadPreviewCmd(ctx context.Context, db *store.DB, id int64, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := report.RenderConversation(ctx, db, id, report.ConversationOptions{
			Context: previewContext,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			id:      id,
			content: content,
			hitLine: hitLine,
			err:     err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	return viewport.New(width, height)
}
