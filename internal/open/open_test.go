package open

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/store"
)

func TestEditorArgs(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{"nvim", []string{"+12", "chat.txt"}},
		{"/usr/bin/vim", []string{"+12", "chat.txt"}},
		{"code", []string{"--goto", "chat.txt:12"}},
		{"less", []string{"+12", "chat.txt"}},
		{"gedit", []string{"chat.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			assert.Equal(t, tt.want, editorArgs(tt.editor, "chat.txt", 12))
		})
	}
}

func TestSplitKey(t *testing.T) {
	p, m := splitKey("/tmp/export.zip!chat.txt")
	assert.Equal(t, "/tmp/export.zip", p)
	assert.Equal(t, "chat.txt", m)

	p, m = splitKey("/tmp/chat.txt")
	assert.Equal(t, "/tmp/chat.txt", p)
	assert.Empty(t, m)
}

func TestOpenMessageErrors(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	err = OpenMessage(ctx, db, 1)
	assert.ErrorContains(t, err, "message not found")

	msgs := []parse.Message{{Timestamp: "2023-03-14 09:05:00", Sender: "Alice", Body: "hi", Line: 1}}
	src := store.SourceInfo{Key: "/tmp/export.zip!chat.txt", Mtime: 1, Size: 2}
	require.NoError(t, db.Replace(ctx, msgs, src))

	err = OpenMessage(ctx, db, 1)
	assert.ErrorContains(t, err, "inside archive")
}
