package open

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wastats/internal/store"
)

// OpenMessage opens the imported transcript in $EDITOR at the line where
// message id starts. Zip exports cannot be opened at a line, so the
// transcript must be a plain file.
func OpenMessage(ctx context.Context, db *store.DB, id int64) error {
	m, err := db.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}
	if m == nil {
		return fmt.Errorf("message not found: %d", id)
	}

	src, err := db.Source(ctx)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return store.ErrNoData
	}

	filePath, member := splitKey(src.Key)
	if member != "" {
		return fmt.Errorf("%s is inside archive %s; extract it to open at a line", member, filePath)
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum := m.Line
	if lineNum < 1 {
		lineNum = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	return openInEditor(editor, filePath, lineNum)
}

// splitKey undoes source.Info.Key.
func splitKey(key string) (path, member string) {
	path, member, _ = strings.Cut(key, "!")
	return path, member
}

func editorArgs(editor, filePath string, lineNum int) []string {
	name := filepath.Base(editor)
	switch {
	case strings.Contains(name, "vim") || strings.Contains(name, "nano") || strings.Contains(name, "emacs"):
		return []string{fmt.Sprintf("+%d", lineNum), filePath}
	case strings.Contains(name, "code"):
		return []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(name, "less"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	default:
		return []string{filePath}
	}
}

func openInEditor(editor, filePath string, lineNum int) error {
	cmd := exec.Command(editor, editorArgs(editor, filePath, lineNum)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
