package source

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chat = "3/14/23, 09:05 - Alice: hi\n"

func TestReadPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("\u200e"+chat), 0o644))

	tr, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, chat, string(tr.Data))
	assert.Equal(t, path, tr.Info.Path)
	assert.Empty(t, tr.Info.Member)
	assert.Equal(t, path, tr.Info.Key())
}

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "WhatsApp Chat.txt"), []byte(chat), 0o644))

	tr, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "WhatsApp Chat.txt"), tr.Info.Path)
	assert.Equal(t, chat, string(tr.Data))
}

func TestReadZipExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("IMG-20230314-WA0001.jpg")
	require.NoError(t, err)
	_, err = w.Write([]byte{0xff, 0xd8})
	require.NoError(t, err)
	w, err = zw.Create("WhatsApp Chat with Friends.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("\ufeff" + chat))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	tr, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp Chat with Friends.txt", tr.Info.Member)
	assert.Equal(t, chat, string(tr.Data))
	assert.Equal(t, path+"!WhatsApp Chat with Friends.txt", tr.Info.Key())
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Read(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStripInvisibleKeepsBodyJoiners(t *testing.T) {
	family := "\U0001F468\u200d\U0001F469\u200d\U0001F467"
	in := "\ufeff\u200e3/14/23, 09:05 - Alice: " + family + "\n\u200fcontinued\nmid\u200bword\n"

	got := string(StripInvisible([]byte(in)))
	assert.Equal(t, "3/14/23, 09:05 - Alice: "+family+"\ncontinued\nmid\u200bword\n", got)
}

func TestReadRejectsOversizedTranscript(t *testing.T) {
	old := maxTranscriptSize
	maxTranscriptSize = int64(len(chat))
	t.Cleanup(func() { maxTranscriptSize = old })

	dir := t.TempDir()
	fits := filepath.Join(dir, "fits.txt")
	require.NoError(t, os.WriteFile(fits, []byte(chat), 0o644))
	_, err := Read(fits)
	require.NoError(t, err)

	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte(chat+chat), 0o644))
	_, err = Read(big)
	require.ErrorIs(t, err, ErrTooLarge)

	path := filepath.Join(dir, "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("WhatsApp Chat.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte(chat + chat))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Read(path)
	require.ErrorIs(t, err, ErrTooLarge)
}
