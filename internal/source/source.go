package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the transcript path does not exist or
	// holds no transcript.
	ErrNotFound = errors.New("transcript not found")

	// ErrTooLarge is returned instead of importing a truncated transcript.
	ErrTooLarge = errors.New("transcript too large")
)

// maxTranscriptSize caps how much transcript text is read into memory.
var maxTranscriptSize int64 = 512 << 20

type Info struct {
	Path   string // resolved file that holds the transcript
	Member string // zip member name, empty for plain files
	Mtime  int64
	Size   int64
}

// Key identifies the transcript for incremental re-import checks.
func (i Info) Key() string {
	if i.Member == "" {
		return i.Path
	}
	return i.Path + "!" + i.Member
}

// Transcript is a fully read transcript with invisible marks removed.
type Transcript struct {
	Info Info
	Data []byte
}

func (t *Transcript) Reader() io.Reader {
	return bytes.NewReader(t.Data)
}

// Stat resolves path without reading the transcript body.
func Stat(path string) (Info, error) {
	file, err := resolve(path)
	if err != nil {
		return Info{}, err
	}
	st, err := os.Stat(file)
	if err != nil {
		return Info{}, notFound(path, err)
	}
	info := Info{Path: file, Mtime: st.ModTime().Unix(), Size: st.Size()}
	if isZip(file) {
		member, err := zipMember(file)
		if err != nil {
			return Info{}, err
		}
		info.Member = member
	}
	return info, nil
}

// Read resolves path and reads the whole transcript into memory. path may be
// a text file, a .zip chat export, or a directory holding a .txt export.
func Read(path string) (*Transcript, error) {
	info, err := Stat(path)
	if err != nil {
		return nil, err
	}

	var data []byte
	if info.Member != "" {
		data, err = readZipMember(info.Path, info.Member)
	} else {
		data, err = readFile(info.Path)
	}
	if errors.Is(err, ErrTooLarge) {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", info.Key(), err, maxTranscriptSize)
	}
	if err != nil {
		return nil, notFound(path, err)
	}

	return &Transcript{Info: info, Data: StripInvisible(data)}, nil
}

func resolve(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", notFound(path, err)
	}
	if !st.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", notFound(path, err)
	}
	for _, e := range entries {
		if !e.IsDir() && isText(e.Name()) {
			return filepath.Join(path, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no .txt file in %s", ErrNotFound, path)
}

func zipMember(zipPath string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open zip %s: %w", zipPath, err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		name := filepath.Clean(f.Name)
		if strings.Contains(name, "..") || f.FileInfo().IsDir() {
			continue
		}
		if isText(name) {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no .txt member in %s", ErrNotFound, zipPath)
	}
	sort.Strings(names)
	return names[0], nil
}

func readZipMember(zipPath, member string) ([]byte, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readLimited(rc)
	}
	return nil, fs.ErrNotExist
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

// readLimited reads at most maxTranscriptSize bytes and fails rather than
// truncating when there is more.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxTranscriptSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxTranscriptSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// isLeadingMark reports the direction marks, zero-width space and byte order
// marks that exports put in front of timestamps.
func isLeadingMark(r rune) bool {
	switch r {
	case '\u200e', '\u200f', '\u200b', '\ufeff':
		return true
	}
	return false
}

// StripInvisible removes invisible marks from the start of every line. Marks
// inside message bodies are kept, so joiners in emoji sequences survive.
func StripInvisible(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line = b[:i+1]
		}
		b = b[len(line):]
		out = append(out, bytes.TrimLeftFunc(line, isLeadingMark)...)
	}
	return out
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("read %s: %w", path, err)
}

func isZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

func isText(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}
