package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatterns(t *testing.T) {
	tests := []struct {
		name string
		c    Classifier
		body string
		want bool
	}{
		{"question", Question, "zin in pizza?", true},
		{"no question", Question, "zin in pizza", false},
		{"shout", Shouting, "WAAROM DAN!!", true},
		{"shout short", Shouting, "OK", false},
		{"shout mixed", Shouting, "WAAROM dan", false},
		{"link http", Link, "kijk https://example.com", true},
		{"link www", Link, "WWW.example.com", true},
		{"no link", Link, "wwwhat", false},
		{"negation", Negation, "Nee joh", true},
		{"negation inside word", Negation, "neem een koekje", false},
		{"emoji", Emoji, "top 👍", true},
		{"no emoji", Emoji, "top :)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Match(tt.body))
		})
	}
}

func TestNewPattern(t *testing.T) {
	p, err := NewPattern(`(?i)\bpizza\b`)
	require.NoError(t, err)
	assert.True(t, p.Match("Pizza vanavond"))

	_, err = NewPattern(`(`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustPattern(`(`) })
}

func TestDefaultSwears(t *testing.T) {
	l := DefaultSwears()

	assert.True(t, l.IsMember("GVD"))
	assert.False(t, l.IsMember("hallo"))

	assert.True(t, l.Match("wat een Shitweer"))
	assert.True(t, l.Match("klotekut"))
	assert.False(t, l.Match("lekker weertje"))
	// prefix matches only at a word boundary
	assert.False(t, l.Match("schillen"))

	assert.Equal(t, []string{"shit", "gvd"}, l.FindAll("SHIT zeg, gvd"))
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\ndarn\n\nheck\n"), 0o644))

	l, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"darn", "heck"}, l.Words())
	assert.True(t, l.Match("oh heck"))

	_, err = NewLexicon(nil, nil)
	assert.Error(t, err)
}

func TestEmojis(t *testing.T) {
	assert.Equal(t, []string{"😂", "👍🏽", "❤️"}, Emojis("haha 😂 ok 👍🏽 love ❤️"))
	assert.Empty(t, Emojis("plain text: 100%"))
	assert.True(t, Emoji.Match("🎉"))
	assert.False(t, Emoji.Match("party"))
}
