package classify

import (
	"strings"

	"github.com/rivo/uniseg"
)

// IsEmoji reports whether a grapheme cluster is an emoji.
func IsEmoji(cluster string) bool {
	if cluster == "" {
		return false
	}
	// text-default symbols rendered as emoji by a variation selector
	if strings.ContainsRune(cluster, '\uFE0F') {
		return true
	}
	r := []rune(cluster)[0]
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, emoticons, flags
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2300 && r <= 0x23FF, r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return false
}

// Emojis returns the emoji grapheme clusters in body, in order.
func Emojis(body string) []string {
	var out []string
	state := -1
	rest := body
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if IsEmoji(cluster) {
			out = append(out, cluster)
		}
	}
	return out
}

// Emoji matches bodies containing at least one emoji.
var Emoji = Func(func(body string) bool {
	return len(Emojis(body)) > 0
})
