package caption

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Unknown is the fallback value for a field no strategy could extract.
	Unknown = "Unknown"

	minFieldLen = 2
	maxFieldLen = 80
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// noiseWords are filler tokens stripped from the edges of extracted fields.
// They carry no identity on their own ("daily waifu: ...") but must survive
// when they are the whole value.
var noiseWords = map[string]bool{
	"waifu":     true,
	"husbando":  true,
	"character": true,
	"from":      true,
	"daily":     true,
}

// sanitize reduces an extracted fragment to a clean display value. It strips
// URLs and symbol junk, collapses whitespace, and trims edge noise words.
// Returns "" when nothing presentable remains.
func (p *Parser) sanitize(raw string) string {
	s := urlPattern.ReplaceAllString(raw, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if strings.ContainsRune("-.!?,:;'&/", r) {
			return r
		}
		return -1
	}, s)
	s = collapseWhitespace(s)
	s = trimNoiseWords(s)
	s = strings.Trim(s, "-.,:;|& ")
	if s == "" {
		return ""
	}
	if p.titleCase {
		// Casers are stateful, so build one per call rather than sharing.
		s = cases.Title(language.Und).String(s)
	}
	return s
}

// acceptable reports whether a sanitized field is usable: more than one rune
// and short enough to be a name rather than a paragraph.
func acceptable(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= minFieldLen && n <= maxFieldLen
}

// trimNoiseWords removes noise tokens from both ends, but never all the way
// down to an empty value.
func trimNoiseWords(s string) string {
	fields := strings.Fields(s)
	lo, hi := 0, len(fields)
	for lo < hi && noiseWords[strings.ToLower(fields[lo])] {
		lo++
	}
	for hi > lo && noiseWords[strings.ToLower(fields[hi-1])] {
		hi--
	}
	if lo >= hi {
		return s
	}
	return strings.Join(fields[lo:hi], " ")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// truncateRunes cuts s to at most n runes, trimming a trailing partial word
// when the cut lands mid-token.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " -.,:;")
}
