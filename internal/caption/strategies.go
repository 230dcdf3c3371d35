package caption

import (
	"regexp"
	"strings"
)

// A strategy attempts one extraction scheme against a whitespace-collapsed
// caption. Strategies run in order; the first to return ok wins.
type strategy func(p *Parser, text string) (subject, group string, ok bool)

// Labeled fields run before the delimiter split: a caption like
// "Name: Saber Series: Fate" contains the generic ": " delimiter, which would
// otherwise split it as subject "Name".
var strategies = []strategy{
	extractLabeledFields,
	splitOnDelimiter,
	extractParenthetical,
	extractHashtags,
	wholeTextFallback,
}

// delimiters are tried in order against the raw caption. The first delimiter
// present splits the caption into subject (left) and group (right).
var delimiters = []string{
	" - ",
	" | ",
	": ",
	" : ",
	"：",
	" from ",
}

func splitOnDelimiter(p *Parser, text string) (string, string, bool) {
	for _, delim := range delimiters {
		before, after, found := strings.Cut(text, delim)
		if !found {
			continue
		}
		subject := p.sanitize(before)
		group := p.sanitize(after)
		if acceptable(subject) && acceptable(group) {
			return subject, group, true
		}
	}
	return "", "", false
}

var parentheticalPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)`)

// extractParenthetical handles "Subject (Group)" captions. Anything after the
// closing parenthesis is discarded.
func extractParenthetical(p *Parser, text string) (string, string, bool) {
	m := parentheticalPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	subject := p.sanitize(m[1])
	group := p.sanitize(m[2])
	if acceptable(subject) && acceptable(group) {
		return subject, group, true
	}
	return "", "", false
}

var (
	subjectLabels = regexp.MustCompile(`(?i)\b(?:character|char|name)\s*[:：]`)
	groupLabels   = regexp.MustCompile(`(?i)\b(?:anime|series|show|source)\s*[:：]`)
	anyLabel      = regexp.MustCompile(`(?i)\b(?:character|char|name|anime|series|show|source)\s*[:：]`)
)

// extractLabeledFields handles captions that tag each field explicitly, like
// "Name: Saber Series: Fate/stay night". Both labels must be present.
func extractLabeledFields(p *Parser, text string) (string, string, bool) {
	subject := p.sanitize(labeledValue(subjectLabels, text))
	group := p.sanitize(labeledValue(groupLabels, text))
	if acceptable(subject) && acceptable(group) {
		return subject, group, true
	}
	return "", "", false
}

// labeledValue returns the text between the first occurrence of label and the
// next label of any kind (or end of caption).
func labeledValue(label *regexp.Regexp, text string) string {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if next := anyLabel.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return rest
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// extractHashtags maps the first hashtag to the subject and the second to the
// group. A lone hashtag is not enough structure; the caption falls through to
// the whole-text fallback instead.
func extractHashtags(p *Parser, text string) (string, string, bool) {
	tags := hashtagPattern.FindAllStringSubmatch(text, 2)
	if len(tags) < 2 {
		return "", "", false
	}
	subject := p.sanitize(splitCamelCase(tags[0][1]))
	group := p.sanitize(splitCamelCase(tags[1][1]))
	if acceptable(subject) && acceptable(group) {
		return subject, group, true
	}
	return "", "", false
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// splitCamelCase turns "NicoRobin" into "Nico Robin" and leaves flat tags and
// underscore-separated tags readable.
func splitCamelCase(tag string) string {
	tag = strings.ReplaceAll(tag, "_", " ")
	return camelBoundary.ReplaceAllString(tag, "$1 $2")
}

// wholeTextMax bounds the subject taken from an unstructured caption.
const wholeTextMax = 50

// wholeTextFallback treats the entire caption as the subject when nothing
// structured could be found.
func wholeTextFallback(p *Parser, text string) (string, string, bool) {
	subject := p.sanitize(text)
	subject = truncateRunes(subject, wholeTextMax)
	if !acceptable(subject) {
		return "", "", false
	}
	return subject, Unknown, true
}
