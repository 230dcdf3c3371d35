package caption

// Parser extracts subject and group fields from captions. Parse is pure and
// concurrency-safe, so a single Parser can be shared.
type Parser struct {
	titleCase bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithTitleCase normalizes extracted fields to title case, so "nico robin"
// and "NICO ROBIN" index identically.
func WithTitleCase() Option {
	return func(p *Parser) {
		p.titleCase = true
	}
}

// NewParser constructs a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts (subject, group) from a caption. It always succeeds: fields
// that cannot be extracted come back as Unknown. Parsing is idempotent, so a
// re-ingested caption yields the same pair.
func (p *Parser) Parse(text string) (subject, group string) {
	collapsed := collapseWhitespace(text)
	if collapsed == "" {
		return Unknown, Unknown
	}
	for _, s := range strategies {
		if subject, group, ok := s(p, collapsed); ok {
			return subject, group
		}
	}
	return Unknown, Unknown
}
