// Package chunker splits content bodies into sentence-bounded chunks.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkSize is the default maximum number of characters per chunk
const DefaultChunkSize = 1000

// Chunker packs whole sentences into chunks of at most chunkSize characters.
// A single sentence longer than chunkSize is cut at the limit.
type Chunker struct {
	chunkSize int
}

// Option configures the chunker
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk size in characters
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

func New(opts ...Option) *Chunker {
	c := &Chunker{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split returns the chunks of text in order. Blank text yields no chunks.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range splitSentences(text) {
		for _, piece := range c.cut(sentence) {
			n := utf8.RuneCountInString(piece)
			sep := 0
			if currentLen > 0 {
				sep = 1
			}
			if currentLen+sep+n > c.chunkSize {
				flush()
				sep = 0
			}
			if sep == 1 {
				current.WriteByte(' ')
			}
			current.WriteString(piece)
			currentLen += sep + n
		}
	}
	flush()

	return chunks
}

// cut splits s into pieces no longer than chunkSize runes
func (c *Chunker) cut(s string) []string {
	rs := []rune(s)
	if len(rs) <= c.chunkSize {
		return []string{s}
	}

	var pieces []string
	for len(rs) > 0 {
		end := c.chunkSize
		if end > len(rs) {
			end = len(rs)
		}
		if p := strings.TrimSpace(string(rs[:end])); p != "" {
			pieces = append(pieces, p)
		}
		rs = rs[end:]
	}
	return pieces
}

// splitSentences breaks text after '.', '!' or '?' followed by whitespace,
// and at blank lines. Whitespace inside a sentence is collapsed.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	emit := func() {
		if s := strings.Join(strings.Fields(b.String()), " "); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		b.WriteRune(r)

		switch {
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(rs) || unicode.IsSpace(rs[i+1]) {
				emit()
			}
		case r == '\n' && i+1 < len(rs) && rs[i+1] == '\n':
			emit()
		}
	}
	emit()

	return sentences
}
