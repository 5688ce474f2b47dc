// Package decklist reads and writes plain-text decklists in the MTGO/MTGA
// dialects, with "//" and "#" comments acting as section headers.
package decklist

import (
	"context"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/peterkuimelis/mtgdeck/internal/card"
)

// Source is the text decklist source. It claims any input containing at
// least one recognizable card entry, so it belongs last in a registry.
type Source struct{}

func (Source) Name() string { return "decklist" }

// CanHandle runs the same pipeline as ParseDeck.
func (Source) CanHandle(src string) bool {
	return len(entries(src)) > 0
}

// ParseDeck returns the cards of src, or nil when src holds no entries.
func (Source) ParseDeck(_ context.Context, src string) ([]card.Card, error) {
	return Parse(src), nil
}

// Parse turns a decklist into cards. Unrecognized lines are skipped. A
// comment line tags every entry after it until the next comment.
func Parse(text string) []card.Card {
	var cards []card.Card
	for _, l := range entries(text) {
		cards = append(cards, card.New(l.Name, l.Quantity, l.Extension, l.Number, l.Tags...))
	}
	return cards
}

// entries parses every line and folds comments into the entry tags.
func entries(text string) []Line {
	var (
		out     []Line
		section string
	)
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		l, ok := ParseLine(raw)
		if !ok {
			continue
		}
		if l.IsComment() {
			section = l.Comment
			continue
		}
		if section != "" {
			l.Tags = append(l.Tags, strings.ToLower(section))
		}
		out = append(out, l)
	}
	return out
}

// Format renders cards as a decklist that Parse reads back:
//
//	<qty> <name> (<EXT>) <num> #<Tag> #<Tag>
//
// The set clause is written only when both extension and number are known.
func Format(cards []card.Card) string {
	lines := make([]string, 0, len(cards))
	for _, c := range cards {
		lines = append(lines, FormatCard(c))
	}
	return strings.Join(lines, "\n")
}

// FormatCard renders a single decklist line.
func FormatCard(c card.Card) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(c.Quantity()))
	sb.WriteByte(' ')
	sb.WriteString(c.Name())
	if c.Extension() != "" && c.Number() != "" {
		sb.WriteString(" (")
		sb.WriteString(strings.ToUpper(c.Extension()))
		sb.WriteString(") ")
		sb.WriteString(c.Number())
	}
	for _, t := range c.Tags() {
		sb.WriteString(" #")
		sb.WriteString(titleCase(t))
	}
	return sb.String()
}

// titleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
