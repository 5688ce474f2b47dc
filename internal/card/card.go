package card

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Card is one line item of a deck. It is immutable: every field is
// normalized at construction and accessors hand out copies.
type Card struct {
	name      string
	quantity  int
	extension string
	number    string
	tags      []string // normalized, unique, first-seen order
}

// New builds a card. A zero quantity becomes 1. Extension and number are
// trimmed; blank values mean "absent". Tags are trimmed, lowercased and
// de-duplicated, blank tags are dropped.
func New(name string, quantity int, extension, number string, tags ...string) Card {
	if quantity == 0 {
		quantity = 1
	}
	return Card{
		name:      name,
		quantity:  quantity,
		extension: strings.TrimSpace(extension),
		number:    strings.TrimSpace(number),
		tags:      normalizeTags(tags),
	}
}

// ParseQuantity coerces a textual quantity ("3", " 4 ", "2x") to a number.
// Blank or invalid input yields 1.
func ParseQuantity(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "x")
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 1
	}
	return n
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c Card) Name() string      { return c.name }
func (c Card) Quantity() int     { return c.quantity }
func (c Card) Extension() string { return c.extension }
func (c Card) Number() string    { return c.number }

// Tags returns the tags in the order they were first given.
func (c Card) Tags() []string { return slices.Clone(c.tags) }

// SortedTags returns the tags in lexicographic order.
func (c Card) SortedTags() []string {
	tags := slices.Clone(c.tags)
	slices.Sort(tags)
	return tags
}

// HasTag reports whether the card carries tag (compared after normalization).
func (c Card) HasTag(tag string) bool {
	return slices.Contains(c.tags, strings.ToLower(strings.TrimSpace(tag)))
}

// WithQuantity returns a copy of c holding n copies.
func (c Card) WithQuantity(n int) Card {
	return New(c.name, n, c.extension, c.number, c.tags...)
}

// Merge folds other into c: quantities add up, c's extension and number win
// when present, tags are united.
func (c Card) Merge(other Card) Card {
	ext := c.extension
	if ext == "" {
		ext = other.extension
	}
	num := c.number
	if num == "" {
		num = other.number
	}
	return New(c.name, c.quantity+other.quantity, ext, num, append(c.Tags(), other.tags...)...)
}

// Equal reports value equality. Tags compare as sets.
func (c Card) Equal(other Card) bool {
	return c.Compare(other) == 0
}

// NotEqual is !Equal.
func (c Card) NotEqual(other Card) bool { return !c.Equal(other) }

// Compare orders cards by name, quantity, extension, number, then tags.
// An absent extension or number sorts before any present one; tags compare
// as sorted sequences with the shorter sequence first on a shared prefix.
func (c Card) Compare(other Card) int {
	if r := strings.Compare(c.name, other.name); r != 0 {
		return r
	}
	if r := cmp.Compare(c.quantity, other.quantity); r != 0 {
		return r
	}
	if r := strings.Compare(c.extension, other.extension); r != 0 {
		return r
	}
	if r := strings.Compare(c.number, other.number); r != 0 {
		return r
	}
	return slices.Compare(c.SortedTags(), other.SortedTags())
}

func (c Card) Less(other Card) bool           { return c.Compare(other) < 0 }
func (c Card) LessOrEqual(other Card) bool    { return c.Compare(other) <= 0 }
func (c Card) Greater(other Card) bool        { return c.Compare(other) > 0 }
func (c Card) GreaterOrEqual(other Card) bool { return c.Compare(other) >= 0 }

// String renders "<qty> <name> (<ext>) <num> [tag1, tag2]", leaving out
// absent parts.
func (c Card) String() string {
	var parts []string
	if c.quantity != 0 {
		parts = append(parts, strconv.Itoa(c.quantity))
	}
	if c.name != "" {
		parts = append(parts, c.name)
	}
	if c.extension != "" {
		parts = append(parts, fmt.Sprintf("(%s)", c.extension))
	}
	if c.number != "" {
		parts = append(parts, c.number)
	}
	if len(c.tags) > 0 {
		parts = append(parts, "["+strings.Join(c.SortedTags(), ", ")+"]")
	}
	return strings.Join(parts, " ")
}

// Sort orders cards in place using Compare.
func Sort(cards []Card) {
	slices.SortStableFunc(cards, Card.Compare)
}

// Total sums the quantities of cards.
func Total(cards []Card) int {
	n := 0
	for _, c := range cards {
		n += c.quantity
	}
	return n
}

// jsonCard is the wire shape of a Card.
type jsonCard struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Extension string   `json:"extension,omitempty"`
	Number    string   `json:"number,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonCard{
		Name:      c.name,
		Quantity:  c.quantity,
		Extension: c.extension,
		Number:    c.number,
		Tags:      c.SortedTags(),
	})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var jc jsonCard
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}
	*c = New(jc.Name, jc.Quantity, jc.Extension, jc.Number, jc.Tags...)
	return nil
}
