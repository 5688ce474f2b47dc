package decklist

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Line is one recognized line of a decklist: either a card entry or a
// comment (Comment != "").
type Line struct {
	Quantity  int
	Name      string
	Extension string
	Number    string
	Tags      []string
	Comment   string
}

// MaxQuantity is the largest entry quantity; larger counts are clamped so
// that deck totals cannot overflow.
const MaxQuantity = math.MaxInt32

// IsComment reports whether the line is a section comment.
func (l Line) IsComment() bool { return l.Comment != "" }

// ParseLine recognizes a single line. Forms are tried in order:
//
//	comment := ("//!" | "//" | "#") ws? words
//	entryA  := quantity ws? name ws? "(" code ")" ws? code (ws? tag)*
//	entryB  := quantity ws? name (ws? tag)*
//
// The whole trimmed line must be consumed; ok is false otherwise.
func ParseLine(line string) (Line, bool) {
	line = strings.TrimSpace(line)
	for _, rule := range []func(*scanner) (Line, bool){commentLine, setLine, bareLine} {
		sc := &scanner{src: line}
		if l, ok := rule(sc); ok && sc.done() {
			return l, true
		}
	}
	return Line{}, false
}

func commentLine(sc *scanner) (Line, bool) {
	if !sc.literal("//!") && !sc.literal("//") && !sc.literal("#") {
		return Line{}, false
	}
	sc.optSpace()
	text, ok := sc.words()
	if !ok {
		return Line{}, false
	}
	return Line{Comment: text}, true
}

func setLine(sc *scanner) (Line, bool) {
	qty, ok := sc.quantity()
	if !ok {
		return Line{}, false
	}
	sc.optSpace()
	name, ok := sc.words()
	if !ok {
		return Line{}, false
	}
	sc.optSpace()
	if !sc.literal("(") {
		return Line{}, false
	}
	ext, ok := sc.code()
	if !ok || !sc.literal(")") {
		return Line{}, false
	}
	sc.optSpace()
	num, ok := sc.code()
	if !ok {
		return Line{}, false
	}
	return Line{Quantity: qty, Name: name, Extension: ext, Number: num, Tags: sc.tags()}, true
}

func bareLine(sc *scanner) (Line, bool) {
	qty, ok := sc.quantity()
	if !ok {
		return Line{}, false
	}
	sc.optSpace()
	name, ok := sc.words()
	if !ok {
		return Line{}, false
	}
	return Line{Quantity: qty, Name: name, Tags: sc.tags()}, true
}

// scanner is a small PEG-style cursor: every rule either advances past what
// it matched or leaves pos untouched.
type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos == len(s.src) }

func (s *scanner) peek() (rune, int) {
	if s.done() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(s.src[s.pos:])
}

func (s *scanner) literal(lit string) bool {
	if strings.HasPrefix(s.src[s.pos:], lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

// span consumes the longest non-empty run of runes accepted by fn.
func (s *scanner) span(fn func(rune) bool) (string, bool) {
	start := s.pos
	for {
		r, size := s.peek()
		if size == 0 || !fn(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos], s.pos > start
}

func (s *scanner) optSpace() {
	s.span(unicode.IsSpace)
}

func (s *scanner) quantity() (int, bool) {
	start := s.pos
	digits, ok := s.span(isDigit)
	if !ok {
		return 0, false
	}
	s.literal("x")
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) || n > MaxQuantity {
		return MaxQuantity, true
	}
	if err != nil {
		s.pos = start
		return 0, false
	}
	return n, true
}

func (s *scanner) code() (string, bool) {
	return s.span(isCodeRune)
}

// words matches one or more words separated by whitespace and returns them
// joined by single spaces. Trailing whitespace not followed by a word is left
// unconsumed.
func (s *scanner) words() (string, bool) {
	first, ok := s.span(isWordRune)
	if !ok {
		return "", false
	}
	parts := []string{first}
	for {
		save := s.pos
		if _, ok := s.span(unicode.IsSpace); !ok {
			break
		}
		w, ok := s.span(isWordRune)
		if !ok {
			s.pos = save
			break
		}
		parts = append(parts, w)
	}
	return strings.Join(parts, " "), true
}

func (s *scanner) tag() (string, bool) {
	save := s.pos
	if !s.literal("#") {
		return "", false
	}
	s.literal("!")
	t, ok := s.words()
	if !ok {
		s.pos = save
		return "", false
	}
	return t, true
}

func (s *scanner) tags() []string {
	var tags []string
	for {
		save := s.pos
		s.optSpace()
		t, ok := s.tag()
		if !ok {
			s.pos = save
			return tags
		}
		tags = append(tags, t)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isCodeRune(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isWordRune accepts ASCII word characters, the Latin-1 Supplement letters
// through Latin Extended-B, Latin Extended Additional, and , / ' " _ -.
func isWordRune(r rune) bool {
	switch {
	case isCodeRune(r):
		return true
	case r >= 0x00C0 && r <= 0x024F:
		return true
	case r >= 0x1E00 && r <= 0x1EFF:
		return true
	}
	return strings.ContainsRune(`,/'"_-`, r)
}
