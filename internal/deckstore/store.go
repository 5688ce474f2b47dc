// Package deckstore keeps named decks in memory and moves them to and from
// files.
package deckstore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/log"
)

var (
	ErrDeckNotFound = errors.New("deck does not exist")
	ErrDeckExists   = errors.New("deck already exists")
	ErrCardNotFound = errors.New("card not found in deck")
)

// Summary describes one deck slot.
type Summary struct {
	Name       string `json:"name"`
	CardCount  int    `json:"cardCount"`
	TotalCards int    `json:"totalCards"`
}

// Store is a concurrency-safe set of named deck slots. Slots are listed in
// the order they were first created.
type Store struct {
	mu     sync.RWMutex
	decks  map[string][]card.Card
	order  []string
	events log.EventLogger
}

// New returns an empty store. events may be nil.
func New(events log.EventLogger) *Store {
	if events == nil {
		events = log.NewMemoryLogger()
	}
	return &Store{decks: map[string][]card.Card{}, events: events}
}

// Events returns the store's event log.
func (s *Store) Events() log.EventLogger { return s.events }

// Create adds an empty slot.
func (s *Store) Create(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrDeckExists)
	}
	s.set(name, []card.Card{})
	s.events.Log(log.NewDeckCreatedEvent(name))
	return nil
}

// List summarizes every slot.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, summarize(name, s.decks[name]))
	}
	return out
}

// Get returns a copy of a deck's cards.
func (s *Store) Get(name string) ([]card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards, ok := s.decks[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrDeckNotFound)
	}
	return slices.Clone(cards), nil
}

// Summary describes a single slot.
func (s *Store) Summary(name string) (Summary, error) {
	cards, err := s.Get(name)
	if err != nil {
		return Summary{}, err
	}
	return summarize(name, cards), nil
}

// Put replaces (or creates) a slot with cards.
func (s *Store) Put(name string, cards []card.Card) {
	s.put(name, cards)
	s.events.Log(log.NewDeckReplacedEvent(name, len(cards)))
}

// put is Put without the event; callers log their own.
func (s *Store) put(name string, cards []card.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(name, slices.Clone(cards))
}

// Merge folds cards into a slot, creating it when missing.
func (s *Store) Merge(name string, cards []card.Card) []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := MergeCards(s.decks[name], cards)
	s.set(name, merged)
	s.events.Log(log.NewCardsAddedEvent(name, len(cards)))
	return slices.Clone(merged)
}

// AddCard adds qty copies of a card by name. An existing entry with the same
// name (compared case-insensitively after Unicode normalization) has its
// quantity raised; otherwise a new entry is appended. It returns the deck's
// new total.
func (s *Store) AddCard(deck, name string, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[deck]
	if !ok {
		return 0, fmt.Errorf("%q: %w", deck, ErrDeckNotFound)
	}
	if i := indexOf(cards, name); i >= 0 {
		cards[i] = cards[i].WithQuantity(cards[i].Quantity() + qty)
	} else {
		cards = append(cards, card.New(name, qty, "", ""))
	}
	s.decks[deck] = cards
	s.events.Log(log.NewCardsAddedEvent(deck, 1))
	return card.Total(cards), nil
}

// RemoveCard takes qty copies of a card out of a deck; qty <= 0, or a qty at
// least the held quantity, removes the entry. It returns how many copies
// were removed and the deck's new total.
func (s *Store) RemoveCard(deck, name string, qty int) (removed, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[deck]
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", deck, ErrDeckNotFound)
	}
	i := indexOf(cards, name)
	if i < 0 {
		return 0, 0, fmt.Errorf("%q in %q: %w", name, deck, ErrCardNotFound)
	}

	held := cards[i].Quantity()
	if qty <= 0 || qty >= held {
		removed = held
		cards = slices.Delete(cards, i, i+1)
	} else {
		removed = qty
		cards[i] = cards[i].WithQuantity(held - qty)
	}
	s.decks[deck] = cards
	s.events.Log(log.NewCardsRemovedEvent(deck, 1))
	return removed, card.Total(cards), nil
}

// Clear empties a slot and returns how many entries it held.
func (s *Store) Clear(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards, ok := s.decks[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrDeckNotFound)
	}
	s.decks[name] = []card.Card{}
	s.events.Log(log.NewDeckClearedEvent(name, len(cards)))
	return len(cards), nil
}

// Delete removes a slot.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrDeckNotFound)
	}
	delete(s.decks, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	s.events.Log(log.NewDeckDeletedEvent(name))
	return nil
}

// set must be called with mu held.
func (s *Store) set(name string, cards []card.Card) {
	if _, ok := s.decks[name]; !ok {
		s.order = append(s.order, name)
	}
	if cards == nil {
		cards = []card.Card{}
	}
	s.decks[name] = cards
}

func summarize(name string, cards []card.Card) Summary {
	return Summary{Name: name, CardCount: len(cards), TotalCards: card.Total(cards)}
}

// MergeCards folds incoming into existing: entries with the same name are
// merged with card.Card.Merge, new names are appended in order.
func MergeCards(existing, incoming []card.Card) []card.Card {
	out := slices.Clone(existing)
	for _, c := range incoming {
		if i := indexOf(out, c.Name()); i >= 0 {
			out[i] = out[i].Merge(c)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Find returns the entry named name.
func Find(cards []card.Card, name string) (card.Card, bool) {
	if i := indexOf(cards, name); i >= 0 {
		return cards[i], true
	}
	return card.Card{}, false
}

func indexOf(cards []card.Card, name string) int {
	return slices.IndexFunc(cards, func(c card.Card) bool { return SameName(c.Name(), name) })
}

// SameName reports whether two card names refer to the same card: they are
// compared case-insensitively in NFC form, ignoring surrounding space.
func SameName(a, b string) bool {
	return strings.EqualFold(
		norm.NFC.String(strings.TrimSpace(a)),
		norm.NFC.String(strings.TrimSpace(b)),
	)
}
