package deckstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/log"
)

// DeckFile represents the top-level YAML structure of a deck library.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file. Cards may be given
// as structured entries, as a decklist text block, or both; structured
// entries come first.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
	List  string      `yaml:"list"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	Name   string   `yaml:"name"`
	Count  int      `yaml:"count"`
	Set    string   `yaml:"set"`
	Number string   `yaml:"number"`
	Tags   []string `yaml:"tags"`
}

func (d DeckEntry) cards() []card.Card {
	var cards []card.Card
	for _, e := range d.Cards {
		if e.Name == "" {
			continue
		}
		cards = append(cards, card.New(e.Name, e.Count, e.Set, e.Number, e.Tags...))
	}
	return append(cards, decklist.Parse(d.List)...)
}

// ParseDeckFile parses YAML deck library data.
func ParseDeckFile(data []byte) (DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	for i, d := range df.Decks {
		if d.Name == "" {
			return DeckFile{}, fmt.Errorf("deck %d has no name", i+1)
		}
	}
	return df, nil
}

// DeckByNumber returns the Nth deck (1-indexed) from the library.
func (df DeckFile) DeckByNumber(n int) (string, []card.Card, error) {
	if n < 1 || n > len(df.Decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	d := df.Decks[n-1]
	return d.Name, d.cards(), nil
}

// LoadLibrary reads a YAML deck library into the store, replacing slots
// with the same names. It returns the loaded deck names in file order.
func (s *Store) LoadLibrary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	df, err := ParseDeckFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	names := make([]string, 0, len(df.Decks))
	for _, d := range df.Decks {
		s.put(d.Name, d.cards())
		names = append(names, d.Name)
	}
	s.events.Log(log.NewLibraryLoadedEvent(path, len(names)))
	return names, nil
}
