package deckstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/log"
)

// DefaultLoadName names a loaded deck when neither the caller nor the file
// gives one.
const DefaultLoadName = "loaded_deck"

// SavedDeck is the JSON layout written by Save.
type SavedDeck struct {
	Name    string      `json:"name,omitempty"`
	Cards   []card.Card `json:"cards"`
	SavedAt *time.Time  `json:"saved_at,omitempty"`
}

// LoadResult describes a deck read by Load.
type LoadResult struct {
	Name         string     `json:"name"`
	OriginalName string     `json:"original_name,omitempty"`
	CardCount    int        `json:"cardCount"`
	TotalCards   int        `json:"totalCards"`
	SavedAt      *time.Time `json:"saved_at,omitempty"`
}

// Save writes deck name to <path>.json and a decklist rendering to
// <path>.txt, returning both file names.
func (s *Store) Save(name, path string) ([]string, error) {
	cards, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	data, err := json.MarshalIndent(SavedDeck{Name: name, Cards: cards, SavedAt: &now}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode deck: %w", err)
	}
	jsonPath, textPath := path+".json", path+".txt"
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}
	if err := os.WriteFile(textPath, []byte(decklist.Format(cards)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", textPath, err)
	}

	s.events.Log(log.NewDeckSavedEvent(name, jsonPath, len(cards)))
	return []string{jsonPath, textPath}, nil
}

// Load reads a JSON file written by Save into a slot, replacing it. The
// slot is name when given, else the name stored in the file, else
// DefaultLoadName.
func (s *Store) Load(path, name string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, err
	}
	var saved SavedDeck
	if err := json.Unmarshal(data, &saved); err != nil {
		return LoadResult{}, fmt.Errorf("parse deck JSON: %w", err)
	}

	slot := name
	if slot == "" {
		slot = saved.Name
	}
	if slot == "" {
		slot = DefaultLoadName
	}
	s.put(slot, saved.Cards)
	s.events.Log(log.NewDeckLoadedEvent(slot, path, len(saved.Cards)))

	return LoadResult{
		Name:         slot,
		OriginalName: saved.Name,
		CardCount:    len(saved.Cards),
		TotalCards:   card.Total(saved.Cards),
		SavedAt:      saved.SavedAt,
	}, nil
}
