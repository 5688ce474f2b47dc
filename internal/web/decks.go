package web

import (
	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
)

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Name       string   `json:"name"`
	CardCount  int      `json:"cardCount"`
	TotalCards int      `json:"totalCards"`
	Cards      []string `json:"cards"`
}

// DeckDetail is a single deck for /api/decks/{name}.
type DeckDetail struct {
	Name       string      `json:"name"`
	Cards      []card.Card `json:"cards"`
	CardCount  int         `json:"cardCount"`
	TotalCards int         `json:"totalCards"`
	Text       string      `json:"text"`
}

func deckInfos(store *deckstore.Store) []DeckInfo {
	decks := []DeckInfo{}
	for _, sum := range store.List() {
		di := DeckInfo{Name: sum.Name, CardCount: sum.CardCount, TotalCards: sum.TotalCards, Cards: []string{}}
		cards, err := store.Get(sum.Name)
		if err != nil {
			// deleted since List
			continue
		}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range cards {
			if !seen[c.Name()] {
				di.Cards = append(di.Cards, c.Name())
				seen[c.Name()] = true
			}
		}
		decks = append(decks, di)
	}
	return decks
}

func newDeckDetail(name string, cards []card.Card) DeckDetail {
	if cards == nil {
		cards = []card.Card{}
	}
	return DeckDetail{
		Name:       name,
		Cards:      cards,
		CardCount:  len(cards),
		TotalCards: card.Total(cards),
		Text:       decklist.Format(cards),
	}
}
