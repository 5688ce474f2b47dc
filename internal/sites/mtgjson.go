package sites

import (
	"context"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var mtgjsonPattern = source.BuildPattern("mtgjson.com", `/api/v5/decks/(?P<deck_id>.+\.json)`)

// MTGJSON reads precon deck files published by mtgjson.com.
type MTGJSON struct {
	Client *fetch.Client
}

func (m *MTGJSON) Name() string { return "mtgjson" }

func (m *MTGJSON) CanHandle(src string) bool { return mtgjsonPattern.MatchString(src) }

func (m *MTGJSON) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !m.CanHandle(src) {
		return nil, nil
	}
	var deck mtgjsonDeck
	if err := m.Client.JSON(ctx, pageURL(src), &deck); err != nil {
		return nil, err
	}
	return deck.cards(), nil
}

type mtgjsonCard struct {
	Name    string `json:"name"`
	Count   count  `json:"count"`
	SetCode string `json:"setCode"`
}

type mtgjsonDeck struct {
	Data struct {
		Commander []mtgjsonCard `json:"commander"`
		MainBoard []mtgjsonCard `json:"mainBoard"`
	} `json:"data"`
}

func (d mtgjsonDeck) cards() []card.Card {
	var cards []card.Card
	for _, c := range d.Data.Commander {
		cards = append(cards, card.New(c.Name, int(c.Count), c.SetCode, "", "commander"))
	}
	for _, c := range d.Data.MainBoard {
		cards = append(cards, card.New(c.Name, int(c.Count), c.SetCode, ""))
	}
	return cards
}
