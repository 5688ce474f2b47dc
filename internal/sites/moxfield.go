package sites

import (
	"context"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var moxfieldPattern = source.BuildPattern("moxfield.com", `/decks/(?P<deck_id>[a-zA-Z0-9_-]+)/?`)

// Moxfield reads moxfield.com decks through the v2 deck API.
type Moxfield struct {
	Client *fetch.Client
}

func (m *Moxfield) Name() string { return "moxfield" }

func (m *Moxfield) CanHandle(src string) bool { return moxfieldPattern.MatchString(src) }

func (m *Moxfield) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !m.CanHandle(src) {
		return nil, nil
	}
	id := source.Group(moxfieldPattern, src, "deck_id")

	// The API answers more reliably once the deck page has been visited.
	if err := m.Client.Head(ctx, pageURL(src)); err != nil {
		return nil, err
	}
	var deck moxfieldDeck
	if err := m.Client.JSON(ctx, "https://api.moxfield.com/v2/decks/all/"+id, &deck); err != nil {
		return nil, err
	}
	return deck.cards(), nil
}

type moxfieldEntry struct {
	Quantity count `json:"quantity"`
	Card     struct {
		Set text `json:"set"`
		CN  text `json:"cn"`
	} `json:"card"`
}

// moxfieldBoard keeps the board's card order as sent by the API.
type moxfieldBoard = *orderedmap.OrderedMap[string, moxfieldEntry]

type moxfieldDeck struct {
	Commanders moxfieldBoard `json:"commanders"`
	Companions moxfieldBoard `json:"companions"`
	Mainboard  moxfieldBoard `json:"mainboard"`
}

func (d moxfieldDeck) cards() []card.Card {
	var cards []card.Card
	add := func(board moxfieldBoard, tag string) {
		if board == nil {
			return
		}
		for p := board.Oldest(); p != nil; p = p.Next() {
			e := p.Value
			cards = append(cards, card.New(p.Key, int(e.Quantity), string(e.Card.Set), string(e.Card.CN), tag))
		}
	}
	add(d.Commanders, "commander")
	add(d.Companions, "companion")
	add(d.Mainboard, "")
	return cards
}
