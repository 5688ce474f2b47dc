package sites

import (
	"context"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var tcgplayerPattern = source.BuildPattern("tcgplayer.com",
	`/(content/)?magic-the-gathering/deck/(?P<deck_name>.+)/(?P<deck_id>\d+)/?`)

// TCGPlayer reads tcgplayer.com decks through the infinite deck API.
type TCGPlayer struct {
	Client *fetch.Client
}

func (t *TCGPlayer) Name() string { return "tcgplayer" }

func (t *TCGPlayer) CanHandle(src string) bool { return tcgplayerPattern.MatchString(src) }

func (t *TCGPlayer) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !t.CanHandle(src) {
		return nil, nil
	}
	id := source.Group(tcgplayerPattern, src, "deck_id")

	var deck tcgplayerDeck
	url := "https://infinite-api.tcgplayer.com/deck/magic/" + id + "/?subDecks=true&cards=true"
	if err := t.Client.JSON(ctx, url, &deck); err != nil {
		return nil, err
	}
	return deck.cards(), nil
}

type tcgplayerEntry struct {
	CardID   text  `json:"cardID"`
	Quantity count `json:"quantity"`
}

type tcgplayerDeck struct {
	Result struct {
		Deck struct {
			SubDecks struct {
				CommandZone []tcgplayerEntry `json:"commandzone"`
				Sideboard   []tcgplayerEntry `json:"sideboard"`
				MainDeck    []tcgplayerEntry `json:"maindeck"`
			} `json:"subDecks"`
		} `json:"deck"`
		Cards map[string]struct {
			Name string `json:"name"`
			Set  string `json:"set"`
		} `json:"cards"`
	} `json:"result"`
}

// cards resolves each sub-deck entry against the card table. The sideboard
// of a commander deck only holds its companion.
func (d tcgplayerDeck) cards() []card.Card {
	var cards []card.Card
	add := func(entries []tcgplayerEntry, tag string) {
		for _, e := range entries {
			if e.CardID == "" {
				continue
			}
			detail, ok := d.Result.Cards[string(e.CardID)]
			if !ok || detail.Name == "" {
				continue
			}
			cards = append(cards, card.New(detail.Name, int(e.Quantity), detail.Set, "", tag))
		}
	}
	sub := d.Result.Deck.SubDecks
	add(sub.CommandZone, "commander")
	add(sub.Sideboard, "companion")
	add(sub.MainDeck, "")
	return cards
}
