package sites

import (
	"context"
	"slices"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var archidektPattern = source.BuildPattern("archidekt.com", `/decks/(?P<deck_id>\d+)/?`)

// Archidekt reads archidekt.com decks through its public deck API.
type Archidekt struct {
	Client *fetch.Client
}

func (a *Archidekt) Name() string { return "archidekt" }

func (a *Archidekt) CanHandle(src string) bool { return archidektPattern.MatchString(src) }

func (a *Archidekt) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !a.CanHandle(src) {
		return nil, nil
	}
	id := source.Group(archidektPattern, src, "deck_id")

	var deck archidektDeck
	if err := a.Client.JSON(ctx, "https://archidekt.com/api/decks/"+id+"/", &deck); err != nil {
		return nil, err
	}
	return deck.cards(), nil
}

type archidektDeck struct {
	Categories []struct {
		Name           string `json:"name"`
		IncludedInDeck bool   `json:"includedInDeck"`
	} `json:"categories"`
	Cards []struct {
		Categories []string `json:"categories"`
		Quantity   count    `json:"quantity"`
		Card       struct {
			OracleCard struct {
				Name string `json:"name"`
			} `json:"oracleCard"`
			Edition struct {
				EditionCode string `json:"editioncode"`
			} `json:"edition"`
			CollectorNumber text `json:"collectorNumber"`
		} `json:"card"`
	} `json:"cards"`
}

// cards keeps uncategorized cards and cards in at least one category that
// counts toward the deck (this drops "Maybeboard" and the like).
func (d archidektDeck) cards() []card.Card {
	var included []string
	for _, c := range d.Categories {
		if c.IncludedInDeck && c.Name != "" {
			included = append(included, c.Name)
		}
	}

	var cards []card.Card
	for _, e := range d.Cards {
		keep := len(e.Categories) == 0 || slices.ContainsFunc(e.Categories, func(c string) bool {
			return slices.Contains(included, c)
		})
		if !keep {
			continue
		}
		cards = append(cards, card.New(
			e.Card.OracleCard.Name,
			int(e.Quantity),
			e.Card.Edition.EditionCode,
			string(e.Card.CollectorNumber),
			e.Categories...,
		))
	}
	return cards
}
