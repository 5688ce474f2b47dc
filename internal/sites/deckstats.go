package sites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var deckstatsPattern = source.BuildPattern("deckstats.net", `/decks/(?P<user_id>\d+)/(?P<deck_id>\d+-.*)/?`)

// Deckstats reads deckstats.net decks. The deck is embedded in the page as
// the argument of an init_deck_data(...) call.
type Deckstats struct {
	Client *fetch.Client
}

func (d *Deckstats) Name() string { return "deckstats" }

func (d *Deckstats) CanHandle(src string) bool { return deckstatsPattern.MatchString(src) }

func (d *Deckstats) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !d.CanHandle(src) {
		return nil, nil
	}
	page, err := d.Client.Text(ctx, pageURL(src), nil)
	if err != nil {
		return nil, err
	}
	deck, err := deckstatsData(page)
	if err != nil {
		return nil, err
	}
	return deck.cards(), nil
}

// deckstatsData extracts the first JSON object passed to init_deck_data.
func deckstatsData(page string) (deckstatsDeck, error) {
	const start, end = "init_deck_data(", ");"

	var line string
	for _, l := range strings.Split(page, "\n") {
		if strings.Contains(l, start) {
			line = l
			break
		}
	}
	if line == "" {
		return deckstatsDeck{}, errors.New("deckstats: init_deck_data not found in page")
	}

	data := line[strings.Index(line, start)+len(start):]
	if i := strings.Index(data, end); i >= 0 {
		data = data[:i]
	}

	depth := 0
	for i, r := range data {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth <= 0 {
			data = data[:i+1]
			break
		}
	}

	var deck deckstatsDeck
	if err := json.Unmarshal([]byte(data), &deck); err != nil {
		return deckstatsDeck{}, fmt.Errorf("deckstats: decode deck data: %w", err)
	}
	return deck, nil
}

type deckstatsDeck struct {
	Sections []struct {
		Cards []struct {
			Name        string `json:"name"`
			Amount      count  `json:"amount"`
			IsCommander bool   `json:"isCommander"`
			IsCompanion bool   `json:"isCompanion"`
		} `json:"cards"`
	} `json:"sections"`
}

func (d deckstatsDeck) cards() []card.Card {
	var cards []card.Card
	for _, s := range d.Sections {
		for _, c := range s.Cards {
			var tags []string
			if c.IsCommander {
				tags = append(tags, "commander")
			}
			if c.IsCompanion {
				tags = append(tags, "companion")
			}
			cards = append(cards, card.New(c.Name, int(c.Amount), "", "", tags...))
		}
	}
	return cards
}
