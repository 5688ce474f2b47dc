package sites

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var (
	aetherhubPattern = source.BuildPattern("aetherhub.com", `/Deck/(?P<deck_id>.+)/?`)
	quotedID         = regexp.MustCompile(`^\\?["']|\\?["']$`)
	numericID        = regexp.MustCompile(`^\d+$`)
)

// Aetherhub reads aetherhub.com decks. The page carries a numeric deck id
// which keys the MTGA JSON export.
type Aetherhub struct {
	Client *fetch.Client
}

func (a *Aetherhub) Name() string { return "aetherhub" }

func (a *Aetherhub) CanHandle(src string) bool { return aetherhubPattern.MatchString(src) }

func (a *Aetherhub) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !a.CanHandle(src) {
		return nil, nil
	}
	page, err := a.Client.Text(ctx, pageURL(src), nil)
	if err != nil {
		return nil, err
	}
	id, err := aetherhubDeckID(page)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("deckId", id)
	q.Set("langId", "0")
	q.Set("simple", "false")
	var deck aetherhubDeck
	if err := a.Client.JSON(ctx, "https://aetherhub.com/Deck/FetchMtgaDeckJson?"+q.Encode(), &deck); err != nil {
		return nil, err
	}
	return deck.cards(), nil
}

func aetherhubDeckID(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	var id string
	doc.Find("[data-deckid]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v := quotedID.ReplaceAllString(s.AttrOr("data-deckid", ""), "")
		if numericID.MatchString(v) {
			id = v
			return false
		}
		return true
	})
	if id == "" {
		return "", errors.New("aetherhub: no numeric deck id in page")
	}
	return id, nil
}

type aetherhubDeck struct {
	ConvertedDeck []struct {
		Quantity count `json:"quantity"`
		Name     string `json:"name"`
		Set      text   `json:"set"`
		Number   text   `json:"number"`
	} `json:"convertedDeck"`
}

// cards treats entries without a quantity as category headers that tag the
// entries after them.
func (d aetherhubDeck) cards() []card.Card {
	var (
		cards    []card.Card
		category string
	)
	for _, e := range d.ConvertedDeck {
		if e.Quantity == 0 {
			category = e.Name
			continue
		}
		if e.Name == "" {
			continue
		}
		cards = append(cards, card.New(e.Name, int(e.Quantity), string(e.Set), string(e.Number), category))
	}
	return cards
}
