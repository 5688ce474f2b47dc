package sites

import (
	"context"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var (
	tappedoutPattern = source.BuildPattern("tappedout.net", `/mtg-decks/(?P<deck_id>.+)/?`)
	sectionCount     = regexp.MustCompile(`(?s)^(.*?)(?:\s+\(\d+\))?$`)
	nonWord          = regexp.MustCompile(`[^\w\s]`)
)

// TappedOut reads tappedout.net decks from the deck page rendered with
// custom categories.
type TappedOut struct {
	Client *fetch.Client
}

func (t *TappedOut) Name() string { return "tappedout" }

func (t *TappedOut) CanHandle(src string) bool { return tappedoutPattern.MatchString(src) }

func (t *TappedOut) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !t.CanHandle(src) {
		return nil, nil
	}
	u, err := url.Parse(pageURL(src))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("cat", "custom")
	u.RawQuery = q.Encode()

	page, err := t.Client.Text(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return tappedoutCards(page)
}

func tappedoutCards(page string) ([]card.Card, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}
	board := doc.Find(".board-container")

	quantities := map[string]int{}
	board.Find("a.qty.board[data-name][data-qty]").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("data-name", "")
		qty := s.AttrOr("data-qty", "")
		if name == "" || qty == "" {
			return
		}
		if n, err := strconv.Atoi(qty); err == nil {
			quantities[name] = n
		}
	})

	// Only commander and companion sections become tags; every other
	// section just lists the card.
	tags := map[string][]string{}
	const cardLink = "a.card-hover[data-name][data-url]"
	board.Find("h3").Each(func(_ int, h3 *goquery.Selection) {
		var tag string
		switch tappedoutSection(h3.Text()) {
		case "commander", "commanders":
			tag = "commander"
		case "companion", "companions":
			tag = "companion"
		}
		mark := func(s *goquery.Selection) {
			name := s.AttrOr("data-name", "")
			if name == "" {
				return
			}
			if _, ok := tags[name]; !ok {
				tags[name] = nil
			}
			if tag != "" && !slices.Contains(tags[name], tag) {
				tags[name] = append(tags[name], tag)
			}
		}
		for next := h3.Next(); next.Length() > 0 && !next.Is("h3"); next = next.Next() {
			if next.Is(cardLink) {
				mark(next)
			}
			next.Find(cardLink).Each(func(_ int, s *goquery.Selection) { mark(s) })
		}
	})

	names := make([]string, 0, len(quantities)+len(tags))
	for n := range quantities {
		names = append(names, n)
	}
	for n := range tags {
		if _, ok := quantities[n]; !ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)

	cards := make([]card.Card, 0, len(names))
	for _, n := range names {
		cards = append(cards, card.New(n, quantities[n], "", "", tags[n]...))
	}
	return cards, nil
}

// tappedoutSection turns a section heading such as "Commander (1)" into
// "commander"; multi-word headings are joined with underscores.
func tappedoutSection(heading string) string {
	heading = strings.TrimSpace(heading)
	if m := sectionCount.FindStringSubmatch(heading); m != nil {
		heading = m[1]
	}
	heading = nonWord.ReplaceAllString(heading, "")
	return strings.Join(strings.Fields(strings.ToLower(heading)), "_")
}
