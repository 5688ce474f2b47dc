package sites

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var (
	mtggoldfishPattern = source.BuildPattern("mtggoldfish.com", `/deck/(?P<deck_id>\d+)/?`)
	goldfishSetCode    = regexp.MustCompile(`\[(.*?)\]`)

	// The component endpoint answers with a JavaScript string literal.
	goldfishUnescape = strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\/`, `/`, `\n`, ``)
	goldfishEntities = []struct{ from, to string }{
		{"&quot;", `"`}, {"&apos;", "'"}, {"&lt;", "<"}, {"&gt;", ">"}, {"&amp;", "&"},
	}
)

// MTGGoldfish reads mtggoldfish.com decks from the deck table component,
// which needs the page's CSRF token.
type MTGGoldfish struct {
	Client *fetch.Client
}

func (m *MTGGoldfish) Name() string { return "mtggoldfish" }

func (m *MTGGoldfish) CanHandle(src string) bool { return mtggoldfishPattern.MatchString(src) }

func (m *MTGGoldfish) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !m.CanHandle(src) {
		return nil, nil
	}
	page, err := m.Client.Text(ctx, pageURL(src), http.Header{"Accept": []string{"text/html"}})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	header := http.Header{"X-Requested-With": []string{"XMLHttpRequest"}}
	if token, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content"); ok && token != "" {
		header.Set("X-CSRF-Token", token)
	}
	id := source.Group(mtggoldfishPattern, src, "deck_id")
	component, err := m.Client.Text(ctx, "https://www.mtggoldfish.com/deck/component?id="+id, header)
	if err != nil {
		return nil, err
	}
	return goldfishCards(component)
}

func goldfishCards(component string) ([]card.Card, error) {
	html, _, _ := strings.Cut(component, "\n")
	html = goldfishUnescape.Replace(html)
	for _, e := range goldfishEntities {
		html = strings.ReplaceAll(html, e.from, e.to)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var (
		cards []card.Card
		tag   string
	)
	doc.Find(".deck-view-deck-table tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("deck-category-header") {
			category := strings.ToLower(row.Text())
			tag = ""
			for _, t := range []string{"commander", "companion"} {
				if strings.Contains(category, t) {
					tag = t
					break
				}
			}
			return
		}

		link := row.Find("a").First()
		qty := row.Find("td").First()
		if link.Length() == 0 || qty.Length() == 0 {
			return
		}
		var ext string
		if m := goldfishSetCode.FindStringSubmatch(link.AttrOr("data-card-id", "")); m != nil {
			ext = strings.ToLower(m[1])
		}
		cards = append(cards, card.New(
			strings.TrimSpace(link.Text()),
			card.ParseQuantity(qty.Text()),
			ext, "", tag,
		))
	})
	return cards, nil
}
