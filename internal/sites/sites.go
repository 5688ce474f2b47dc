// Package sites reads decks published on deck-building websites. Each site
// is a source.Source that recognizes its own deck URLs, downloads the deck
// through a fetch.Client and converts the site's payload into cards.
package sites

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

// All returns every site source, in dispatch order.
func All(c *fetch.Client) []source.Source {
	return []source.Source{
		&Aetherhub{Client: c},
		&Archidekt{Client: c},
		&Deckstats{Client: c},
		&Moxfield{Client: c},
		&MTGGoldfish{Client: c},
		&MTGJSON{Client: c},
		&Scryfall{Client: c},
		&TappedOut{Client: c},
		&TCGPlayer{Client: c},
	}
}

// NewRegistry returns the default registry: every site, then the decklist
// text source as the catch-all.
func NewRegistry(c *fetch.Client) *source.Registry {
	return source.NewRegistry(append(All(c), decklist.Source{})...)
}

// pageURL adds a scheme to deck URLs given without one.
func pageURL(src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return "https://" + src
}

// text is a JSON field that sites send either as a string or a number.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = text(n.String())
	return nil
}

// count is a JSON quantity that may arrive as a number or a string.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	var t text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	if t == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(string(t))
	if err != nil {
		f, ferr := strconv.ParseFloat(string(t), 64)
		if ferr != nil {
			return err
		}
		n = int(f)
	}
	*c = count(n)
	return nil
}
