package sites

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

var scryfallPattern = source.BuildPattern("scryfall.com",
	`/(?P<user_id>@.+)/decks/(?P<deck_id>\w{8}-\w{4}-\w{4}-\w{4}-\w{12})/?`)

// Scryfall reads public scryfall.com decks through their CSV export.
type Scryfall struct {
	Client *fetch.Client
}

func (s *Scryfall) Name() string { return "scryfall" }

func (s *Scryfall) CanHandle(src string) bool { return scryfallPattern.MatchString(src) }

func (s *Scryfall) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	if !s.CanHandle(src) {
		return nil, nil
	}
	id := source.Group(scryfallPattern, src, "deck_id")
	export, err := s.Client.Text(ctx, "https://api.scryfall.com/decks/"+id+"/export/csv", nil)
	if err != nil {
		return nil, err
	}
	return scryfallCards(export)
}

// scryfallCards reads the CSV export. Rows whose width differs from the
// header's are skipped.
func scryfallCards(export string) ([]card.Card, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(export)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cards []card.Card
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) != len(header) {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			fields[h] = row[i]
		}
		name := fields["name"]
		qty := fields["count"]
		if qty == "" {
			qty = "1"
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if name == "" || err != nil {
			continue
		}

		var tags []string
		switch strings.ToLower(fields["section"]) {
		case "commanders":
			tags = append(tags, "commander")
		case "outside":
			tags = append(tags, "companion")
		}
		cards = append(cards, card.New(name, n, fields["set_code"], fields["collector_number"], tags...))
	}
	return cards, nil
}
