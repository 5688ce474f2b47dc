package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/peterkuimelis/mtgdeck/internal/analytics"
	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
	"github.com/peterkuimelis/mtgdeck/internal/log"
)

// Source types reported by the parse tools.
const (
	SourceURL  = "url"
	SourceText = "text"
)

type successResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TotalCards *int   `json:"totalCards,omitempty"`
}

// deckView is a deck slot as presented in tool responses.
type deckView struct {
	Name       string      `json:"name"`
	Cards      []card.Card `json:"cards"`
	CardCount  int         `json:"cardCount"`
	TotalCards int         `json:"totalCards"`
}

func newDeckView(name string, cards []card.Card) deckView {
	if cards == nil {
		cards = []card.Card{}
	}
	return deckView{Name: name, Cards: cards, CardCount: len(cards), TotalCards: card.Total(cards)}
}

type parseResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Cards      []card.Card `json:"cards,omitempty"`
	CardCount  int         `json:"cardCount"`
	TotalCards int         `json:"totalCards"`
	SourceType string      `json:"source_type"`
	Source     string      `json:"source"`
}

type validateResponse struct {
	Valid      bool   `json:"valid"`
	SourceType string `json:"source_type"`
	Source     string `json:"source,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

type formatResponse struct {
	DeckName      string `json:"deck_name"`
	FormattedText string `json:"formatted_text"`
	CardCount     int    `json:"cardCount"`
	TotalCards    int    `json:"totalCards"`
}

type loadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	deckstore.LoadResult
}

type hypergeometricParams struct {
	DeckSize        int    `json:"deck_size"`
	SuccessesInDeck int    `json:"successes_in_deck"`
	CardsDrawn      int    `json:"cards_drawn"`
	WantAtLeast     int    `json:"want_at_least"`
	CalculationType string `json:"calculation_type"`
}

type hypergeometricResponse struct {
	Success    bool                 `json:"success"`
	Percentage float64              `json:"probability_percentage"`
	Decimal    float64              `json:"probability_decimal"`
	Parameters hypergeometricParams `json:"parameters"`
}

type consistencyResponse struct {
	Success  bool   `json:"success"`
	DeckName string `json:"deck_name"`
	analytics.Report
}

// respond marshals v into a text tool result.
func respond(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorf("marshal error: %v", err)
	}
	return mcp.NewToolResultText(string(data))
}

// storeError reports a deck store failure to the caller.
func storeError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, deckstore.ErrDeckNotFound),
		errors.Is(err, deckstore.ErrDeckExists),
		errors.Is(err, deckstore.ErrCardNotFound):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultErrorf("deck store: %v", err)
	}
}

// isURL reports whether src is an absolute URL. Scheme-less deck links such
// as "moxfield.com/decks/..." are not URLs here; the registry still claims
// them.
func isURL(src string) bool {
	u, err := url.Parse(src)
	return err == nil && u.Scheme != "" && u.Host != ""
}

type parsed struct {
	Cards      []card.Card
	SourceType string
	Source     string
}

// content returns the text the registry should see for src. A URL that no
// source claims is downloaded and its body stands in for it.
func (ts *Toolset) content(ctx context.Context, src string) (string, string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", SourceText, errors.New("source must not be empty")
	}
	if !isURL(src) {
		return src, SourceText, nil
	}
	if ts.Registry.CanHandle(src) {
		return src, SourceURL, nil
	}
	body, err := ts.Client.Text(ctx, src, nil)
	if err != nil {
		return "", SourceURL, fmt.Errorf("failed to fetch URL: %w", err)
	}
	return body, SourceURL, nil
}

func (ts *Toolset) parse(ctx context.Context, src string) (parsed, error) {
	text, kind, err := ts.content(ctx, src)
	if err != nil {
		return parsed{SourceType: kind}, err
	}
	res := parsed{SourceType: kind}
	s, cards, err := ts.Registry.Parse(ctx, text)
	if s != nil {
		res.Source = s.Name()
	}
	if err != nil {
		ts.Store.Events().Log(log.NewParseFailedEvent(res.Source, err))
		return res, err
	}
	ts.Store.Events().Log(log.NewDeckParsedEvent(res.Source, len(cards)))
	res.Cards = cards
	return res, nil
}

func (ts *Toolset) validate(ctx context.Context, src string) validateResponse {
	text, kind, err := ts.content(ctx, src)
	if err != nil {
		return validateResponse{Valid: false, SourceType: kind, Error: err.Error()}
	}
	s, ok := ts.Registry.Resolve(text)
	if !ok {
		return validateResponse{Valid: false, SourceType: kind, Message: "Source cannot be parsed"}
	}
	return validateResponse{Valid: true, SourceType: kind, Source: s.Name(), Message: "Source can be parsed"}
}

// stringListMap reads a JSON object of string arrays.
func stringListMap(v any) (map[string][]string, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
	out := make(map[string][]string, len(obj))
	for k, raw := range obj {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an array of card names", k)
		}
		out[k] = []string{}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: card names must be strings", k)
			}
			out[k] = append(out[k], s)
		}
	}
	return out, nil
}

// intMap reads a JSON object of whole numbers.
func intMap(v any) (map[string]int, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
	out := make(map[string]int, len(obj))
	for k, raw := range obj {
		switch n := raw.(type) {
		case float64:
			out[k] = int(n)
		case int:
			out[k] = n
		default:
			return nil, fmt.Errorf("%s: expected a number", k)
		}
	}
	return out, nil
}
