package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/log"
	"github.com/peterkuimelis/mtgdeck/internal/sites"
)

type stubTransport map[string]string

func (st stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, ok := st[req.URL.String()]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func newToolset(pages map[string]string) (*Toolset, *log.MemoryLogger) {
	client := fetch.New(fetch.Options{Transport: stubTransport(pages), RequestsPerSecond: 1000, Burst: 100})
	events := log.NewMemoryLogger()
	return &Toolset{
		Store:    deckstore.New(events),
		Registry: sites.NewRegistry(client),
		Client:   client,
	}, events
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, args map[string]any) (map[string]any, *mcp.CallToolResult) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	if res.IsError {
		return map[string]any{"error": text.Text}, res
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("tool returned invalid JSON %q: %v", text.Text, err)
	}
	return out, res
}

func mustOK(t *testing.T, h handler, args map[string]any) map[string]any {
	t.Helper()
	out, res := call(t, h, args)
	if res.IsError {
		t.Fatalf("unexpected tool error: %v", out["error"])
	}
	return out
}

func mustFail(t *testing.T, h handler, args map[string]any, contains string) {
	t.Helper()
	out, res := call(t, h, args)
	if !res.IsError {
		t.Fatalf("expected tool error, got %v", out)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, contains) {
		t.Errorf("error %q does not contain %q", msg, contains)
	}
}

func TestRegisterTools(t *testing.T) {
	ts, _ := newToolset(nil)
	s := server.NewMCPServer("mtgdeck", "test", server.WithToolCapabilities(true))
	RegisterTools(s, ts)

	msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, tool := range resp.Result.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		"create_deck", "list_decks", "get_deck", "add_cards", "remove_cards", "clear_deck",
		"delete_deck", "validate_mtg_source", "parse_mtg_deck", "parse_mtg_deck_to_slot",
		"format_mtg_deck", "save_mtg_deck", "load_mtg_deck", "load_deck_library",
		"calculate_hypergeometric", "analyze_consistency",
	} {
		if !got[name] {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestDeckLifecycle(t *testing.T) {
	ts, events := newToolset(nil)

	mustOK(t, ts.handleCreateDeck, map[string]any{"name": "burn"})
	mustFail(t, ts.handleCreateDeck, map[string]any{"name": "burn"}, "already exists")
	mustFail(t, ts.handleCreateDeck, map[string]any{"name": "  "}, "must not be empty")

	out := mustOK(t, ts.handleAddCards, map[string]any{"deck_name": "burn", "card_name": "Lightning Bolt", "quantity": 4.0})
	if out["totalCards"] != 4.0 {
		t.Errorf("totalCards = %v, want 4", out["totalCards"])
	}
	out = mustOK(t, ts.handleAddCards, map[string]any{"deck_name": "burn", "card_name": "lightning bolt"})
	if out["totalCards"] != 5.0 {
		t.Errorf("totalCards = %v, want 5", out["totalCards"])
	}
	mustOK(t, ts.handleAddCards, map[string]any{"deck_name": "burn", "card_name": "Mountain", "quantity": 20.0})
	mustFail(t, ts.handleAddCards, map[string]any{"deck_name": "burn", "card_name": "Shock", "quantity": 0.0}, "quantity")
	mustFail(t, ts.handleAddCards, map[string]any{"deck_name": "nope", "card_name": "Shock"}, "does not exist")

	out = mustOK(t, ts.handleGetDeck, map[string]any{"name": "burn"})
	if out["cardCount"] != 2.0 || out["totalCards"] != 25.0 {
		t.Errorf("get_deck = %v", out)
	}

	out = mustOK(t, ts.handleRemoveCards, map[string]any{"deck_name": "burn", "card_name": "Lightning Bolt", "quantity": 2.0})
	if !strings.HasPrefix(out["message"].(string), "Removed 2 ") {
		t.Errorf("message = %v", out["message"])
	}
	out = mustOK(t, ts.handleRemoveCards, map[string]any{"deck_name": "burn", "card_name": "Lightning Bolt"})
	if !strings.HasPrefix(out["message"].(string), "Removed all 3 copies") {
		t.Errorf("message = %v", out["message"])
	}
	mustFail(t, ts.handleRemoveCards, map[string]any{"deck_name": "burn", "card_name": "Lightning Bolt"}, "not found")

	out = mustOK(t, ts.handleListDecks, nil)
	decks := out["decks"].([]any)
	if len(decks) != 1 || decks[0].(map[string]any)["totalCards"] != 20.0 {
		t.Errorf("list_decks = %v", out)
	}

	mustOK(t, ts.handleClearDeck, map[string]any{"name": "burn"})
	out = mustOK(t, ts.handleGetDeck, map[string]any{"name": "burn"})
	if cards := out["cards"].([]any); len(cards) != 0 {
		t.Errorf("deck not cleared: %v", cards)
	}

	mustOK(t, ts.handleDeleteDeck, map[string]any{"name": "burn"})
	mustFail(t, ts.handleGetDeck, map[string]any{"name": "burn"}, "does not exist")
	mustFail(t, ts.handleDeleteDeck, map[string]any{"name": "burn"}, "does not exist")

	if events.LastEvent().Type != log.EventDeckDeleted {
		t.Errorf("last event = %v", events.LastEvent().Type)
	}
}

func TestParseText(t *testing.T) {
	ts, events := newToolset(nil)
	out := mustOK(t, ts.handleParseDeck, map[string]any{
		"source": "// Commander\n1 Atraxa, Praetors' Voice (C16) 28\n// Ramp\n1 Sol Ring\n1 Arcane Signet",
	})
	if out["source_type"] != SourceText || out["source"] != "decklist" {
		t.Errorf("source = %v / %v", out["source_type"], out["source"])
	}
	if out["cardCount"] != 3.0 || out["totalCards"] != 3.0 {
		t.Errorf("counts = %v / %v", out["cardCount"], out["totalCards"])
	}
	first := out["cards"].([]any)[0].(map[string]any)
	if first["extension"] != "C16" || first["tags"].([]any)[0] != "commander" {
		t.Errorf("first card = %v", first)
	}
	if events.LastEvent().Type != log.EventDeckParsed {
		t.Errorf("parse not logged")
	}

	mustFail(t, ts.handleParseDeck, map[string]any{"source": "nothing to see here"}, "Parse failed")
	if events.LastEvent().Type != log.EventParseFailed {
		t.Errorf("failure not logged")
	}
}

func TestParseSiteURL(t *testing.T) {
	ts, _ := newToolset(map[string]string{
		"https://archidekt.com/api/decks/42/": `{"categories":[],"cards":[
			{"categories":[],"quantity":1,"card":{"oracleCard":{"name":"Sol Ring"},"edition":{"editioncode":"c21"},"collectorNumber":"263"}}
		]}`,
	})
	out := mustOK(t, ts.handleParseDeck, map[string]any{"source": "https://archidekt.com/decks/42/"})
	if out["source_type"] != SourceURL || out["source"] != "archidekt" {
		t.Errorf("source = %v / %v", out["source_type"], out["source"])
	}
	if out["totalCards"] != 1.0 {
		t.Errorf("totalCards = %v", out["totalCards"])
	}
}

func TestParseUnclaimedURLFetchesText(t *testing.T) {
	ts, _ := newToolset(map[string]string{
		"https://example.com/deck.txt": "4 Lightning Bolt\n20 Mountain\n",
	})
	out := mustOK(t, ts.handleParseDeck, map[string]any{"source": "https://example.com/deck.txt"})
	if out["source_type"] != SourceURL || out["source"] != "decklist" || out["totalCards"] != 24.0 {
		t.Errorf("parse = %v", out)
	}

	mustFail(t, ts.handleParseDeck, map[string]any{"source": "https://example.com/missing.txt"}, "failed to fetch URL")
}

func TestValidateSource(t *testing.T) {
	ts, _ := newToolset(nil)

	out := mustOK(t, ts.handleValidateSource, map[string]any{"source": "1 Sol Ring"})
	if out["valid"] != true || out["source"] != "decklist" {
		t.Errorf("validate text = %v", out)
	}
	out = mustOK(t, ts.handleValidateSource, map[string]any{"source": "https://www.moxfield.com/decks/abc"})
	if out["valid"] != true || out["source"] != "moxfield" || out["source_type"] != SourceURL {
		t.Errorf("validate url = %v", out)
	}
	out = mustOK(t, ts.handleValidateSource, map[string]any{"source": "hello world"})
	if out["valid"] != false {
		t.Errorf("validate garbage = %v", out)
	}
	out = mustOK(t, ts.handleValidateSource, map[string]any{"source": "https://example.com/404"})
	if out["valid"] != false || out["error"] == nil {
		t.Errorf("validate unreachable = %v", out)
	}
}

func TestParseToSlotAndFormat(t *testing.T) {
	ts, events := newToolset(nil)

	mustOK(t, ts.handleParseDeckToSlot, map[string]any{"source": "2 Opt\n// Lands\n10 Island", "deck_name": "tempo"})
	out := mustOK(t, ts.handleParseDeckToSlot, map[string]any{"source": "2 Opt (XLN) 65", "deck_name": "tempo", "merge": true})
	if out["cardCount"] != 2.0 || out["totalCards"] != 14.0 {
		t.Errorf("merge = %v", out)
	}
	if !strings.HasSuffix(out["message"].(string), "(merged)") {
		t.Errorf("message = %v", out["message"])
	}

	out = mustOK(t, ts.handleFormatDeck, map[string]any{"deck_name": "tempo"})
	want := "4 Opt (XLN) 65\n10 Island #Lands"
	if out["formatted_text"] != want {
		t.Errorf("formatted_text = %q, want %q", out["formatted_text"], want)
	}

	out = mustOK(t, ts.handleParseDeckToSlot, map[string]any{"source": "1 Brainstorm", "deck_name": "tempo"})
	if out["totalCards"] != 1.0 {
		t.Errorf("replace = %v", out)
	}
	if last := events.LastEvent(); last.Type != log.EventDeckReplaced || last.Deck != "tempo" || last.Cards != 1 {
		t.Errorf("slot replacement not logged: %+v", last)
	}
	mustFail(t, ts.handleFormatDeck, map[string]any{"deck_name": "nope"}, "does not exist")
}

func TestSaveAndLoad(t *testing.T) {
	ts, _ := newToolset(nil)
	ts.Store.Put("tempo", nil)
	mustOK(t, ts.handleAddCards, map[string]any{"deck_name": "tempo", "card_name": "Opt", "quantity": 4.0})

	base := filepath.Join(t.TempDir(), "tempo")
	out := mustOK(t, ts.handleSaveDeck, map[string]any{"deck_name": "tempo", "filepath": base})
	if files := out["files"].([]any); len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if _, err := os.Stat(base + ".txt"); err != nil {
		t.Fatalf("text file missing: %v", err)
	}

	out = mustOK(t, ts.handleLoadDeck, map[string]any{"filepath": base + ".json", "deck_name": "copy"})
	if out["name"] != "copy" || out["original_name"] != "tempo" || out["totalCards"] != 4.0 {
		t.Errorf("load = %v", out)
	}
	mustFail(t, ts.handleLoadDeck, map[string]any{"filepath": base + ".missing"}, "Load failed")
	mustFail(t, ts.handleSaveDeck, map[string]any{"deck_name": "nope", "filepath": base}, "does not exist")
}

func TestLoadLibrary(t *testing.T) {
	ts, _ := newToolset(nil)
	path := filepath.Join(t.TempDir(), "decks.yaml")
	if err := os.WriteFile(path, []byte("decks:\n  - name: a\n    list: \"4 Opt\"\n  - name: b\n    cards:\n      - {name: Island, count: 3}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustOK(t, ts.handleLoadLibrary, map[string]any{"filepath": path})
	if decks := out["decks"].([]any); len(decks) != 2 || decks[0] != "a" {
		t.Errorf("decks = %v", decks)
	}
	out = mustOK(t, ts.handleGetDeck, map[string]any{"name": "b"})
	if out["totalCards"] != 3.0 {
		t.Errorf("deck b = %v", out)
	}
}

func TestHypergeometric(t *testing.T) {
	ts, _ := newToolset(nil)

	out := mustOK(t, ts.handleHypergeometric, map[string]any{"deck_size": 60.0, "successes_in_deck": 4.0, "cards_drawn": 7.0})
	if out["probability_percentage"] != 39.95 {
		t.Errorf("at least = %v", out["probability_percentage"])
	}
	params := out["parameters"].(map[string]any)
	if params["calculation_type"] != "at_least" || params["want_at_least"] != 1.0 {
		t.Errorf("params = %v", params)
	}

	out = mustOK(t, ts.handleHypergeometric, map[string]any{"deck_size": 60.0, "successes_in_deck": 4.0, "cards_drawn": 7.0, "want_exactly": 0.0})
	if out["probability_percentage"] != 60.05 {
		t.Errorf("exactly = %v", out["probability_percentage"])
	}
	if out["parameters"].(map[string]any)["calculation_type"] != "exactly" {
		t.Errorf("params = %v", out["parameters"])
	}

	mustFail(t, ts.handleHypergeometric, map[string]any{"cards_drawn": 7.0}, "must be >= 0")
}

func TestConsistency(t *testing.T) {
	ts, _ := newToolset(nil)
	ts.Store.Put("d", nil)
	mustOK(t, ts.handleAddCards, map[string]any{"deck_name": "d", "card_name": "Sol Ring", "quantity": 1.0})
	mustOK(t, ts.handleAddCards, map[string]any{"deck_name": "d", "card_name": "Island", "quantity": 99.0})

	out := mustOK(t, ts.handleConsistency, map[string]any{
		"deck_name":   "d",
		"card_groups": map[string]any{"ramp": []any{"Sol Ring"}},
		"scenarios":   []any{"opening_hand"},
	})
	if out["deck_size"] != 100.0 {
		t.Errorf("deck_size = %v", out["deck_size"])
	}
	matrix := out["probability_matrix"].(map[string]any)
	if got := matrix["opening_hand"].(map[string]any)["ramp"]; got != 7.0 {
		t.Errorf("opening_hand ramp = %v", got)
	}

	out = mustOK(t, ts.handleConsistency, map[string]any{
		"deck_name":   "d",
		"card_groups": map[string]any{"ramp": []any{"Sol Ring"}, "lands": []any{}},
		"scenarios":   []any{"opening_hand"},
	})
	row := out["probability_matrix"].(map[string]any)["opening_hand"].(map[string]any)
	if got, ok := row["lands"]; !ok || got != 0.0 {
		t.Errorf("empty group in matrix = %v (present %v)", got, ok)
	}
	if _, ok := out["card_groups"].(map[string]any)["lands"]; !ok {
		t.Errorf("empty group dropped from card_groups: %v", out["card_groups"])
	}

	mustFail(t, ts.handleConsistency, map[string]any{"deck_name": "d", "card_groups": map[string]any{}}, "at least one group")
	mustFail(t, ts.handleConsistency, map[string]any{"deck_name": "d", "card_groups": map[string]any{"x": "Sol Ring"}}, "array")
	mustFail(t, ts.handleConsistency, map[string]any{"deck_name": "nope", "card_groups": map[string]any{"x": []any{}}}, "does not exist")
}

func TestStringListMapKeepsEmptyGroups(t *testing.T) {
	got, err := stringListMap(map[string]any{"ramp": []any{"Sol Ring"}, "lands": []any{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2: %v", len(got), got)
	}
	if lands, ok := got["lands"]; !ok || lands == nil || len(lands) != 0 {
		t.Errorf("lands = %#v, %v", lands, ok)
	}
}
