package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/mtgdeck/internal/analytics"
	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

// Toolset is the state shared by the deck tools: one deck store per server
// process.
type Toolset struct {
	Store    *deckstore.Store
	Registry *source.Registry
	Client   *fetch.Client
}

// RegisterTools adds all deck tools to the MCP server.
func RegisterTools(s *server.MCPServer, ts *Toolset) {
	s.AddTool(createDeckTool(), ts.handleCreateDeck)
	s.AddTool(listDecksTool(), ts.handleListDecks)
	s.AddTool(getDeckTool(), ts.handleGetDeck)
	s.AddTool(addCardsTool(), ts.handleAddCards)
	s.AddTool(removeCardsTool(), ts.handleRemoveCards)
	s.AddTool(clearDeckTool(), ts.handleClearDeck)
	s.AddTool(deleteDeckTool(), ts.handleDeleteDeck)
	s.AddTool(validateSourceTool(), ts.handleValidateSource)
	s.AddTool(parseDeckTool(), ts.handleParseDeck)
	s.AddTool(parseDeckToSlotTool(), ts.handleParseDeckToSlot)
	s.AddTool(formatDeckTool(), ts.handleFormatDeck)
	s.AddTool(saveDeckTool(), ts.handleSaveDeck)
	s.AddTool(loadDeckTool(), ts.handleLoadDeck)
	s.AddTool(loadLibraryTool(), ts.handleLoadLibrary)
	s.AddTool(hypergeometricTool(), ts.handleHypergeometric)
	s.AddTool(consistencyTool(), ts.handleConsistency)
}

// --- Tool definitions ---

func createDeckTool() mcp.Tool {
	return mcp.NewTool("create_deck",
		mcp.WithDescription("Create a new empty MTG deck with the given name"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name for the new deck")),
	)
}

func listDecksTool() mcp.Tool {
	return mcp.NewTool("list_decks",
		mcp.WithDescription("List all current deck names and their card counts"),
	)
}

func getDeckTool() mcp.Tool {
	return mcp.NewTool("get_deck",
		mcp.WithDescription("Get the contents of a specific deck"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the deck to retrieve")),
	)
}

func addCardsTool() mcp.Tool {
	return mcp.NewTool("add_cards",
		mcp.WithDescription("Add cards to a deck. If the card already exists, quantities will be merged."),
		mcp.WithString("deck_name", mcp.Required(), mcp.Description("Name of the deck to add cards to")),
		mcp.WithString("card_name", mcp.Required(), mcp.Description("Name of the card to add")),
		mcp.WithNumber("quantity", mcp.DefaultNumber(1), mcp.Description("Number of copies to add")),
	)
}

func removeCardsTool() mcp.Tool {
	return mcp.NewTool("remove_cards",
		mcp.WithDescription("Remove cards from a deck. If quantity is not specified, removes all copies."),
		mcp.WithString("deck_name", mcp.Required(), mcp.Description("Name of the deck to remove cards from")),
		mcp.WithString("card_name", mcp.Required(), mcp.Description("Name of the card to remove")),
		mcp.WithNumber("quantity", mcp.Description("Number of copies to remove. If not specified, removes all copies.")),
	)
}

func clearDeckTool() mcp.Tool {
	return mcp.NewTool("clear_deck",
		mcp.WithDescription("Remove all cards from a deck, leaving it empty"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the deck to clear")),
	)
}

func deleteDeckTool() mcp.Tool {
	return mcp.NewTool("delete_deck",
		mcp.WithDescription("Delete a deck entirely"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the deck to delete")),
	)
}

func validateSourceTool() mcp.Tool {
	return mcp.NewTool("validate_mtg_source",
		mcp.WithDescription("Check if a source (deck URL or decklist text) can be parsed as an MTG deck. Read-only."),
		mcp.WithString("source", mcp.Required(), mcp.Description("URL or text content to validate")),
	)
}

func parseDeckTool() mcp.Tool {
	return mcp.NewTool("parse_mtg_deck",
		mcp.WithDescription("Parse an MTG deck from a URL or text content, returning the cards without storing them. "+
			"Supported sites: aetherhub, archidekt, deckstats, moxfield, mtggoldfish, mtgjson, scryfall, tappedout, tcgplayer. "+
			"Any other URL is downloaded and read as a plain decklist."),
		mcp.WithString("source", mcp.Required(), mcp.Description("URL or text content to parse")),
	)
}

func parseDeckToSlotTool() mcp.Tool {
	return mcp.NewTool("parse_mtg_deck_to_slot",
		mcp.WithDescription("Parse an MTG deck from a URL or text content directly into a named deck slot"),
		mcp.WithString("source", mcp.Required(), mcp.Description("URL or text content to parse")),
		mcp.WithString("deck_name", mcp.Required(), mcp.Description("Name for the deck slot to store the parsed cards")),
		mcp.WithBoolean("merge", mcp.DefaultBool(false), mcp.Description("If true, merge with existing deck. If false, replace existing deck.")),
	)
}

func formatDeckTool() mcp.Tool {
	return mcp.NewTool("format_mtg_deck",
		mcp.WithDescription("Get the readable decklist text of a deck"),
		mcp.WithString("deck_name", mcp.Required(), mcp.Description("Name of the deck to format")),
	)
}

func saveDeckTool() mcp.Tool {
	return mcp.NewTool("save_mtg_deck",
		mcp.WithDescription("Save a deck to local files in both JSON and readable text formats"),
		mcp.WithString("deck_name", mcp.Required(), mcp.Description("Name of the deck to save")),
		mcp.WithString("filepath", mcp.Required(), mcp.Description("Path where to save the deck (without extension)")),
	)
}

func loadDeckTool() mcp.Tool {
	return mcp.NewTool("load_mtg_deck",
		mcp.WithDescription("Load a deck from a JSON file written by save_mtg_deck into a deck slot"),
		mcp.WithString("filepath", mcp.Required(), mcp.Description("Path to the JSON file to load")),
		mcp.WithString("deck_name", mcp.Description("Name for the deck slot. If not provided, uses the saved deck name.")),
	)
}

func loadLibraryTool() mcp.Tool {
	return mcp.NewTool("load_deck_library",
		mcp.WithDescription("Load every deck of a YAML deck library file into deck slots, replacing slots with the same names"),
		mcp.WithString("filepath", mcp.Required(), mcp.Description("Path to the YAML library (decks: [{name, cards, list}])")),
	)
}

func hypergeometricTool() mcp.Tool {
	return mcp.NewTool("calculate_hypergeometric",
		mcp.WithDescription("Calculate probability using hypergeometric distribution for MTG deck consistency analysis"),
		mcp.WithNumber("deck_size", mcp.DefaultNumber(100), mcp.Description("Total number of cards in deck")),
		mcp.WithNumber("successes_in_deck", mcp.Required(), mcp.Description("Number of target cards in deck")),
		mcp.WithNumber("cards_drawn", mcp.Required(), mcp.Description("Number of cards drawn")),
		mcp.WithNumber("want_at_least", mcp.DefaultNumber(1), mcp.Description("Minimum number of target cards wanted")),
		mcp.WithNumber("want_exactly", mcp.Description("Exact number of target cards wanted (overrides want_at_least)")),
	)
}

func consistencyTool() mcp.Tool {
	return mcp.NewTool("analyze_consistency",
		mcp.WithDescription("Analyze probability of seeing key card groups across multiple game scenarios"),
		mcp.WithString("deck_name", mcp.Required(), mcp.Description("Name of the deck to analyze")),
		mcp.WithObject("card_groups", mcp.Required(), mcp.Description("Groups of cards to analyze (group_name -> [card_names])")),
		mcp.WithArray("scenarios", mcp.WithStringItems(),
			mcp.Description("Scenarios to analyze: opening_hand, turn_N, or any name containing a draw count. Defaults to opening_hand, turn_3, turn_5, turn_7.")),
		mcp.WithObject("want_at_least", mcp.Description("Minimum cards wanted per group (group_name -> count)")),
	)
}

// --- Tool handlers ---

func (ts *Toolset) handleCreateDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("name must not be empty"), nil
	}
	if err := ts.Store.Create(name); err != nil {
		return storeError(err), nil
	}
	return respond(successResponse{Success: true, Message: fmt.Sprintf("Created empty deck %q", name)}), nil
}

func (ts *Toolset) handleListDecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(map[string]any{"decks": ts.Store.List()}), nil
}

func (ts *Toolset) handleGetDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	cards, err := ts.Store.Get(name)
	if err != nil {
		return storeError(err), nil
	}
	return respond(newDeckView(name, cards)), nil
}

func (ts *Toolset) handleAddCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := request.GetString("deck_name", "")
	name := strings.TrimSpace(request.GetString("card_name", ""))
	qty := request.GetInt("quantity", 1)
	if name == "" {
		return mcp.NewToolResultError("card_name must not be empty"), nil
	}
	if qty < 1 {
		return mcp.NewToolResultErrorf("quantity must be >= 1, got %d", qty), nil
	}

	total, err := ts.Store.AddCard(deck, name, qty)
	if err != nil {
		return storeError(err), nil
	}
	return respond(successResponse{
		Success:    true,
		Message:    fmt.Sprintf("Added %d %s to deck %q", qty, name, deck),
		TotalCards: &total,
	}), nil
}

func (ts *Toolset) handleRemoveCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := request.GetString("deck_name", "")
	name := request.GetString("card_name", "")
	qty := request.GetInt("quantity", 0)
	if qty < 0 {
		return mcp.NewToolResultErrorf("quantity must be >= 0, got %d", qty), nil
	}

	removed, total, err := ts.Store.RemoveCard(deck, name, qty)
	if err != nil {
		return storeError(err), nil
	}
	msg := fmt.Sprintf("Removed %d %s from deck %q", removed, name, deck)
	if cards, err := ts.Store.Get(deck); err == nil {
		if _, still := deckstore.Find(cards, name); !still {
			msg = fmt.Sprintf("Removed all %d copies of %s from deck %q", removed, name, deck)
		}
	}
	return respond(successResponse{Success: true, Message: msg, TotalCards: &total}), nil
}

func (ts *Toolset) handleClearDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if _, err := ts.Store.Clear(name); err != nil {
		return storeError(err), nil
	}
	return respond(successResponse{Success: true, Message: fmt.Sprintf("Cleared deck %q", name)}), nil
}

func (ts *Toolset) handleDeleteDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if err := ts.Store.Delete(name); err != nil {
		return storeError(err), nil
	}
	return respond(successResponse{Success: true, Message: fmt.Sprintf("Deleted deck %q", name)}), nil
}

func (ts *Toolset) handleValidateSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(ts.validate(ctx, request.GetString("source", ""))), nil
}

func (ts *Toolset) handleParseDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := ts.parse(ctx, request.GetString("source", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Parse failed: %v", err), nil
	}
	return respond(parseResponse{
		Success:    true,
		Cards:      res.Cards,
		CardCount:  len(res.Cards),
		TotalCards: card.Total(res.Cards),
		SourceType: res.SourceType,
		Source:     res.Source,
	}), nil
}

func (ts *Toolset) handleParseDeckToSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deck := strings.TrimSpace(request.GetString("deck_name", ""))
	merge := request.GetBool("merge", false)
	if deck == "" {
		return mcp.NewToolResultError("deck_name must not be empty"), nil
	}

	res, err := ts.parse(ctx, request.GetString("source", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Parse failed: %v", err), nil
	}

	msg := fmt.Sprintf("Parsed deck into slot %q", deck)
	var final []card.Card
	if merge {
		final = ts.Store.Merge(deck, res.Cards)
		msg += " (merged)"
	} else {
		ts.Store.Put(deck, res.Cards)
		final = res.Cards
	}
	return respond(parseResponse{
		Success:    true,
		Message:    msg,
		CardCount:  len(final),
		TotalCards: card.Total(final),
		SourceType: res.SourceType,
		Source:     res.Source,
	}), nil
}

func (ts *Toolset) handleFormatDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("deck_name", "")
	cards, err := ts.Store.Get(name)
	if err != nil {
		return storeError(err), nil
	}
	return respond(formatResponse{
		DeckName:      name,
		FormattedText: decklist.Format(cards),
		CardCount:     len(cards),
		TotalCards:    card.Total(cards),
	}), nil
}

func (ts *Toolset) handleSaveDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("deck_name", "")
	path := strings.TrimSpace(request.GetString("filepath", ""))
	if path == "" {
		return mcp.NewToolResultError("filepath must not be empty"), nil
	}
	files, err := ts.Store.Save(name, path)
	if errors.Is(err, deckstore.ErrDeckNotFound) {
		return storeError(err), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorf("Save failed: %v", err), nil
	}
	return respond(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Saved deck %q to %s", name, strings.Join(files, " and ")),
		"files":   files,
	}), nil
}

func (ts *Toolset) handleLoadDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("filepath", "")
	res, err := ts.Store.Load(path, strings.TrimSpace(request.GetString("deck_name", "")))
	if err != nil {
		return mcp.NewToolResultErrorf("Load failed: %v", err), nil
	}
	return respond(loadResponse{
		Success:    true,
		Message:    fmt.Sprintf("Loaded deck into slot %q", res.Name),
		LoadResult: res,
	}), nil
}

func (ts *Toolset) handleLoadLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("filepath", "")
	names, err := ts.Store.LoadLibrary(path)
	if err != nil {
		return mcp.NewToolResultErrorf("Load failed: %v", err), nil
	}
	return respond(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Loaded %d decks from %s", len(names), path),
		"decks":   names,
	}), nil
}

func (ts *Toolset) handleHypergeometric(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	size := request.GetInt("deck_size", 100)
	successes := request.GetInt("successes_in_deck", -1)
	drawn := request.GetInt("cards_drawn", -1)
	atLeast := request.GetInt("want_at_least", 1)
	if size < 0 || successes < 0 || drawn < 0 {
		return mcp.NewToolResultError("deck_size, successes_in_deck and cards_drawn must be >= 0"), nil
	}

	calc := "at_least"
	want := atLeast
	var p float64
	if _, ok := request.GetArguments()["want_exactly"]; ok {
		calc = "exactly"
		want = request.GetInt("want_exactly", 0)
		p = analytics.Hypergeometric(size, successes, drawn, want)
	} else {
		p = analytics.AtLeast(size, successes, drawn, atLeast)
	}

	return respond(hypergeometricResponse{
		Success:    true,
		Percentage: analytics.Percent(p),
		Decimal:    p,
		Parameters: hypergeometricParams{
			DeckSize:        size,
			SuccessesInDeck: successes,
			CardsDrawn:      drawn,
			WantAtLeast:     want,
			CalculationType: calc,
		},
	}), nil
}

func (ts *Toolset) handleConsistency(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("deck_name", "")
	cards, err := ts.Store.Get(name)
	if err != nil {
		return storeError(err), nil
	}

	args := request.GetArguments()
	groups, err := stringListMap(args["card_groups"])
	if err != nil {
		return mcp.NewToolResultErrorf("card_groups: %v", err), nil
	}
	if len(groups) == 0 {
		return mcp.NewToolResultError("card_groups must name at least one group"), nil
	}
	want, err := intMap(args["want_at_least"])
	if err != nil {
		return mcp.NewToolResultErrorf("want_at_least: %v", err), nil
	}
	scenarios := request.GetStringSlice("scenarios", nil)

	report := analytics.Consistency(cards, groups, scenarios, want)
	return respond(consistencyResponse{Success: true, DeckName: name, Report: report}), nil
}
