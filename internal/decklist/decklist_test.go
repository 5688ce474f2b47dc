package decklist

import (
	"context"
	"testing"

	"github.com/peterkuimelis/mtgdeck/internal/card"
)

func assertCards(t *testing.T, got, want []card.Card) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d cards %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("card %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseMixedDecklist(t *testing.T) {
	deck := `
        1 Atraxa, Praetors' Voice
        1 Imperial Seal
        1 Jeweled Lotus (CMR) 319
        1 Lim-Dûl's Vault
        1 Llanowar Elves (M12) 182
        3 Brainstorm #Card Advantage #Draw
    `
	assertCards(t, Parse(deck), []card.Card{
		card.New("Atraxa, Praetors' Voice", 1, "", ""),
		card.New("Imperial Seal", 1, "", ""),
		card.New("Jeweled Lotus", 1, "CMR", "319"),
		card.New("Lim-Dûl's Vault", 1, "", ""),
		card.New("Llanowar Elves", 1, "M12", "182"),
		card.New("Brainstorm", 3, "", "", "card advantage", "draw"),
	})
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		name string
		deck string
		want []card.Card
	}{
		{
			"bang comment",
			"//!Commander\n1 Atraxa, Praetors' Voice",
			[]card.Card{card.New("Atraxa, Praetors' Voice", 1, "", "", "commander")},
		},
		{
			"comment merges with inline tags",
			"// Card Advantage\n3 Brainstorm #Draw #Card Advantage",
			[]card.Card{card.New("Brainstorm", 3, "", "", "card advantage", "draw")},
		},
		{
			"comment replaced by next comment",
			"// Tutors\n1 Imperial Seal\n// Ramp\n1 Cultivate",
			[]card.Card{
				card.New("Imperial Seal", 1, "", "", "tutors"),
				card.New("Cultivate", 1, "", "", "ramp"),
			},
		},
		{
			"comment carries over several entries",
			"# Lands\n1 Forest\n1 Island\n\n1 Swamp",
			[]card.Card{
				card.New("Forest", 1, "", "", "lands"),
				card.New("Island", 1, "", "", "lands"),
				card.New("Swamp", 1, "", "", "lands"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCards(t, Parse(tt.deck), tt.want)
		})
	}
}

func TestUnparsableLinesAreSkipped(t *testing.T) {
	clean := "1 Sol Ring\n// Ramp\n1 Cultivate"
	noisy := "Deck\nnot a card\n1 Sol Ring\n!!!\n// Ramp\n1 Cultivate\nSideboard:"
	assertCards(t, Parse(noisy), Parse(clean))
}

func TestZeroQuantityBecomesOne(t *testing.T) {
	assertCards(t, Parse("0 Island"), []card.Card{card.New("Island", 1, "", "")})
}

func TestSourceRejectsURLs(t *testing.T) {
	var src Source
	for _, in := range []string{
		"https://www.archidekt.com/decks/1300410/",
		"https://deckstats.net/decks/30198/1297260-feather-the-redeemed",
		"https://www.moxfield.com/decks/7CBqQtCVKES6e49vKXfIBQ",
		"https://tappedout.net/mtg-decks/food-chain-sliver/",
		"https://www.mtggoldfish.com/deck/3862693",
		"",
		"// only a comment",
	} {
		if src.CanHandle(in) {
			t.Errorf("CanHandle(%q) = true, want false", in)
		}
		cards, err := src.ParseDeck(context.Background(), in)
		if err != nil || cards != nil {
			t.Errorf("ParseDeck(%q) = %v, %v; want nil, nil", in, cards, err)
		}
	}
}

func TestSourceDetectionMatchesParse(t *testing.T) {
	var src Source
	in := "garbage\n2 Opt"
	if !src.CanHandle(in) {
		t.Fatal("expected CanHandle to accept a deck with one entry")
	}
	cards, err := src.ParseDeck(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	assertCards(t, cards, []card.Card{card.New("Opt", 2, "", "")})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		cards []card.Card
		want  string
	}{
		{"empty", nil, ""},
		{"bare", []card.Card{card.New("Lightning Bolt", 4, "", ""), card.New("Counterspell", 2, "", "")},
			"4 Lightning Bolt\n2 Counterspell"},
		{"set clause", []card.Card{card.New("Jeweled Lotus", 1, "cmr", "319")},
			"1 Jeweled Lotus (CMR) 319"},
		{"extension without number", []card.Card{card.New("Sol Ring", 1, "C21", "")},
			"1 Sol Ring"},
		{"tags", []card.Card{card.New("Brainstorm", 3, "", "", "card advantage", "draw")},
			"3 Brainstorm #Card Advantage #Draw"},
		{"set and tags", []card.Card{card.New("Jeweled Lotus", 1, "CMR", "319", "ramp", "artifact")},
			"1 Jeweled Lotus (CMR) 319 #Ramp #Artifact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.cards); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		"1 Atraxa, Praetors' Voice\n1 Imperial Seal\n1 Jeweled Lotus (CMR) 319\n3 Brainstorm #Card Advantage #Draw",
		"//! Commander\n1 Kenrith, the Returned King (ELD) 303\n// Ramp\n1 Sol Ring (C21) 263 #Artifact\n1 Cultivate",
		"4x Lightning Bolt #burn\n20 Mountain",
		"1 Barkchannel Pathway // Tidechannel Pathway (KHM) 251",
	} {
		first := Parse(text)
		if len(first) == 0 {
			t.Fatalf("fixture did not parse: %q", text)
		}
		assertCards(t, Parse(Format(first)), first)
	}
}

func TestRoundTripUpperCasesSetCode(t *testing.T) {
	text := "1 Lightning Bolt (m10) 146"
	first := Parse(text)
	formatted := Format(first)
	if formatted != "1 Lightning Bolt (M10) 146" {
		t.Fatalf("Format = %q", formatted)
	}

	second := Parse(formatted)
	if second[0].Extension() != "M10" || first[0].Extension() != "m10" {
		t.Fatalf("extensions %q then %q", first[0].Extension(), second[0].Extension())
	}
	if second[0].Equal(first[0]) {
		t.Error("lower-case set code unexpectedly survived the round trip")
	}
	// the canonical text is a fixed point
	assertCards(t, Parse(Format(second)), second)
}
