package decklist

import (
	"slices"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Line
	}{
		{"bare entry", "1 Lightning Bolt", Line{Quantity: 1, Name: "Lightning Bolt"}},
		{"set entry", "1 Lightning Bolt (M10) 146", Line{Quantity: 1, Name: "Lightning Bolt", Extension: "M10", Number: "146"}},
		{"bare entry with tags", "3 Brainstorm #Card Advantage #Draw",
			Line{Quantity: 3, Name: "Brainstorm", Tags: []string{"Card Advantage", "Draw"}}},
		{"set entry with tags", "1 Jeweled Lotus (CMR) 319 #Ramp #Artifact",
			Line{Quantity: 1, Name: "Jeweled Lotus", Extension: "CMR", Number: "319", Tags: []string{"Ramp", "Artifact"}}},
		{"x suffix", "4x Counterspell", Line{Quantity: 4, Name: "Counterspell"}},
		{"apostrophe and comma", "1 Atraxa, Praetors' Voice", Line{Quantity: 1, Name: "Atraxa, Praetors' Voice"}},
		{"accented letters", "1 Lim-Dûl's Vault", Line{Quantity: 1, Name: "Lim-Dûl's Vault"}},
		{"double faced", "1 Barkchannel Pathway // Tidechannel Pathway",
			Line{Quantity: 1, Name: "Barkchannel Pathway // Tidechannel Pathway"}},
		{"high quantity", "46 Mountain (4ED) 373", Line{Quantity: 46, Name: "Mountain", Extension: "4ED", Number: "373"}},
		{"extra whitespace", "  1   Lightning Bolt   (M10)   146   #Instant  ",
			Line{Quantity: 1, Name: "Lightning Bolt", Extension: "M10", Number: "146", Tags: []string{"Instant"}}},
		{"bang tag", "1 Sol Ring #!Ramp", Line{Quantity: 1, Name: "Sol Ring", Tags: []string{"Ramp"}}},
		{"adjacent tags", "1 Sol Ring #Ramp#Rock", Line{Quantity: 1, Name: "Sol Ring", Tags: []string{"Ramp", "Rock"}}},
		{"slash comment", "// Card Advantage", Line{Comment: "Card Advantage"}},
		{"bang comment", "//! Commander", Line{Comment: "Commander"}},
		{"bang comment no space", "//!Commander", Line{Comment: "Commander"}},
		{"hash comment", "# Burn Spells", Line{Comment: "Burn Spells"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.in)
			if !ok {
				t.Fatalf("ParseLine(%q) did not match", tt.in)
			}
			if got.Quantity != tt.want.Quantity || got.Name != tt.want.Name ||
				got.Extension != tt.want.Extension || got.Number != tt.want.Number ||
				got.Comment != tt.want.Comment || !slices.Equal(got.Tags, tt.want.Tags) {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLineClampsHugeQuantity(t *testing.T) {
	for _, in := range []string{"99999999999999999999 Mountain", "3000000000x Mountain"} {
		got, ok := ParseLine(in)
		if !ok {
			t.Fatalf("ParseLine(%q) did not match", in)
		}
		if got.Quantity != MaxQuantity || got.Name != "Mountain" {
			t.Errorf("ParseLine(%q) = %+v", in, got)
		}
	}
	if cards := Parse("99999999999999999999 Mountain\n1 Island"); len(cards) != 2 {
		t.Errorf("Parse kept %d cards, want 2", len(cards))
	}
}

func TestParseLineRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"invalid line",
		"not a card",
		"//",
		"1 Lightning Bolt (M10)",
		"1 Lightning Bolt #",
		"https://www.moxfield.com/decks/7CBqQtCVKES6e49vKXfIBQ",
		"Sideboard:",
	} {
		if l, ok := ParseLine(in); ok {
			t.Errorf("ParseLine(%q) = %+v, expected no match", in, l)
		}
	}
}

func TestParseLineCommentBeforeQuantity(t *testing.T) {
	l, ok := ParseLine("# 2 Lands")
	if !ok || !l.IsComment() || l.Comment != "2 Lands" {
		t.Fatalf("expected a comment, got %+v (ok=%v)", l, ok)
	}
}
