package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

type parseOutput struct {
	Source     string      `json:"source"`
	Cards      []card.Card `json:"cards"`
	CardCount  int         `json:"cardCount"`
	TotalCards int         `json:"totalCards"`
}

type validateOutput struct {
	Valid  bool   `json:"valid"`
	Source string `json:"source,omitempty"`
}

type formatOutput struct {
	FormattedText string `json:"formatted_text"`
	CardCount     int    `json:"cardCount"`
	TotalCards    int    `json:"totalCards"`
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [source]",
		Short: "Parse a deck and list its cards",
		Long: `Parse resolves the source to the first deck source that claims it and prints
the resulting cards with their set, collector number and tags.

Examples:
  mtgdeck parse https://moxfield.com/decks/abc123
  mtgdeck parse "4 Lightning Bolt (M10) 146"
  cat deck.txt | mtgdeck parse --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readSource(args)
			if err != nil {
				return err
			}
			cards, claimed, err := a.parse(cmd, src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, parseOutput{
					Source:     claimed,
					Cards:      cards,
					CardCount:  len(cards),
					TotalCards: card.Total(cards),
				})
			}
			printCards(out, claimed, cards)
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [source]",
		Short: "Check whether a source can be parsed",
		Long: `Validate reports which deck source claims the input without fetching or
parsing it. It exits non-zero when no source claims the input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readSource(args)
			if err != nil {
				return err
			}
			s, ok := a.registry.Resolve(src)

			out := cmd.OutOrStdout()
			if a.jsonOut {
				res := validateOutput{Valid: ok}
				if ok {
					res.Source = s.Name()
				}
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else if ok {
				fmt.Fprintf(out, "%s source can be parsed by %s\n", color.GreenString("✔"), color.HiWhiteString("%s", s.Name()))
			}
			if !ok {
				return source.ErrUnsupported
			}
			return nil
		},
	}
}

func newFormatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "format [file]",
		Short: "Rewrite a decklist in canonical form",
		Long: `Format reads a decklist file (or stdin) and prints it back as canonical
decklist text, one "<qty> <name> (<SET>) <number> #<Tag>" line per card.
Section comments become tags on the cards that follow them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) > 0 && args[0] != "-" {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read %s: %w", args[0], err)
				}
				src = string(data)
			} else {
				var err error
				if src, err = a.readSource(nil); err != nil {
					return err
				}
			}

			cards, _, err := a.parse(cmd, src)
			if err != nil {
				return err
			}
			text := decklist.Format(cards)

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, formatOutput{
					FormattedText: text,
					CardCount:     len(cards),
					TotalCards:    card.Total(cards),
				})
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
}

func newSourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List deck sources in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			for _, s := range a.registry.Sources() {
				names = append(names, s.Name())
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, names)
			}
			for i, n := range names {
				fmt.Fprintf(out, "%2d. %s\n", i+1, n)
			}
			return nil
		},
	}
}

// parse runs src through the registry and names the claiming source.
func (a *app) parse(cmd *cobra.Command, src string) ([]card.Card, string, error) {
	s, cards, err := a.registry.Parse(cmd.Context(), src)
	if s == nil {
		return nil, "", err
	}
	if err != nil {
		if errors.Is(err, source.ErrNoCards) {
			return nil, s.Name(), fmt.Errorf("%s found no cards in the source", s.Name())
		}
		return nil, s.Name(), err
	}
	return cards, s.Name(), nil
}

func printCards(w io.Writer, claimed string, cards []card.Card) {
	fmt.Fprintf(w, "%s %s\n", color.CyanString("Source:"), color.HiWhiteString("%s", claimed))
	for _, c := range cards {
		line := fmt.Sprintf("%3d  %s", c.Quantity(), color.HiWhiteString("%s", c.Name()))
		if c.Extension() != "" {
			line += " " + color.YellowString("(%s)", strings.ToUpper(c.Extension()))
		}
		if c.Number() != "" {
			line += " " + c.Number()
		}
		if tags := c.SortedTags(); len(tags) > 0 {
			line += " " + color.MagentaString("[%s]", strings.Join(tags, ", "))
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d entries, %d cards\n", len(cards), card.Total(cards))
}
