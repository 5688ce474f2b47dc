// Package analytics computes draw probabilities for decks.
package analytics

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
)

// OpeningHand is the number of cards in a starting hand.
const OpeningHand = 7

// DefaultScenarios are analyzed when the caller names none.
var DefaultScenarios = []string{"opening_hand", "turn_3", "turn_5", "turn_7"}

var (
	turnScenario = regexp.MustCompile(`^turn_(\d+)$`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// Choose returns the binomial coefficient C(n, k), or 0 when k is out of
// range.
func Choose(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for i := 0; i < k; i++ {
		r = r * float64(n-i) / float64(i+1)
	}
	return r
}

// Hypergeometric is the probability of drawing exactly k successes in n
// draws without replacement from a population of N holding K successes.
func Hypergeometric(N, K, n, k int) float64 {
	if k > n || k > K || n > N || k < 0 {
		return 0
	}
	d := Choose(N, n)
	if d == 0 {
		return 0
	}
	return Choose(K, k) * Choose(N-K, n-k) / d
}

// AtLeast is the probability of drawing k or more successes.
func AtLeast(N, K, n, k int) float64 {
	if k < 0 {
		k = 0
	}
	p := 0.0
	for i := k; i <= min(n, K); i++ {
		p += Hypergeometric(N, K, n, i)
	}
	return math.Min(p, 1)
}

// Percent turns a probability into a percentage rounded to two decimals.
func Percent(p float64) float64 {
	return math.Round(p*10_000) / 100
}

// DrawCount is how many cards have been seen by a scenario: opening_hand is
// 7, turn_N is 7+N, any other name uses the digits it contains, falling
// back to 7.
func DrawCount(scenario string) int {
	scenario = strings.ToLower(strings.TrimSpace(scenario))
	if scenario == "opening_hand" {
		return OpeningHand
	}
	if m := turnScenario.FindStringSubmatch(scenario); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return OpeningHand + n
		}
	}
	if n, err := strconv.Atoi(nonDigit.ReplaceAllString(scenario, "")); err == nil && n > 0 {
		return n
	}
	return OpeningHand
}

// Report is the result of Consistency. Matrix maps scenario, then group, to
// a percentage.
type Report struct {
	DeckSize    int                           `json:"deck_size"`
	Matrix      map[string]map[string]float64 `json:"probability_matrix"`
	Groups      map[string][]string           `json:"card_groups"`
	Scenarios   []string                      `json:"scenarios"`
	WantAtLeast map[string]int                `json:"want_at_least"`
}

// Consistency computes, for every scenario and card group, the chance of
// having seen at least wantAtLeast[group] (default 1) cards of the group.
// Group members are matched to deck entries by name; unknown names count 0.
func Consistency(deck []card.Card, groups map[string][]string, scenarios []string, wantAtLeast map[string]int) Report {
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios
	}
	if wantAtLeast == nil {
		wantAtLeast = map[string]int{}
	}

	size := card.Total(deck)
	successes := make(map[string]int, len(groups))
	for group, names := range groups {
		for _, name := range names {
			if c, ok := deckstore.Find(deck, name); ok {
				successes[group] += c.Quantity()
			}
		}
	}

	matrix := make(map[string]map[string]float64, len(scenarios))
	for _, sc := range scenarios {
		drawn := DrawCount(sc)
		row := make(map[string]float64, len(groups))
		for group := range groups {
			want := wantAtLeast[group]
			if want <= 0 {
				want = 1
			}
			row[group] = Percent(AtLeast(size, successes[group], drawn, want))
		}
		matrix[sc] = row
	}

	return Report{
		DeckSize:    size,
		Matrix:      matrix,
		Groups:      groups,
		Scenarios:   scenarios,
		WantAtLeast: wantAtLeast,
	}
}
