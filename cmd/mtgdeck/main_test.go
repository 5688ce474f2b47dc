package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

const burn = `// Creatures
4 Goblin Guide (ZEN) 126
4 Monastery Swiftspear
// Spells
4 Lightning Bolt`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	a := &app{
		stdin:    strings.NewReader(stdin),
		registry: source.NewRegistry(decklist.Source{}),
	}
	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseText(t *testing.T) {
	out, err := run(t, "", "parse", burn)
	require.NoError(t, err)

	assert.Contains(t, out, "Source: decklist")
	assert.Contains(t, out, "  4  Goblin Guide (ZEN) 126 [creatures]")
	assert.Contains(t, out, "  4  Lightning Bolt [spells]")
	assert.Contains(t, out, "3 entries, 12 cards")
}

func TestParseStdinJSON(t *testing.T) {
	out, err := run(t, burn, "parse", "--json")
	require.NoError(t, err)

	var res parseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "decklist", res.Source)
	assert.Equal(t, 3, res.CardCount)
	assert.Equal(t, 12, res.TotalCards)
	assert.Equal(t, "zen", strings.ToLower(res.Cards[0].Extension()))
	assert.Equal(t, []string{"creatures"}, res.Cards[1].Tags())
}

func TestParseUnsupported(t *testing.T) {
	_, err := run(t, "", "parse", "nothing to see here")
	assert.ErrorIs(t, err, source.ErrUnsupported)
}

func TestEmptyStdin(t *testing.T) {
	_, err := run(t, "   \n", "parse")
	assert.EqualError(t, err, "empty source")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "", "validate", "1 Sol Ring")
	require.NoError(t, err)
	assert.Contains(t, out, "source can be parsed by decklist")

	out, err = run(t, "", "validate", "--json", "hello")
	assert.ErrorIs(t, err, source.ErrUnsupported)
	var res validateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Valid)
	assert.Empty(t, res.Source)
}

func TestFormatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burn.txt")
	require.NoError(t, os.WriteFile(path, []byte(burn), 0o644))

	out, err := run(t, "", "format", path)
	require.NoError(t, err)
	assert.Equal(t, "4 Goblin Guide (ZEN) 126 #Creatures\n"+
		"4 Monastery Swiftspear #Creatures\n"+
		"4 Lightning Bolt #Spells\n", out)

	_, err = run(t, "", "format", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatStdinJSON(t *testing.T) {
	out, err := run(t, "2x Opt\n1 Island", "format", "-", "--json")
	require.NoError(t, err)

	var res formatOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "2 Opt\n1 Island", res.FormattedText)
	assert.Equal(t, 3, res.TotalCards)
}

func TestSources(t *testing.T) {
	out, err := run(t, "", "sources")
	require.NoError(t, err)
	assert.Equal(t, " 1. decklist\n", out)
}
