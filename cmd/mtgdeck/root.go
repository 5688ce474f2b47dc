package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/peterkuimelis/mtgdeck/internal/config"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/log"
	"github.com/peterkuimelis/mtgdeck/internal/sites"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

// app carries state shared by the subcommands.
type app struct {
	stdin    io.Reader
	registry *source.Registry

	configPath string
	logLevel   string
	jsonOut    bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "mtgdeck",
		Short: "Parse and format Magic: The Gathering decklists",
		Long: `mtgdeck reads decklists from plain text or from deck sites such as Moxfield,
Archidekt and Scryfall, and writes them back as a canonical text decklist.

A source is either a URL or decklist text. When no source argument is given
(or it is "-"), the source is read from standard input.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.GetConfigFilePath(), "path to the config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(newParseCmd(a), newValidateCmd(a), newFormatCmd(a), newSourcesCmd(a))
	return root
}

// setup loads config, installs the logger and builds the registry unless
// one was provided.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(a.configPath, nil)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	logger := log.Setup(cfg.LogLevel, cmd.ErrOrStderr())

	if a.registry == nil {
		a.registry = sites.NewRegistry(fetch.New(cfg.FetchOptions())).WithLogger(logger)
	}
	return nil
}

// readSource returns the source named by args, reading stdin for "-" or no
// argument. An interactive terminal on stdin is an error.
func (a *app) readSource(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no source given: pass a URL or decklist, or pipe one on stdin")
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	src := strings.TrimSpace(string(data))
	if src == "" {
		return "", errors.New("empty source")
	}
	return src, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
