// Package source dispatches a deck reference (a URL or raw decklist text)
// to the first source able to read it.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterkuimelis/mtgdeck/internal/card"
)

var (
	// ErrUnsupported is returned when no source claims the input.
	ErrUnsupported = errors.New("no source can handle input")
	// ErrNoCards is returned when the claiming source produced no cards.
	ErrNoCards = errors.New("source produced no cards")
)

// Source reads decks of one kind: a deck site's URLs, or decklist text.
type Source interface {
	Name() string
	// CanHandle reports whether src looks like input this source reads.
	// It must not do any I/O.
	CanHandle(src string) bool
	// ParseDeck reads src. A nil result with a nil error means "no deck".
	ParseDeck(ctx context.Context, src string) ([]card.Card, error)
}

// Registry tries sources in declared order. Only the first source whose
// CanHandle accepts an input is asked to parse it: a later source is never
// tried as a fallback, ambiguous inputs are settled by ordering.
type Registry struct {
	sources []Source
	logger  *slog.Logger
}

// NewRegistry keeps sources in the given order.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources, logger: slog.Default()}
}

// WithLogger sets the logger used for dispatch records.
func (r *Registry) WithLogger(l *slog.Logger) *Registry {
	r.logger = l
	return r
}

// Sources returns the sources in dispatch order.
func (r *Registry) Sources() []Source {
	return append([]Source(nil), r.sources...)
}

// Resolve returns the source that would handle src.
func (r *Registry) Resolve(src string) (Source, bool) {
	for _, s := range r.sources {
		if s.CanHandle(src) {
			return s, true
		}
	}
	return nil, false
}

// CanHandle reports whether any source claims src. It does not promise that
// ParseDeck will succeed.
func (r *Registry) CanHandle(src string) bool {
	_, ok := r.Resolve(src)
	return ok
}

// ParseDeck runs the first claiming source on src.
func (r *Registry) ParseDeck(ctx context.Context, src string) ([]card.Card, error) {
	_, cards, err := r.Parse(ctx, src)
	return cards, err
}

// Parse is ParseDeck that also returns the claiming source, which is nil
// only when no source claims src. Sources are consulted once.
func (r *Registry) Parse(ctx context.Context, src string) (Source, []card.Card, error) {
	s, ok := r.Resolve(src)
	if !ok {
		return nil, nil, ErrUnsupported
	}
	r.logger.Debug("dispatching deck source", "source", s.Name())

	cards, err := s.ParseDeck(ctx, src)
	if err != nil {
		r.logger.Warn("deck source failed", "source", s.Name(), "error", err)
		return s, nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	if len(cards) == 0 {
		r.logger.Warn("deck source returned no cards", "source", s.Name())
		return s, nil, fmt.Errorf("%s: %w", s.Name(), ErrNoCards)
	}
	return s, cards, nil
}
