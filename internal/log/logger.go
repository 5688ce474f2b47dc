package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Setup builds a text slog logger at the given level ("debug", "info",
// "warn", "error"; anything else is info) and installs it as the default.
func Setup(level string, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level, case-insensitively.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EventLogger is the interface for logging deck events.
type EventLogger interface {
	Log(event DeckEvent)
	Events() []DeckEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []DeckEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event DeckEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []DeckEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DeckEvent(nil), l.events...)
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []DeckEvent {
	var result []DeckEvent
	for _, e := range l.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() DeckEvent {
	events := l.Events()
	if len(events) == 0 {
		return DeckEvent{}
	}
	return events[len(events)-1]
}

// --- SlogLogger: forwards events to a slog.Logger ---

// SlogLogger numbers events and writes them to slog. It keeps nothing in
// memory, so long-running servers can log without bound.
type SlogLogger struct {
	seq    atomic.Int64
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Log(event DeckEvent) {
	event.Seq = int(l.seq.Add(1))
	level := slog.LevelInfo
	if event.Type == EventParseFailed {
		level = slog.LevelWarn
	}
	attrs := []any{"seq", event.Seq, "event", event.Type.String()}
	if event.Deck != "" {
		attrs = append(attrs, "deck", event.Deck)
	}
	if event.Source != "" {
		attrs = append(attrs, "source", event.Source)
	}
	if event.Cards > 0 {
		attrs = append(attrs, "cards", event.Cards)
	}
	l.logger.Log(context.Background(), level, event.Details, attrs...)
}

// Events always returns nil; read the slog output instead.
func (l *SlogLogger) Events() []DeckEvent { return nil }

// --- Recorder: in-memory slog.Handler for test assertions ---

// Record is one captured slog record with its attributes flattened.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder captures every record it handles. Handlers derived through
// WithAttrs share the parent's records.
type Recorder struct {
	mu      *sync.Mutex
	records *[]Record
	attrs   []slog.Attr
	level   slog.Level
}

func NewRecorder(level slog.Level) *Recorder {
	return &Recorder{mu: &sync.Mutex{}, records: &[]Record{}, level: level}
}

func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool { return level >= r.level }

func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, rec.NumAttrs()+len(r.attrs))
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, Record{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *r
	clone.attrs = append(append([]slog.Attr(nil), r.attrs...), attrs...)
	return &clone
}

// WithGroup is accepted but groups are not tracked; attribute keys stay flat.
func (r *Recorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), *r.records...)
}

// Messages returns the captured messages at or above level.
func (r *Recorder) Messages(level slog.Level) []string {
	var out []string
	for _, rec := range r.Records() {
		if rec.Level >= level {
			out = append(out, rec.Message)
		}
	}
	return out
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e DeckEvent) string {
	return fmt.Sprintf("#%-3d %-14s| %s", e.Seq, e.Type, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []DeckEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func plural(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

func NewDeckCreatedEvent(deck string) DeckEvent {
	return DeckEvent{
		Type:    EventDeckCreated,
		Deck:    deck,
		Details: fmt.Sprintf("deck %q created", deck),
	}
}

func NewDeckDeletedEvent(deck string) DeckEvent {
	return DeckEvent{
		Type:    EventDeckDeleted,
		Deck:    deck,
		Details: fmt.Sprintf("deck %q deleted", deck),
	}
}

func NewDeckClearedEvent(deck string, removed int) DeckEvent {
	return DeckEvent{
		Type:    EventDeckCleared,
		Deck:    deck,
		Cards:   removed,
		Details: fmt.Sprintf("deck %q cleared (%d %s removed)", deck, removed, plural(removed)),
	}
}

func NewDeckReplacedEvent(deck string, n int) DeckEvent {
	return DeckEvent{
		Type:    EventDeckReplaced,
		Deck:    deck,
		Cards:   n,
		Details: fmt.Sprintf("deck %q replaced with %d card %s", deck, n, plural(n)),
	}
}

func NewCardsAddedEvent(deck string, n int) DeckEvent {
	return DeckEvent{
		Type:    EventCardsAdded,
		Deck:    deck,
		Cards:   n,
		Details: fmt.Sprintf("%d card %s added to %q", n, plural(n), deck),
	}
}

func NewCardsRemovedEvent(deck string, n int) DeckEvent {
	return DeckEvent{
		Type:    EventCardsRemoved,
		Deck:    deck,
		Cards:   n,
		Details: fmt.Sprintf("%d card %s removed from %q", n, plural(n), deck),
	}
}

func NewDeckParsedEvent(source string, n int) DeckEvent {
	return DeckEvent{
		Type:    EventDeckParsed,
		Source:  source,
		Cards:   n,
		Details: fmt.Sprintf("%s parsed %d card %s", source, n, plural(n)),
	}
}

func NewParseFailedEvent(source string, err error) DeckEvent {
	return DeckEvent{
		Type:    EventParseFailed,
		Source:  source,
		Details: fmt.Sprintf("parse failed: %v", err),
	}
}

func NewDeckSavedEvent(deck, path string, n int) DeckEvent {
	return DeckEvent{
		Type:    EventDeckSaved,
		Deck:    deck,
		Source:  path,
		Cards:   n,
		Details: fmt.Sprintf("deck %q saved to %s", deck, path),
	}
}

func NewDeckLoadedEvent(deck, path string, n int) DeckEvent {
	return DeckEvent{
		Type:    EventDeckLoaded,
		Deck:    deck,
		Source:  path,
		Cards:   n,
		Details: fmt.Sprintf("deck %q loaded from %s (%d %s)", deck, path, n, plural(n)),
	}
}

func NewLibraryLoadedEvent(path string, decks int) DeckEvent {
	return DeckEvent{
		Type:    EventLibraryLoaded,
		Source:  path,
		Details: fmt.Sprintf("library %s loaded (%d decks)", path, decks),
	}
}
