package log

// EventType enumerates all observable deck events.
type EventType int

const (
	EventDeckCreated EventType = iota
	EventDeckDeleted
	EventDeckCleared
	EventCardsAdded
	EventCardsRemoved
	EventDeckParsed
	EventParseFailed
	EventDeckSaved
	EventDeckLoaded
	EventLibraryLoaded
	EventDeckReplaced
)

func (e EventType) String() string {
	switch e {
	case EventDeckCreated:
		return "DeckCreated"
	case EventDeckDeleted:
		return "DeckDeleted"
	case EventDeckCleared:
		return "DeckCleared"
	case EventCardsAdded:
		return "CardsAdded"
	case EventCardsRemoved:
		return "CardsRemoved"
	case EventDeckParsed:
		return "DeckParsed"
	case EventParseFailed:
		return "ParseFailed"
	case EventDeckSaved:
		return "DeckSaved"
	case EventDeckLoaded:
		return "DeckLoaded"
	case EventLibraryLoaded:
		return "LibraryLoaded"
	case EventDeckReplaced:
		return "DeckReplaced"
	default:
		return "Unknown"
	}
}

// DeckEvent represents a single observable change to the deck library.
type DeckEvent struct {
	Seq     int       // monotonic sequence number
	Type    EventType // event type
	Deck    string    // deck name (if applicable)
	Source  string    // deck source name or file path (if applicable)
	Cards   int       // number of card entries involved
	Details string    // human-readable detail string
}
