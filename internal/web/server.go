package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/mtgdeck/internal/card"
	"github.com/peterkuimelis/mtgdeck/internal/decklist"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
	"github.com/peterkuimelis/mtgdeck/internal/source"
)

//go:embed static
var staticFiles embed.FS

// maxSource caps the size of a posted or streamed deck source.
const maxSource = 1 << 20

// ParseResult is the JSON answer to a parse request, over HTTP or the
// websocket.
type ParseResult struct {
	Source     string      `json:"source,omitempty"`
	Cards      []card.Card `json:"cards"`
	CardCount  int         `json:"cardCount"`
	TotalCards int         `json:"totalCards"`
	Text       string      `json:"text"`
	Error      string      `json:"error,omitempty"`
}

// Server is the mtgdeck web UI server.
type Server struct {
	store    *deckstore.Store
	registry *source.Registry
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates a new web server over a deck store and a source
// registry.
func NewServer(store *deckstore.Store, registry *source.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    store,
		registry: registry,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /api/decks/{name}", s.handleDeck)
	s.mux.HandleFunc("POST /api/parse", s.handleParse)

	// Live parse preview
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, deckInfos(s.store))
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	cards, err := s.store.Get(name)
	if errors.Is(err, deckstore.ErrDeckNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newDeckDetail(name, cards))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSource))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, ParseResult{Cards: []card.Card{}, Error: err.Error()})
		return
	}
	res := s.parse(r.Context(), string(body))
	status := http.StatusOK
	switch {
	case res.Error == "":
	case res.Source == "":
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", "error", err)
		return
	}
	defer wsConn.CloseNow()
	wsConn.SetReadLimit(maxSource)

	ctx := r.Context()
	for {
		typ, data, err := wsConn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				s.logger.Debug("websocket read", "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			wsConn.Close(websocket.StatusUnsupportedData, "expected text messages")
			return
		}

		msg, err := json.Marshal(s.parse(ctx, string(data)))
		if err != nil {
			s.logger.Error("encode parse result", "error", err)
			return
		}
		if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
			s.logger.Debug("websocket write", "error", err)
			return
		}
	}
}

// parse runs src through the registry. Failures are reported in the result.
func (s *Server) parse(ctx context.Context, src string) ParseResult {
	res := ParseResult{Cards: []card.Card{}}
	sc, cards, err := s.registry.Parse(ctx, src)
	if sc != nil {
		res.Source = sc.Name()
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Cards = cards
	res.CardCount = len(cards)
	res.TotalCards = card.Total(cards)
	res.Text = decklist.Format(cards)
	return res
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
