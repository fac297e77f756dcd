package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"tinyboard/internal/session"
	"tinyboard/internal/storage"
	"tinyboard/internal/templates"
	"tinyboard/internal/widget"

	"github.com/google/uuid"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Hub   *session.Hub
	Store *storage.Store
}

// NewHandler creates a new handler instance
func NewHandler(hub *session.Hub, store *storage.Store) *Handler {
	return &Handler{Hub: hub, Store: store}
}

func wantHints(r *http.Request) bool {
	return r.URL.Query().Get("hints") == "1"
}

// HandleNew creates a new board and redirects to it
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	target := "/" + id
	if wantHints(r) {
		target += "?hints=1"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandlePage serves the home page or a board page
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" || path == "index.html" {
		templates.WriteHomeHTML(w)
		return
	}
	_ = h.Hub.Get(path, wantHints(r))
	templates.WriteBoardHTML(w, path)
}

// HandleSSE streams frames and board notifications to one watcher
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sse/")
	s := h.Hub.Get(id, wantHints(r))

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 16)
	s.AddWatcher(ch)
	defer s.RemoveWatcher(ch)

	initial, _ := json.Marshal(s.CurrentEnvelope())
	_, _ = fmt.Fprintf(w, "data: %s\n\n", initial)
	flusher.Flush()

	s.Touch()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// heartbeat
			_, _ = w.Write([]byte("data: {}\n\n"))
			flusher.Flush()
		case msg := <-ch:
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// PointerRequest is one pointer gesture from the visual layer.
type PointerRequest struct {
	Kind  string `json:"kind"` // "down", "move", "up" or "spare"
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Piece string `json:"piece,omitempty"` // spare piece code, e.g. "wQ"
}

// HandlePointer feeds a pointer gesture into the drag controller
func (h *Handler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/pointer/")
	s := h.Hub.Get(id, false)

	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	s.Touch()
	b := s.Board()
	switch req.Kind {
	case "down":
		b.PointerDown(req.X, req.Y)
	case "spare":
		b.SpareDown(req.Piece, req.X, req.Y)
	case "move":
		b.PointerMove(req.X, req.Y)
	case "up":
		b.PointerUp(req.X, req.Y)
	default:
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "unknown kind"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// AckRequest acknowledges a painted frame or a finished transition.
type AckRequest struct {
	Kind string `json:"kind"` // "frame" or "transition"
	ID   string `json:"id,omitempty"`
}

// HandleAck forwards paint/transition acknowledgements to the sequencer
func (h *Handler) HandleAck(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/ack/")
	s := h.Hub.Get(id, false)

	var req AckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	switch req.Kind {
	case "frame":
		s.FramePainted()
	case "transition":
		s.TransitionFinished(req.ID)
	default:
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "unknown kind"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PositionRequest sets the whole position at once.
type PositionRequest struct {
	FEN      string            `json:"fen,omitempty"`
	Position map[string]string `json:"position,omitempty"`
	Animate  *bool             `json:"animate,omitempty"` // default true
}

func animateFlag(p *bool) bool {
	return p == nil || *p
}

// HandlePosition replaces the board position
func (h *Handler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/position/")
	s := h.Hub.Get(id, false)

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	s.Touch()
	var v any
	if req.Position != nil {
		v = req.Position
	} else {
		v = req.FEN
	}
	if err := s.Board().SetPosition(v, animateFlag(req.Animate)); err != nil {
		code := 0
		var werr *widget.Error
		if errors.As(err, &werr) {
			code = werr.Code
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error(), "code": code})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "fen": s.Board().FEN()})
}

// MovesRequest applies one or more moves in "e2-e4" form.
type MovesRequest struct {
	Moves   []string `json:"moves"`
	Animate *bool    `json:"animate,omitempty"`
}

// HandleMoves applies moves to the board
func (h *Handler) HandleMoves(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/moves/")
	s := h.Hub.Get(id, false)

	var req MovesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	s.Touch()
	pos := s.Board().Move(animateFlag(req.Animate), req.Moves...)
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "position": pos, "fen": s.Board().FEN()})
}

// HandleFlip reverses the board orientation
func (h *Handler) HandleFlip(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/flip/")
	s := h.Hub.Get(id, false)
	s.Touch()
	o := s.Board().Flip()
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "orientation": string(o)})
}

// ClearRequest optionally disables the fade-out.
type ClearRequest struct {
	Animate *bool `json:"animate,omitempty"`
}

// HandleClear empties the board
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/clear/")
	s := h.Hub.Get(id, false)

	var req ClearRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	s.Touch()
	s.Board().ClearBoard(animateFlag(req.Animate))
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleReset returns the board to the start position
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/reset/")
	s := h.Hub.Get(id, false)
	s.Touch()
	s.Board().StartPosition(true)
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "fen": s.Board().FEN()})
}

// ResizeRequest changes the board edge in pixels.
type ResizeRequest struct {
	Size int `json:"size"`
}

// HandleResize changes the board size
func (h *Handler) HandleResize(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/resize/")
	s := h.Hub.Get(id, false)

	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}

	s.Touch()
	s.Board().Resize(req.Size)
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "size": s.Board().Size()})
}

// HandleStats reports aggregate persistence counts
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.FetchStats(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "stats unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": stats, "live": h.Hub.Len()})
}

// ClientIP extracts the client IP from the request
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
