// Package session hosts shared board instances: each session owns one widget
// board, fans its frames and notifications out to SSE watchers, and persists
// position history when a store is configured.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"tinyboard/internal/board"
	"tinyboard/internal/logging"
	"tinyboard/internal/referee"
	"tinyboard/internal/storage"
	"tinyboard/internal/widget"
	"tinyboard/pkg/utils"
)

// Envelope is one SSE message: either a frame snapshot or a named
// notification from the board.
type Envelope struct {
	Kind    string        `json:"kind"` // "frame" or "event"
	Name    string        `json:"name,omitempty"`
	Frame   *widget.Frame `json:"frame,omitempty"`
	Payload any           `json:"payload,omitempty"`
}

// Session is one shared board with its watchers.
type Session struct {
	ID string

	mu        sync.Mutex
	watchers  map[chan []byte]string // channel -> watcher tag, for debug logs
	lastFrame *widget.Frame
	lastSeen  time.Time
	seq       int

	board *widget.Board
	hints bool
	ref   *referee.Referee
	store *storage.Store
	dbID  uuid.UUID
	hasDB bool
}

func newSession(id string, store *storage.Store, ref *referee.Referee, hints bool) *Session {
	s := &Session{
		ID:       id,
		watchers: make(map[chan []byte]string),
		lastSeen: time.Now(),
		hints:    hints,
		ref:      ref,
		store:    store,
	}
	cfg := widget.Config{
		Position:    "start",
		Draggable:   true,
		SparePieces: true,
		Renderer:    s,
		Events:      s.boardEvents(),
	}
	restored := false
	if u, err := uuid.Parse(id); err == nil {
		s.dbID = u
		s.hasDB = true
		if row, err := store.LoadSession(context.Background(), u); err == nil {
			cfg.Position = row.FEN
			cfg.Orientation = widget.Orientation(row.Orientation)
			s.seq = len(row.History)
			restored = true
		}
	}

	s.board = widget.New(cfg)

	if s.hasDB && !restored {
		fen := s.board.FEN()
		if err := s.store.CreateSession(context.Background(), s.dbID, fen, string(s.board.Orientation()), s.lastSeen); err != nil {
			logging.Debugf("session %s: create row: %v", id, err)
		}
	}
	return s
}

// Board exposes the underlying widget.
func (s *Session) Board() *widget.Board {
	return s.board
}

// LastSeen reports when the session was last touched.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Touch updates the last seen timestamp.
func (s *Session) Touch() {
	now := time.Now()
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
	if s.hasDB {
		if err := s.store.TouchSession(context.Background(), s.dbID, now); err != nil {
			logging.Debugf("session %s: touch row: %v", s.ID, err)
		}
	}
}

// Render implements widget.Renderer: it broadcasts the frame to all
// watchers. A session nobody is watching acks its own frames so headless
// boards still settle their animations.
func (s *Session) Render(f widget.Frame) {
	s.mu.Lock()
	s.lastFrame = &f
	headless := len(s.watchers) == 0
	b := s.board // nil only for the construction-time render
	s.mu.Unlock()

	s.broadcast(Envelope{Kind: "frame", Frame: &f})
	if headless && b != nil {
		s.ackFrame(&f)
	}
}

// ackFrame acknowledges a frame on behalf of an absent visual layer.
func (s *Session) ackFrame(f *widget.Frame) {
	s.board.FramePainted()
	for _, pv := range f.Pieces {
		if pv.ID != "" {
			s.board.TransitionFinished(pv.ID)
		}
	}
	if f.Drag != nil && f.Drag.Phase != "dragging" {
		s.board.TransitionFinished(widget.DragElementID)
	}
}

// AddWatcher registers an SSE watcher channel.
func (s *Session) AddWatcher(ch chan []byte) {
	tag := utils.RandomHex(4)
	s.mu.Lock()
	s.watchers[ch] = tag
	s.mu.Unlock()
	logging.Debugf("session %s: watcher %s joined", s.ID, tag)
}

// RemoveWatcher unregisters a watcher. When the last one leaves mid-animation
// the pending frame is self-acked so the sequencer is not stranded.
func (s *Session) RemoveWatcher(ch chan []byte) {
	s.mu.Lock()
	tag := s.watchers[ch]
	delete(s.watchers, ch)
	orphaned := len(s.watchers) == 0
	last := s.lastFrame
	s.mu.Unlock()
	logging.Debugf("session %s: watcher %s left", s.ID, tag)
	if orphaned && last != nil {
		s.ackFrame(last)
	}
}

// CurrentEnvelope returns the latest frame for a newly connected watcher.
func (s *Session) CurrentEnvelope() Envelope {
	s.mu.Lock()
	f := s.lastFrame
	s.mu.Unlock()
	return Envelope{Kind: "frame", Frame: f}
}

// FramePainted forwards a watcher's paint ack to the board.
func (s *Session) FramePainted() {
	s.board.FramePainted()
}

// TransitionFinished forwards a watcher's transition ack to the board.
func (s *Session) TransitionFinished(id string) {
	s.board.TransitionFinished(id)
}

func (s *Session) broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		logging.Debugf("session %s: marshal envelope: %v", s.ID, err)
		return
	}
	s.mu.Lock()
	for ch := range s.watchers {
		select { // don't block a slow client
		case ch <- data:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Session) broadcastEvent(name string, payload any) {
	s.broadcast(Envelope{Kind: "event", Name: name, Payload: payload})
}

// boardEvents wires the widget notifications into the SSE stream, the hint
// provider and the store.
func (s *Session) boardEvents() widget.Events {
	return widget.Events{
		OnChange: func(old, new board.Position) {
			s.broadcastEvent("change", map[string]any{
				"oldPosition": old,
				"newPosition": new,
				"oldFen":      board.ToFEN(old),
				"newFen":      board.ToFEN(new),
			})
			s.persistPosition(new)
		},
		OnDragStart: func(e widget.DragStartEvent) bool {
			s.broadcastEvent("drag-start", e)
			if s.hints {
				s.applyHints(e)
			}
			return true
		},
		OnDragMove: func(e widget.DragMoveEvent) {
			s.broadcastEvent("drag-move", e)
		},
		OnDrop: func(e widget.DropEvent) widget.DropAction {
			s.broadcastEvent("drop", e)
			return widget.ActionDefault
		},
		OnMouseoverSquare: func(e widget.SquareEvent) {
			s.broadcastEvent("mouseover-square", e)
		},
		OnMouseoutSquare: func(e widget.SquareEvent) {
			s.broadcastEvent("mouseout-square", e)
		},
		OnMoveEnd: func(old, new board.Position) {
			s.broadcastEvent("move-end", map[string]any{
				"oldPosition": old,
				"newPosition": new,
			})
		},
		OnSnapbackEnd: func(e widget.SnapbackEndEvent) {
			s.broadcastEvent("snapback-end", e)
		},
		OnSnapEnd: func(e widget.SnapEndEvent) {
			s.broadcastEvent("snap-end", e)
		},
		OnError: func(code int, msg string) {
			s.broadcastEvent("error", map[string]any{"code": code, "msg": msg})
		},
	}
}

// applyHints asks the referee for the dragged piece's legal targets and
// paints them as available; squares it cannot reach stay unhinted. The
// highlight set is wiped with the rest of the drag highlights on release.
func (s *Session) applyHints(e widget.DragStartEvent) {
	if s.ref == nil || e.Piece == "" {
		return
	}
	targets, err := s.ref.Targets(board.ToFEN(e.Position), e.Source, e.Piece[0])
	if err != nil {
		logging.Debugf("session %s: hints: %v", s.ID, err)
		return
	}
	if len(targets) == 0 {
		return
	}
	styles := make(map[string]string, len(targets))
	for _, sq := range targets {
		styles[sq] = widget.HighlightAvailable
	}
	s.board.SetHighlights(styles)
}

func (s *Session) persistPosition(p board.Position) {
	if !s.hasDB {
		return
	}
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	ctx := context.Background()
	fen := board.ToFEN(p)
	if err := s.store.RecordPosition(ctx, s.dbID, seq, fen); err != nil {
		logging.Debugf("session %s: record position: %v", s.ID, err)
	}
	if err := s.store.SaveSession(ctx, s.dbID, storage.SessionUpdate{FEN: &fen}); err != nil {
		logging.Debugf("session %s: save state: %v", s.ID, err)
	}
}
