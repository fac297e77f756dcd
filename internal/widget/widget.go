// Package widget implements an interactive chess board instance: position
// tracking, the two-phase animation sequencer, the pointer-driven drag state
// machine, and the notification callbacks observed by the surrounding shell.
//
// A Board never assumes a UI event loop. It hands frames to a Renderer and
// suspends on explicit signals: the renderer (or whatever bridges it) calls
// FramePainted after a frame is on screen and TransitionFinished when a
// specific element's visual transition ends.
package widget

import (
	"sync"

	"tinyboard/internal/board"
)

// Orientation is the side of the board facing the viewer.
type Orientation string

const (
	OrientationWhite Orientation = "white"
	OrientationBlack Orientation = "black"
)

// Flip returns the opposite orientation.
func (o Orientation) Flip() Orientation {
	if o == OrientationWhite {
		return OrientationBlack
	}
	return OrientationWhite
}

// DropAction is the resolution of an ended drag. The zero value keeps the
// computed default, so an OnDrop callback can decline to override.
type DropAction int

const (
	ActionDefault DropAction = iota
	ActionDrop
	ActionSnapback
	ActionTrash
)

func (a DropAction) String() string {
	switch a {
	case ActionDrop:
		return "drop"
	case ActionSnapback:
		return "snapback"
	case ActionTrash:
		return "trash"
	default:
		return "default"
	}
}

// Locations outside the 64 squares.
const (
	Offboard    = "offboard"
	SpareSource = "spare"
)

// Highlight styles. The drag controller owns "active"; the other styles are
// set by the surrounding shell.
const (
	HighlightActive      = "active"
	HighlightAvailable   = "available"
	HighlightUnavailable = "unavailable"
	HighlightPrevious    = "previous"
)

// Config configures a Board. Zero values get sensible defaults in New.
type Config struct {
	// Position accepts a board.Position, "start", a FEN string or nil.
	// Unparseable values fall back to an empty board (lenient, silent).
	Position any

	Orientation Orientation
	Size        int // board edge in pixels, default 400

	Draggable    bool
	SparePieces  bool
	DropOffBoard DropAction // ActionSnapback (default) or ActionTrash

	// Transition durations in milliseconds.
	MoveSpeed     int
	SnapbackSpeed int
	SnapSpeed     int
	TrashSpeed    int
	AppearSpeed   int

	Renderer Renderer
	Events   Events
}

// Board is one widget instance. All mutable state is owned by the instance
// and guarded by mu; event payloads carry deep copies only.
type Board struct {
	mu  sync.Mutex
	cfg Config

	position    board.Position
	orientation Orientation
	size        int
	highlights  map[string]string
	hover       string // square under the pointer while idle

	drag    *dragState
	anim    *animBatch
	animGen int

	frameWaiters []chan struct{}
	animWaiters  map[string]chan struct{}
	dragWaiter   chan struct{}

	renderer Renderer
	events   Events
}

// New creates a Board and renders its initial frame.
func New(cfg Config) *Board {
	if cfg.Size <= 0 {
		cfg.Size = 400
	}
	if cfg.Orientation == "" {
		cfg.Orientation = OrientationWhite
	}
	if cfg.DropOffBoard == ActionDefault {
		cfg.DropOffBoard = ActionSnapback
	}
	if cfg.MoveSpeed <= 0 {
		cfg.MoveSpeed = 200
	}
	if cfg.SnapbackSpeed <= 0 {
		cfg.SnapbackSpeed = 60
	}
	if cfg.SnapSpeed <= 0 {
		cfg.SnapSpeed = 30
	}
	if cfg.TrashSpeed <= 0 {
		cfg.TrashSpeed = 100
	}
	if cfg.AppearSpeed <= 0 {
		cfg.AppearSpeed = 200
	}
	b := &Board{
		cfg:         cfg,
		position:    board.Normalize(cfg.Position),
		orientation: cfg.Orientation,
		size:        cfg.Size,
		highlights:  make(map[string]string),
		animWaiters: make(map[string]chan struct{}),
		renderer:    cfg.Renderer,
		events:      cfg.Events,
	}
	b.requestRender()
	return b
}

// Position returns a copy of the current position.
func (b *Board) Position() board.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position.Copy()
}

// FEN returns the current position as a piece-placement FEN.
func (b *Board) FEN() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return board.ToFEN(b.position)
}

// Orientation returns the current orientation.
func (b *Board) Orientation() Orientation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orientation
}

// Size returns the board edge in pixels.
func (b *Board) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Flip reverses the orientation and re-renders.
func (b *Board) Flip() Orientation {
	b.mu.Lock()
	b.orientation = b.orientation.Flip()
	o := b.orientation
	b.mu.Unlock()
	b.requestRender()
	return o
}

// SetOrientation sets the orientation and re-renders.
func (b *Board) SetOrientation(o Orientation) {
	if o != OrientationWhite && o != OrientationBlack {
		return
	}
	b.mu.Lock()
	b.orientation = o
	b.mu.Unlock()
	b.requestRender()
}

// Resize changes the board edge in pixels and re-renders. A non-positive
// size leaves the layout untouched, so Resize(0) is a forced re-render.
func (b *Board) Resize(size int) {
	b.mu.Lock()
	if size > 0 {
		b.size = size
	}
	b.mu.Unlock()
	b.requestRender()
}

// SetHighlight applies a highlight style to a square. The whole highlight
// set is dropped when a drag ends.
func (b *Board) SetHighlight(square, style string) {
	if !board.ValidSquare(square) {
		return
	}
	b.mu.Lock()
	b.highlights[square] = style
	b.mu.Unlock()
	b.requestRender()
}

// SetHighlights applies a batch of highlight styles with a single render.
// Invalid squares are skipped.
func (b *Board) SetHighlights(styles map[string]string) {
	b.mu.Lock()
	for sq, style := range styles {
		if board.ValidSquare(sq) {
			b.highlights[sq] = style
		}
	}
	b.mu.Unlock()
	b.requestRender()
}

// ClearHighlights removes every highlight.
func (b *Board) ClearHighlights() {
	b.mu.Lock()
	b.highlights = make(map[string]string)
	b.mu.Unlock()
	b.requestRender()
}

// requestRender builds a frame snapshot under the lock and hands it to the
// renderer with the lock released, so a renderer may call straight back into
// FramePainted or TransitionFinished.
func (b *Board) requestRender() {
	b.mu.Lock()
	f := b.buildFrameLocked()
	r := b.renderer
	b.mu.Unlock()
	if r != nil {
		r.Render(f)
	}
}
