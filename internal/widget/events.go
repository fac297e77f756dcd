package widget

import "tinyboard/internal/board"

// Events holds the optional notification callbacks. Every position carried
// by a payload is a deep copy; listeners can never reach the live position.
// Callbacks run on the goroutine that triggered them, outside the board lock.
type Events struct {
	// OnChange fires whenever the current position changes. The FEN forms of
	// both snapshots are board.ToFEN(old) and board.ToFEN(new); listeners
	// that publish the change (like the SSE fanout) derive them that way.
	OnChange func(old, new board.Position)

	// OnDragStart fires before a drag is committed. Returning false cancels
	// the drag and no drag state is created.
	OnDragStart func(e DragStartEvent) bool

	// OnDragMove fires when the square under a dragged piece changes.
	OnDragMove func(e DragMoveEvent)

	// OnDrop fires on pointer release. The returned action overrides the
	// computed outcome; ActionDefault keeps it.
	OnDrop func(e DropEvent) DropAction

	// OnMouseoverSquare and OnMouseoutSquare track the hovered square while
	// no drag is active. Both are suppressed entirely during a drag.
	OnMouseoverSquare func(e SquareEvent)
	OnMouseoutSquare  func(e SquareEvent)

	// OnMoveEnd fires once per settled animation batch. Empty batches never
	// settle, so they never fire it.
	OnMoveEnd func(old, new board.Position)

	// OnSnapbackEnd fires when a snapback animation completes.
	OnSnapbackEnd func(e SnapbackEndEvent)

	// OnSnapEnd fires when a dropped piece has settled on its square.
	OnSnapEnd func(e SnapEndEvent)

	// OnError reports invalid arguments passed to public entry points.
	OnError func(code int, msg string)
}

// DragStartEvent describes a drag about to begin.
type DragStartEvent struct {
	Source      string
	Piece       string
	Position    board.Position
	Orientation Orientation
}

// DragMoveEvent describes the dragged piece crossing a square boundary.
// Locations are square codes or Offboard.
type DragMoveEvent struct {
	NewLocation string
	OldLocation string
	Source      string
	Piece       string
	Position    board.Position
	Orientation Orientation
}

// DropEvent describes a released drag. NewPosition is the position that will
// result if the drop stands.
type DropEvent struct {
	Source      string
	Target      string
	Piece       string
	OldPosition board.Position
	NewPosition board.Position
	Orientation Orientation
}

// SquareEvent describes the pointer entering or leaving a square. Piece is
// empty when the square is vacant.
type SquareEvent struct {
	Square      string
	Piece       string
	Position    board.Position
	Orientation Orientation
}

// SnapbackEndEvent describes a completed snapback.
type SnapbackEndEvent struct {
	Piece       string
	Square      string
	Position    board.Position
	Orientation Orientation
}

// SnapEndEvent describes a dropped piece settling onto its target.
type SnapEndEvent struct {
	Source string
	Target string
	Piece  string
}
