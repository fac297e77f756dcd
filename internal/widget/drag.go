package widget

import (
	"tinyboard/internal/board"
	"tinyboard/internal/logging"
)

// dragKind tags the drag state machine variant. Idle is the absence of a
// dragState; the three terminal kinds end back at idle when their animation
// completes.
type dragKind int

const (
	dragDragging dragKind = iota
	dragResolving
	dragSnapback
	dragTrash
	dragSnap
)

func (k dragKind) String() string {
	switch k {
	case dragDragging, dragResolving:
		// Resolving is invisible to the visual layer; the piece is still
		// attached to the pointer until a terminal state replaces it.
		return "dragging"
	case dragSnapback:
		return "snapback"
	case dragTrash:
		return "trash"
	case dragSnap:
		return "snap"
	default:
		return "?"
	}
}

// dragState is replaced wholesale on every transition. The in-place
// mutations are x and y while dragging, and the one-shot flip to
// dragResolving when a pointer-up claims the drag.
type dragState struct {
	kind     dragKind
	x, y     int
	piece    string
	source   string // origin square, or SpareSource
	location string // square or Offboard under the pointer; target for snap
}

// assertResolvingLocked guards the terminal handlers. Only the pointer-up
// that flipped the drag to dragResolving may reach them; any other state is a
// fault in the controller itself, not a recoverable input error.
func (b *Board) assertResolvingLocked() *dragState {
	if b.drag == nil || b.drag.kind != dragResolving {
		panic("widget: terminal drag action invoked outside dragging state")
	}
	return b.drag
}

// squareAtLocked maps board-relative pixel coordinates to a square code, or
// Offboard. The arithmetic works on the layout model, so overlapping render
// layers cannot confuse it.
func (b *Board) squareAtLocked(x, y int) string {
	if x < 0 || y < 0 || x >= b.size || y >= b.size {
		return Offboard
	}
	cell := b.size / 8
	if cell == 0 {
		return Offboard
	}
	col := min(x/cell, 7)
	row := min(y/cell, 7)
	var file, rank byte
	if b.orientation == OrientationWhite {
		file, rank = byte('a'+col), byte('8'-row)
	} else {
		file, rank = byte('h'-col), byte('1'+row)
	}
	return string([]byte{file, rank})
}

// PointerDown begins a drag from the square under the pointer. It is ignored
// while a drag is in flight (any non-idle state), when dragging is disabled,
// or when the square is empty. The drag-start notification fires before any
// state is created; a cancelling listener leaves the controller idle.
func (b *Board) PointerDown(x, y int) {
	b.mu.Lock()
	if b.drag != nil || !b.cfg.Draggable {
		b.mu.Unlock()
		return
	}
	sq := b.squareAtLocked(x, y)
	piece, ok := b.position[sq]
	if sq == Offboard || !ok {
		b.mu.Unlock()
		return
	}
	pos := b.position.Copy()
	o := b.orientation
	b.mu.Unlock()

	b.beginDrag(sq, piece, pos, o, x, y)
}

// SpareDown begins a drag of a spare piece from the off-board supply.
func (b *Board) SpareDown(piece string, x, y int) {
	b.mu.Lock()
	if b.drag != nil || !b.cfg.SparePieces || !board.ValidPiece(piece) {
		b.mu.Unlock()
		return
	}
	pos := b.position.Copy()
	o := b.orientation
	b.mu.Unlock()

	b.beginDrag(SpareSource, piece, pos, o, x, y)
}

func (b *Board) beginDrag(source, piece string, pos board.Position, o Orientation, x, y int) {
	if b.events.OnDragStart != nil {
		allowed := b.events.OnDragStart(DragStartEvent{
			Source:      source,
			Piece:       piece,
			Position:    pos,
			Orientation: o,
		})
		if !allowed {
			logging.Debugf("drag of %s from %s cancelled by listener", piece, source)
			return
		}
	}

	b.mu.Lock()
	if b.drag != nil {
		// A drag slipped in while the listener ran.
		b.mu.Unlock()
		return
	}
	loc := b.squareAtLocked(x, y)
	if source != SpareSource {
		loc = source
	}
	b.drag = &dragState{kind: dragDragging, x: x, y: y, piece: piece, source: source, location: loc}
	if board.ValidSquare(loc) {
		b.highlights[loc] = HighlightActive
	}
	b.mu.Unlock()
	b.requestRender()
}

// PointerMove tracks the pointer. While dragging it updates the live
// coordinates, re-highlights the square under the pointer and fires
// drag-move on boundary crossings. While idle it drives the
// mouseover/mouseout square notifications instead.
func (b *Board) PointerMove(x, y int) {
	b.mu.Lock()
	d := b.drag
	if d == nil {
		b.hoverLocked(x, y)
		return // hoverLocked unlocks
	}
	if d.kind != dragDragging {
		b.mu.Unlock()
		return
	}
	d.x, d.y = x, y
	loc := b.squareAtLocked(x, y)
	var ev *DragMoveEvent
	if loc != d.location {
		if board.ValidSquare(d.location) {
			delete(b.highlights, d.location)
		}
		if board.ValidSquare(loc) {
			b.highlights[loc] = HighlightActive
		}
		ev = &DragMoveEvent{
			NewLocation: loc,
			OldLocation: d.location,
			Source:      d.source,
			Piece:       d.piece,
			Position:    b.position.Copy(),
			Orientation: b.orientation,
		}
		d.location = loc
	}
	b.mu.Unlock()

	if ev != nil && b.events.OnDragMove != nil {
		b.events.OnDragMove(*ev)
	}
	b.requestRender()
}

// hoverLocked emits mouseout/mouseover square notifications for idle pointer
// movement. Called with b.mu held; unlocks it.
func (b *Board) hoverLocked(x, y int) {
	sq := b.squareAtLocked(x, y)
	if sq == b.hover {
		b.mu.Unlock()
		return
	}
	old := b.hover
	b.hover = sq
	pos := b.position.Copy()
	o := b.orientation
	oldPiece := pos[old]
	newPiece := pos[sq]
	b.mu.Unlock()

	if board.ValidSquare(old) && b.events.OnMouseoutSquare != nil {
		b.events.OnMouseoutSquare(SquareEvent{Square: old, Piece: oldPiece, Position: pos.Copy(), Orientation: o})
	}
	if board.ValidSquare(sq) && b.events.OnMouseoverSquare != nil {
		b.events.OnMouseoverSquare(SquareEvent{Square: sq, Piece: newPiece, Position: pos.Copy(), Orientation: o})
	}
}

// PointerUp resolves the drag. The default action is a drop on the square
// under the pointer, or the configured off-board policy elsewhere; the drop
// notification may override it. Highlights are cleared whatever the outcome.
// A pointer-up while not dragging is a no-op.
func (b *Board) PointerUp(x, y int) {
	b.mu.Lock()
	d := b.drag
	if d == nil || d.kind != dragDragging {
		b.mu.Unlock()
		return
	}
	d.x, d.y = x, y
	d.location = b.squareAtLocked(x, y)
	// Claim the drag before dropping the lock for the callback. A concurrent
	// pointer-up or pointer-move now sees dragResolving and no-ops instead of
	// racing into the terminal handlers.
	d.kind = dragResolving

	action := ActionDrop
	if !board.ValidSquare(d.location) {
		action = b.cfg.DropOffBoard
	}

	old := b.position.Copy()
	next := old.Copy()
	if board.ValidSquare(d.source) {
		delete(next, d.source)
	}
	if board.ValidSquare(d.location) {
		next[d.location] = d.piece
	}
	o := b.orientation
	b.mu.Unlock()

	if b.events.OnDrop != nil {
		override := b.events.OnDrop(DropEvent{
			Source:      d.source,
			Target:      d.location,
			Piece:       d.piece,
			OldPosition: old.Copy(),
			NewPosition: next.Copy(),
			Orientation: o,
		})
		if override != ActionDefault {
			action = override
		}
	}

	b.mu.Lock()
	b.highlights = make(map[string]string)
	b.mu.Unlock()

	switch action {
	case ActionSnapback:
		b.snapbackDraggedPiece()
	case ActionTrash:
		b.trashDraggedPiece()
	default:
		b.dropDraggedPiece(next)
	}
}

// dropDraggedPiece commits the drop position, enters the snap state and, once
// the piece's own transition finishes, fires snap-end and returns to idle.
// The source square is cleared whether or not it was a real square; the
// target is written only when the release landed on one.
func (b *Board) dropDraggedPiece(next board.Position) {
	b.mu.Lock()
	d := b.assertResolvingLocked()
	b.drag = &dragState{kind: dragSnap, x: d.x, y: d.y, piece: d.piece, source: d.source, location: d.location}
	b.mu.Unlock()

	b.setCurrentPosition(next)

	source, target, piece := d.source, d.location, d.piece
	go b.finishDrag(func() {
		if b.events.OnSnapEnd != nil {
			b.events.OnSnapEnd(SnapEndEvent{Source: source, Target: target, Piece: piece})
		}
	})
}

// snapbackDraggedPiece returns the piece to its origin square without
// touching the position. A spare piece has no origin square, so its snapback
// degrades to a trash.
func (b *Board) snapbackDraggedPiece() {
	b.mu.Lock()
	d := b.assertResolvingLocked()
	if d.source == SpareSource {
		b.mu.Unlock()
		b.trashDraggedPiece()
		return
	}
	b.drag = &dragState{kind: dragSnapback, x: d.x, y: d.y, piece: d.piece, source: d.source, location: d.source}
	pos := b.position.Copy()
	o := b.orientation
	b.mu.Unlock()

	piece, square := d.piece, d.source
	go b.finishDrag(func() {
		if b.events.OnSnapbackEnd != nil {
			b.events.OnSnapbackEnd(SnapbackEndEvent{Piece: piece, Square: square, Position: pos, Orientation: o})
		}
	})
}

// trashDraggedPiece removes the piece from the position immediately and
// fades it out at the last pointer coordinates. No dedicated notification
// fires when the fade completes.
func (b *Board) trashDraggedPiece() {
	b.mu.Lock()
	d := b.assertResolvingLocked()
	next := b.position.Copy()
	if board.ValidSquare(d.source) {
		delete(next, d.source)
	}
	b.drag = &dragState{kind: dragTrash, x: d.x, y: d.y, piece: d.piece, source: d.source}
	b.mu.Unlock()

	b.setCurrentPosition(next)

	go b.finishDrag(nil)
}

// finishDrag renders the terminal state, waits for it to be painted and for
// the dragged piece's transition to finish, then destroys the drag state and
// runs the end-of-drag notification.
func (b *Board) finishDrag(after func()) {
	b.mu.Lock()
	frameCh := b.registerFrameWaiterLocked()
	doneCh := make(chan struct{})
	b.dragWaiter = doneCh
	f := b.buildFrameLocked()
	r := b.renderer
	b.mu.Unlock()

	if r != nil {
		r.Render(f)
	}
	<-frameCh
	<-doneCh

	b.mu.Lock()
	b.drag = nil
	b.mu.Unlock()
	b.requestRender()

	if after != nil {
		after()
	}
}
