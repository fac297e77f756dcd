package widget

import (
	"testing"
	"time"

	"tinyboard/internal/board"
)

// Board edge 400 → 50px cells. Center of a square for white orientation.
func center(sq string) (int, int) {
	col := int(sq[0] - 'a')
	row := int('8' - sq[1])
	return col*50 + 25, row*50 + 25
}

func TestDragDrop(t *testing.T) {
	snapEnd := make(chan struct{})
	var snap SnapEndEvent
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP"},
		Draggable: true,
		Events: Events{
			OnSnapEnd: func(e SnapEndEvent) {
				snap = e
				close(snapEnd)
			},
		},
	})

	x, y := center("e2")
	b.PointerDown(x, y)
	x, y = center("e4")
	b.PointerMove(x, y)
	b.PointerUp(x, y)

	wait(t, snapEnd, "snap-end")
	waitIdle(t, b)

	if snap.Source != "e2" || snap.Target != "e4" || snap.Piece != "wP" {
		t.Fatalf("snap-end = %+v", snap)
	}
	p := b.Position()
	if p["e4"] != "wP" || len(p) != 1 {
		t.Fatalf("position after drop: %v", p)
	}
}

func TestDragStartCancelLeavesIdle(t *testing.T) {
	drops := make(chan struct{}, 1)
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP"},
		Draggable: true,
		Events: Events{
			OnDragStart: func(_ DragStartEvent) bool { return false },
			OnDrop:      func(_ DropEvent) DropAction { drops <- struct{}{}; return ActionDefault },
		},
	})

	x, y := center("e2")
	b.PointerDown(x, y)

	b.mu.Lock()
	created := b.drag != nil
	b.mu.Unlock()
	if created {
		t.Fatalf("drag state created despite cancellation")
	}

	// The subsequent pointer-up is a no-op.
	b.PointerUp(x, y)
	expectQuiet(t, drops, "drop after cancelled drag")
	if p := b.Position(); p["e2"] != "wP" {
		t.Fatalf("position changed: %v", p)
	}
}

func TestDropOverrideToTrash(t *testing.T) {
	changed := make(chan struct{}, 1)
	snapEnd := make(chan struct{}, 1)
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP"},
		Draggable: true,
		Events: Events{
			OnDrop:    func(_ DropEvent) DropAction { return ActionTrash },
			OnChange:  func(_, _ board.Position) { changed <- struct{}{} },
			OnSnapEnd: func(_ SnapEndEvent) { snapEnd <- struct{}{} },
		},
	})

	x, y := center("e2")
	b.PointerDown(x, y)
	x, y = center("e4") // a perfectly valid square, but the override wins
	b.PointerMove(x, y)
	b.PointerUp(x, y)

	wait(t, changed, "change from trash")
	waitIdle(t, b)

	if len(b.Position()) != 0 {
		t.Fatalf("piece not trashed: %v", b.Position())
	}
	expectQuiet(t, snapEnd, "snap-end after trash override")
}

func TestOffboardSnapback(t *testing.T) {
	snapbackEnd := make(chan struct{})
	var ev SnapbackEndEvent
	b := newTestBoard(t, Config{
		Position:     board.Position{"e2": "wP"},
		Draggable:    true,
		DropOffBoard: ActionSnapback,
		Events: Events{
			OnSnapbackEnd: func(e SnapbackEndEvent) {
				ev = e
				close(snapbackEnd)
			},
		},
	})

	x, y := center("e2")
	b.PointerDown(x, y)
	b.PointerMove(-30, -30)
	b.PointerUp(-30, -30)

	wait(t, snapbackEnd, "snapback-end")
	waitIdle(t, b)

	if ev.Piece != "wP" || ev.Square != "e2" {
		t.Fatalf("snapback-end = %+v", ev)
	}
	if p := b.Position(); p["e2"] != "wP" || len(p) != 1 {
		t.Fatalf("snapback modified position: %v", p)
	}
}

func TestOffboardTrashPolicy(t *testing.T) {
	b := newTestBoard(t, Config{
		Position:     board.Position{"e2": "wP"},
		Draggable:    true,
		DropOffBoard: ActionTrash,
	})

	x, y := center("e2")
	b.PointerDown(x, y)
	b.PointerUp(-30, 500)

	waitIdle(t, b)
	if len(b.Position()) != 0 {
		t.Fatalf("piece not trashed: %v", b.Position())
	}
}

func TestSpareSnapbackDegradesToTrash(t *testing.T) {
	snapbackEnd := make(chan struct{}, 1)
	b := newTestBoard(t, Config{
		Draggable:    true,
		SparePieces:  true,
		DropOffBoard: ActionSnapback,
		Events: Events{
			OnSnapbackEnd: func(_ SnapbackEndEvent) { snapbackEnd <- struct{}{} },
		},
	})

	b.SpareDown("wQ", -10, -10)

	b.mu.Lock()
	if b.drag == nil || b.drag.source != SpareSource {
		b.mu.Unlock()
		t.Fatalf("spare drag not started")
	}
	b.mu.Unlock()

	b.PointerUp(-10, -10)
	waitIdle(t, b)

	// A spare piece has no home square: no snapback-end, nothing placed.
	expectQuiet(t, snapbackEnd, "snapback-end for a spare piece")
	if len(b.Position()) != 0 {
		t.Fatalf("position changed: %v", b.Position())
	}
}

func TestSparePiecePlacement(t *testing.T) {
	snapEnd := make(chan struct{})
	b := newTestBoard(t, Config{
		Draggable:   true,
		SparePieces: true,
		Events: Events{
			OnSnapEnd: func(_ SnapEndEvent) { close(snapEnd) },
		},
	})

	b.SpareDown("bN", -10, -10)
	x, y := center("c6")
	b.PointerMove(x, y)
	b.PointerUp(x, y)

	wait(t, snapEnd, "snap-end")
	waitIdle(t, b)
	if p := b.Position(); p["c6"] != "bN" || len(p) != 1 {
		t.Fatalf("spare piece not placed: %v", p)
	}
}

func TestPointerDownRejectedWhileDragActive(t *testing.T) {
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP", "d2": "wQ"},
		Draggable: true,
	})

	x, y := center("e2")
	b.PointerDown(x, y)

	b.mu.Lock()
	first := b.drag
	b.mu.Unlock()
	if first == nil || first.source != "e2" {
		t.Fatalf("first drag not started")
	}

	x2, y2 := center("d2")
	b.PointerDown(x2, y2)

	b.mu.Lock()
	second := b.drag
	b.mu.Unlock()
	if second != first {
		t.Fatalf("second pointer-down replaced the active drag")
	}

	b.PointerUp(x, y)
	waitIdle(t, b)
}

func TestConcurrentPointerUpResolvesOnce(t *testing.T) {
	inDrop := make(chan struct{}, 2)
	release := make(chan struct{})
	drops := make(chan struct{}, 2)
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP"},
		Draggable: true,
		Events: Events{
			OnDrop: func(_ DropEvent) DropAction {
				drops <- struct{}{}
				inDrop <- struct{}{}
				<-release
				return ActionDefault
			},
		},
	})

	x, y := center("e2")
	b.PointerDown(x, y)
	x, y = center("e4")
	b.PointerMove(x, y)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.PointerUp(x, y)
	}()
	wait(t, inDrop, "drop callback")

	// A second release while the first is still resolving must be a no-op,
	// not a panic in the terminal handlers. Pointer moves are ignored too.
	b.PointerUp(x, y)
	b.PointerMove(-40, -40)

	close(release)
	wait(t, done, "first pointer-up")
	waitIdle(t, b)

	if len(drops) != 1 {
		t.Fatalf("drop fired %d times, want 1", len(drops))
	}
	if p := b.Position(); p["e4"] != "wP" || len(p) != 1 {
		t.Fatalf("position after racing releases: %v", p)
	}
}

func TestDragMoveHighlightsAndEvents(t *testing.T) {
	var moves []DragMoveEvent
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP"},
		Draggable: true,
		Events: Events{
			OnDragMove: func(e DragMoveEvent) { moves = append(moves, e) },
		},
	})

	x, y := center("e2")
	b.PointerDown(x, y)

	b.mu.Lock()
	if b.highlights["e2"] != HighlightActive {
		b.mu.Unlock()
		t.Fatalf("source square not highlighted: %v", b.highlights)
	}
	b.mu.Unlock()

	x, y = center("e3")
	b.PointerMove(x, y)
	b.PointerMove(x+1, y+1) // same square: no boundary crossing
	b.PointerMove(-5, -5)

	if len(moves) != 2 {
		t.Fatalf("drag-move fired %d times, want 2: %+v", len(moves), moves)
	}
	if moves[0].OldLocation != "e2" || moves[0].NewLocation != "e3" {
		t.Fatalf("first drag-move: %+v", moves[0])
	}
	if moves[1].OldLocation != "e3" || moves[1].NewLocation != Offboard {
		t.Fatalf("second drag-move: %+v", moves[1])
	}

	b.mu.Lock()
	_, e2lit := b.highlights["e2"]
	_, e3lit := b.highlights["e3"]
	b.mu.Unlock()
	if e2lit || e3lit {
		t.Fatalf("stale highlights while offboard")
	}

	b.PointerUp(-5, -5)
	waitIdle(t, b)

	b.mu.Lock()
	remaining := len(b.highlights)
	b.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("highlights not cleared at drag end")
	}
}

func TestHoverEventsSuppressedWhileDragging(t *testing.T) {
	over := make(chan string, 8)
	b := newTestBoard(t, Config{
		Position:  board.Position{"e2": "wP"},
		Draggable: true,
		Events: Events{
			OnMouseoverSquare: func(e SquareEvent) { over <- e.Square },
		},
	})

	// Idle hover fires mouseover.
	x, y := center("d4")
	b.PointerMove(x, y)
	select {
	case sq := <-over:
		if sq != "d4" {
			t.Fatalf("hover square = %s", sq)
		}
	case <-time.After(time.Second):
		t.Fatalf("no mouseover while idle")
	}

	// Dragging suppresses it.
	x, y = center("e2")
	b.PointerMove(x, y)
	<-over // consume the e2 hover
	b.PointerDown(x, y)
	x, y = center("e4")
	b.PointerMove(x, y)
	select {
	case sq := <-over:
		t.Fatalf("mouseover %s fired during drag", sq)
	case <-time.After(50 * time.Millisecond):
	}

	b.PointerUp(x, y)
	waitIdle(t, b)
}

func TestPointerDownOnEmptySquareIgnored(t *testing.T) {
	b := newTestBoard(t, Config{Position: board.Position{"e2": "wP"}, Draggable: true})
	x, y := center("d4")
	b.PointerDown(x, y)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag != nil {
		t.Fatalf("drag started from empty square")
	}
}

func TestTerminalActionOutsideDraggingPanics(t *testing.T) {
	b := newTestBoard(t, Config{Position: "start", Draggable: true})
	defer func() {
		if recover() == nil {
			t.Fatalf("terminal handler did not panic while idle")
		}
	}()
	b.snapbackDraggedPiece()
}

func TestBlackOrientationHitTesting(t *testing.T) {
	b := newTestBoard(t, Config{
		Position:    board.Position{"e2": "wP"},
		Orientation: OrientationBlack,
		Draggable:   true,
	})
	// Flipped board: e2 sits mirrored, file e is the 4th column from the
	// right, rank 2 the 2nd row from the top.
	b.PointerDown(3*50+25, 1*50+25)
	b.mu.Lock()
	started := b.drag != nil && b.drag.source == "e2"
	b.mu.Unlock()
	if !started {
		t.Fatalf("black-orientation hit test missed e2")
	}
	b.PointerUp(3*50+25, 1*50+25)
	waitIdle(t, b)
}
