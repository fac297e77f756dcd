package widget

import (
	"testing"
	"time"

	"tinyboard/internal/board"
)

// autoRenderer acks every paint and transition as soon as it sees the frame,
// standing in for a real visual layer.
type autoRenderer struct {
	b *Board
}

func (r *autoRenderer) Render(f Frame) {
	if r.b == nil {
		return
	}
	r.b.FramePainted()
	for _, pv := range f.Pieces {
		if pv.ID != "" {
			r.b.TransitionFinished(pv.ID)
		}
	}
	if f.Drag != nil && f.Drag.Phase != "dragging" {
		r.b.TransitionFinished(DragElementID)
	}
}

func newTestBoard(t *testing.T, cfg Config) *Board {
	t.Helper()
	r := &autoRenderer{}
	cfg.Renderer = r
	b := New(cfg)
	r.b = b
	return b
}

func wait(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitIdle polls until the drag state machine has returned to idle.
func waitIdle(t *testing.T, b *Board) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		idle := b.drag == nil
		b.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("drag state machine never returned to idle")
}

func TestNewLenientPositionFallback(t *testing.T) {
	b := newTestBoard(t, Config{Position: "definitely not a fen"})
	if p := b.Position(); len(p) != 0 {
		t.Fatalf("expected empty board, got %v", p)
	}
	b = newTestBoard(t, Config{Position: "start"})
	if !b.Position().Equal(board.Start()) {
		t.Fatalf("expected start position")
	}
}

func TestSetPositionAnimatedFiresMoveEnd(t *testing.T) {
	done := make(chan struct{})
	var gotOld, gotNew board.Position
	b := newTestBoard(t, Config{Events: Events{
		OnMoveEnd: func(old, new board.Position) {
			gotOld, gotNew = old, new
			close(done)
		},
	}})

	if err := b.SetPosition(board.Position{"e2": "wP"}, true); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	wait(t, done, "move-end")

	if len(gotOld) != 0 || gotNew["e2"] != "wP" {
		t.Fatalf("move-end payload old=%v new=%v", gotOld, gotNew)
	}
	if b.FEN() != "8/8/8/8/8/8/4P3/8" {
		t.Fatalf("FEN = %q", b.FEN())
	}
}

func TestEmptyDiffNeverFiresMoveEnd(t *testing.T) {
	moveEnd := make(chan struct{}, 4)
	b := newTestBoard(t, Config{Position: "start", Events: Events{
		OnMoveEnd: func(_, _ board.Position) { moveEnd <- struct{}{} },
	}})

	// Same position: not even a change, certainly no settlement.
	if err := b.SetPosition("start", true); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	expectQuiet(t, moveEnd, "move-end for a no-op diff")
}

func TestSetPositionInvalidInputs(t *testing.T) {
	var code int
	b := newTestBoard(t, Config{Events: Events{
		OnError: func(c int, _ string) { code = c },
	}})

	if err := b.SetPosition("rubbish fen", false); err == nil {
		t.Fatalf("expected error for bad FEN")
	}
	if code != ErrCodeInvalidFEN {
		t.Fatalf("error code = %d, want %d", code, ErrCodeInvalidFEN)
	}
	if err := b.SetPosition(board.Position{"z9": "wP"}, false); err == nil {
		t.Fatalf("expected error for bad position")
	}
	if code != ErrCodeInvalidPosition {
		t.Fatalf("error code = %d, want %d", code, ErrCodeInvalidPosition)
	}
	if err := b.SetPosition(17, false); err == nil {
		t.Fatalf("expected error for bad type")
	}
}

func TestChangePayloadsAreCopies(t *testing.T) {
	var captured board.Position
	b := newTestBoard(t, Config{Events: Events{
		OnChange: func(_, new board.Position) { captured = new },
	}})
	if err := b.SetPosition(board.Position{"e4": "wP"}, false); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	captured["e4"] = "bQ"
	captured["a1"] = "bR"
	if p := b.Position(); p["e4"] != "wP" || len(p) != 1 {
		t.Fatalf("listener mutated internal position: %v", p)
	}
}

func TestMoveAppliesAndSkipsInvalid(t *testing.T) {
	errs := make(chan int, 4)
	b := newTestBoard(t, Config{Position: "start", Events: Events{
		OnError: func(c int, _ string) { errs <- c },
	}})

	next := b.Move(false, "e2-e4", "bogus", "x9-a1", "d7-d5")
	if next["e4"] != "wP" || next["d5"] != "bP" {
		t.Fatalf("moves not applied: %v", next)
	}
	if _, ok := next["e2"]; ok {
		t.Fatalf("source square e2 not cleared")
	}
	for i := 0; i < 2; i++ {
		select {
		case c := <-errs:
			if c != ErrCodeInvalidMove {
				t.Fatalf("error code = %d, want %d", c, ErrCodeInvalidMove)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing error notification %d", i)
		}
	}
	// A move from an empty square is skipped without an error.
	before := b.Position()
	after := b.Move(false, "a5-a6")
	if !after.Equal(before) {
		t.Fatalf("empty-source move changed position")
	}
	expectQuietInt(t, errs, "error for empty-source move")
}

func expectQuietInt(t *testing.T, ch <-chan int, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFlipAndResize(t *testing.T) {
	b := newTestBoard(t, Config{Position: "start"})
	if o := b.Flip(); o != OrientationBlack {
		t.Fatalf("Flip() = %v", o)
	}
	if o := b.Flip(); o != OrientationWhite {
		t.Fatalf("second Flip() = %v", o)
	}
	b.Resize(640)
	if b.Size() != 640 {
		t.Fatalf("Size() = %d", b.Size())
	}
	b.Resize(0) // forced re-render keeps the layout
	if b.Size() != 640 {
		t.Fatalf("Resize(0) changed size to %d", b.Size())
	}
}

func TestClearBoardAndStartPosition(t *testing.T) {
	b := newTestBoard(t, Config{Position: "start"})
	b.ClearBoard(false)
	if len(b.Position()) != 0 {
		t.Fatalf("board not cleared")
	}
	b.StartPosition(false)
	if !b.Position().Equal(board.Start()) {
		t.Fatalf("board not reset to start")
	}
}
