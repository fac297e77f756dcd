package widget

import (
	"strings"

	"tinyboard/internal/board"
	"tinyboard/internal/logging"
)

// SetPosition replaces the current position. It accepts a board.Position,
// "start", a FEN string or nil (empty board). Unlike the lenient constructor
// input, an unparseable value here is an error: the error notification fires
// and the error is returned.
//
// With animate set, the change is played through the animation sequencer and
// move-end fires once everything has settled. The current position and the
// change notification are committed immediately either way.
func (b *Board) SetPosition(v any, animate bool) error {
	var next board.Position
	switch x := v.(type) {
	case nil:
		next = board.Position{}
	case string:
		switch {
		case x == "":
			next = board.Position{}
		case x == "start":
			next = board.Start()
		case board.ValidFEN(x):
			next = board.Normalize(x)
		default:
			return b.fail(ErrCodeInvalidFEN, "invalid FEN passed to SetPosition: %q", x)
		}
	case board.Position:
		if !x.Valid() {
			return b.fail(ErrCodeInvalidPosition, "invalid position passed to SetPosition")
		}
		next = x.Copy()
	case map[string]string:
		return b.SetPosition(board.Position(x), animate)
	default:
		return b.fail(ErrCodeInvalidPosition, "invalid value passed to SetPosition: %T", v)
	}
	b.applyPosition(next, animate)
	return nil
}

// StartPosition resets the board to the standard initial position.
func (b *Board) StartPosition(animate bool) {
	b.applyPosition(board.Start(), animate)
}

// ClearBoard removes every piece.
func (b *Board) ClearBoard(animate bool) {
	b.applyPosition(board.Position{}, animate)
}

// Move applies moves of the form "e2-e4" to the current position and returns
// the resulting position. Malformed move strings are reported through the
// error notification and skipped; moves whose source square is empty are
// skipped silently. The batch as a whole never fails.
func (b *Board) Move(animate bool, moves ...string) board.Position {
	b.mu.Lock()
	next := b.position.Copy()
	b.mu.Unlock()

	for _, mv := range moves {
		from, to, ok := splitMove(mv)
		if !ok {
			_ = b.fail(ErrCodeInvalidMove, "invalid move passed to Move: %q", mv)
			continue
		}
		piece, ok := next[from]
		if !ok {
			logging.Debugf("move %s skipped: no piece on %s", mv, from)
			continue
		}
		delete(next, from)
		next[to] = piece
	}

	b.applyPosition(next, animate)
	return next.Copy()
}

func splitMove(mv string) (from, to string, ok bool) {
	parts := strings.Split(mv, "-")
	if len(parts) != 2 || !board.ValidSquare(parts[0]) || !board.ValidSquare(parts[1]) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// applyPosition commits a validated position: change fires immediately and,
// when animating, the diff batch is handed to the sequencer.
func (b *Board) applyPosition(next board.Position, animate bool) {
	b.mu.Lock()
	old := b.position
	if old.Equal(next) {
		b.mu.Unlock()
		return
	}
	var anims []board.Animation
	if animate {
		anims = board.ComputeAnimations(old, next)
	}
	b.position = next
	b.mu.Unlock()

	if b.events.OnChange != nil {
		b.events.OnChange(old.Copy(), next.Copy())
	}
	if animate {
		go b.play(anims, old.Copy(), next.Copy())
	} else {
		b.requestRender()
	}
}

// setCurrentPosition is the drag controller's entry point: it commits the
// position it constructed and fires change, with no diff animation; the
// drag layer carries its own terminal animation.
func (b *Board) setCurrentPosition(next board.Position) {
	b.mu.Lock()
	old := b.position
	if old.Equal(next) {
		b.mu.Unlock()
		return
	}
	b.position = next
	b.mu.Unlock()
	if b.events.OnChange != nil {
		b.events.OnChange(old.Copy(), next.Copy())
	}
}
