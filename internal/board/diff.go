package board

import "sort"

// AnimKind tags an animation directive.
type AnimKind int

const (
	// AnimMove slides a piece from Source to Square.
	AnimMove AnimKind = iota
	// AnimAdd fades a piece in on Square.
	AnimAdd
	// AnimClear fades the piece on Square out.
	AnimClear
)

func (k AnimKind) String() string {
	switch k {
	case AnimMove:
		return "move"
	case AnimAdd:
		return "add"
	case AnimClear:
		return "clear"
	default:
		return "?"
	}
}

// Animation is one square's visual transition during a position change.
// Square is the destination for moves and adds, and the vacated square for
// clears. Source is set for moves only.
type Animation struct {
	Kind   AnimKind
	Square string
	Source string
	Piece  string
}

// ComputeAnimations computes the minimal animation batch that transforms
// prev into next: unchanged squares are dropped, every next-square is matched
// to the nearest same-piece source in prev (consuming it), leftovers become
// adds and clears. A clear on the destination of a move in the same batch is
// suppressed: the capture is overwritten by the arriving piece.
//
// Both positions are assumed well formed; the codec validated them earlier.
func ComputeAnimations(prev, next Position) []Animation {
	pool := prev.Copy()
	todo := next.Copy()

	for sq, pc := range todo {
		if pool[sq] == pc {
			delete(pool, sq)
			delete(todo, sq)
		}
	}

	var anims []Animation
	movedTo := make(map[string]bool)

	// Match moves first. Walk the remaining next-squares in the fixed
	// column-major enumeration so results do not depend on map order.
	for _, sq := range sortedSquares(todo) {
		pc := todo[sq]
		src, ok := findClosestPiece(pool, pc, sq)
		if !ok {
			continue
		}
		anims = append(anims, Animation{Kind: AnimMove, Square: sq, Source: src, Piece: pc})
		delete(pool, src)
		delete(todo, sq)
		movedTo[sq] = true
	}

	for _, sq := range sortedSquares(todo) {
		anims = append(anims, Animation{Kind: AnimAdd, Square: sq, Piece: todo[sq]})
	}

	for _, sq := range sortedSquares(pool) {
		if movedTo[sq] {
			continue
		}
		anims = append(anims, Animation{Kind: AnimClear, Square: sq, Piece: pool[sq]})
	}

	return anims
}

// findClosestPiece finds the square in pool holding piece that is nearest to
// target by Chebyshev distance. Ties break by the column-major square
// enumeration, preserved by the stable sort.
func findClosestPiece(pool Position, piece, target string) (string, bool) {
	ring := make([]string, len(squares))
	copy(ring, squares)
	sort.SliceStable(ring, func(i, j int) bool {
		return Distance(ring[i], target) < Distance(ring[j], target)
	})
	for _, sq := range ring {
		if pool[sq] == piece {
			return sq, true
		}
	}
	return "", false
}
