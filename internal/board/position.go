// Package board implements the position model for a chess board widget:
// a square→piece mapping, placement-only FEN conversion, and the animation
// diff between two positions. It deliberately knows nothing about chess
// rules; any syntactically valid placement is accepted.
package board

import (
	"errors"
	"sort"
	"strings"
)

// Position maps a square code ("e4") to a piece code ("wP").
// Absent key means empty square.
type Position map[string]string

var (
	ErrInvalidFEN      = errors.New("invalid FEN string")
	ErrInvalidPosition = errors.New("invalid position object")
)

// StartFEN is the piece placement of the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// ValidSquare reports whether s is a square code in [a-h][1-8].
func ValidSquare(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// ValidPiece reports whether p is a piece code in [bw][KQRNBP].
func ValidPiece(p string) bool {
	if len(p) != 2 {
		return false
	}
	if p[0] != 'b' && p[0] != 'w' {
		return false
	}
	return strings.IndexByte("KQRNBP", p[1]) >= 0
}

// Valid reports whether every key and value of p satisfies the square and
// piece grammars.
func (p Position) Valid() bool {
	for sq, pc := range p {
		if !ValidSquare(sq) || !ValidPiece(pc) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of p. Event payloads always carry copies so
// listeners can never alias the live position.
func (p Position) Copy() Position {
	out := make(Position, len(p))
	for sq, pc := range p {
		out[sq] = pc
	}
	return out
}

// Equal reports whether p and q place the same pieces on the same squares.
func (p Position) Equal(q Position) bool {
	if len(p) != len(q) {
		return false
	}
	for sq, pc := range p {
		if q[sq] != pc {
			return false
		}
	}
	return true
}

// Start returns the standard initial position.
func Start() Position {
	p, _ := FromFEN(StartFEN)
	return p
}

// Normalize coerces the accepted position inputs to a Position:
// nil or "" → empty position, "start" → initial position, a valid FEN →
// decoded position, a valid Position → a copy of it. Anything else resolves
// to an empty position; the fallback is silent on purpose.
func Normalize(v any) Position {
	switch x := v.(type) {
	case nil:
		return Position{}
	case string:
		if x == "" {
			return Position{}
		}
		if x == "start" {
			return Start()
		}
		if p, err := FromFEN(x); err == nil {
			return p
		}
		return Position{}
	case Position:
		if x.Valid() {
			return x.Copy()
		}
		return Position{}
	case map[string]string:
		return Normalize(Position(x))
	}
	return Position{}
}

// squares is the fixed column-major enumeration a1..a8, b1..b8, ..., h8.
// The diff engine depends on this order for deterministic tie-breaking.
var squares = buildSquares()

func buildSquares() []string {
	out := make([]string, 0, 64)
	for f := byte('a'); f <= 'h'; f++ {
		for r := byte('1'); r <= '8'; r++ {
			out = append(out, string([]byte{f, r}))
		}
	}
	return out
}

// sortedSquares returns the keys of p in the column-major enumeration order.
func sortedSquares(p Position) []string {
	out := make([]string, 0, len(p))
	for sq := range p {
		out = append(out, sq)
	}
	sort.Strings(out)
	return out
}

// Distance is the Chebyshev distance between two squares:
// max(|Δfile|, |Δrank|).
func Distance(a, b string) int {
	df := int(a[0]) - int(b[0])
	if df < 0 {
		df = -df
	}
	dr := int(a[1]) - int(b[1])
	if dr < 0 {
		dr = -dr
	}
	if df >= dr {
		return df
	}
	return dr
}
