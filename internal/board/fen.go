package board

import (
	"fmt"
	"strings"
)

// fenToPiece maps a FEN piece character to a piece code. Uppercase is white,
// lowercase is black.
var fenToPiece = map[byte]string{
	'P': "wP", 'N': "wN", 'B': "wB", 'R': "wR", 'Q': "wQ", 'K': "wK",
	'p': "bP", 'n': "bN", 'b': "bB", 'r': "bR", 'q': "bQ", 'k': "bK",
}

// pieceToFEN is the inverse of fenToPiece.
var pieceToFEN = map[string]byte{
	"wP": 'P', "wN": 'N', "wB": 'B', "wR": 'R', "wQ": 'Q', "wK": 'K',
	"bP": 'p', "bN": 'n', "bB": 'b', "bR": 'r', "bQ": 'q', "bK": 'k',
}

// ToFEN serializes a position to the piece-placement field of FEN: ranks
// 8→1 joined by "/", files a→h within a rank, runs of empty squares
// collapsed to their count.
func ToFEN(p Position) string {
	var b strings.Builder
	for rank := byte('8'); rank >= '1'; rank-- {
		empties := 0
		for file := byte('a'); file <= 'h'; file++ {
			pc, ok := p[string([]byte{file, rank})]
			if !ok {
				empties++
				continue
			}
			if empties > 0 {
				b.WriteByte('0' + byte(empties))
				empties = 0
			}
			b.WriteByte(pieceToFEN[pc])
		}
		if empties > 0 {
			b.WriteByte('0' + byte(empties))
		}
		if rank > '1' {
			b.WriteByte('/')
		}
	}
	return b.String()
}

// FromFEN decodes the piece-placement field of a FEN string. Any trailing
// fields (side to move, castling, ...) are ignored so full six-field FEN is
// accepted too. The placement must decompose into exactly 8 ranks of exactly
// 8 square-units each, with no characters outside [kqrnbpKQRNBP1-8].
func FromFEN(fen string) (Position, error) {
	placement := fen
	if i := strings.IndexByte(fen, ' '); i >= 0 {
		placement = fen[:i]
	}
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	pos := make(Position)
	for i, row := range ranks {
		rank := byte('8' - i)
		file := byte('a')
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += ch - '0'
				continue
			}
			pc, ok := fenToPiece[ch]
			if !ok {
				return nil, fmt.Errorf("%w: bad character %q", ErrInvalidFEN, ch)
			}
			if file > 'h' {
				return nil, fmt.Errorf("%w: rank %c overflows", ErrInvalidFEN, rank)
			}
			pos[string([]byte{file, rank})] = pc
			file++
		}
		if file != 'h'+1 {
			return nil, fmt.Errorf("%w: rank %c has wrong width", ErrInvalidFEN, rank)
		}
	}
	return pos, nil
}

// ValidFEN reports whether fen decodes to a position.
func ValidFEN(fen string) bool {
	_, err := FromFEN(fen)
	return err == nil
}
