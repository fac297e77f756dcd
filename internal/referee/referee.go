// Package referee answers legality questions for the demo shell by handing a
// placement to the chess engine. The board widget itself never consults it;
// illegal drops still land. It only feeds the available/unavailable square
// hints shown while a piece is being dragged.
package referee

import (
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"
)

// Referee computes legal moves for arbitrary placements.
type Referee struct{}

// New returns a Referee.
func New() *Referee {
	return &Referee{}
}

// Targets returns the legal destination squares for the piece on source,
// treating color ('w' or 'b') as the side to move. The placement is a
// piece-placement FEN; positions the engine rejects (say, a board with no
// kings) return an error and the caller simply shows no hints.
func (r *Referee) Targets(placement, source string, color byte) ([]string, error) {
	fenOpt, err := chess.FEN(fmt.Sprintf("%s %c - - 0 1", placement, color))
	if err != nil {
		return nil, fmt.Errorf("referee: %w", err)
	}
	game := chess.NewGame(fenOpt)

	var out []string
	for _, m := range game.ValidMoves() {
		uci := m.String()
		if strings.HasPrefix(uci, source) && len(uci) >= 4 {
			out = append(out, uci[2:4])
		}
	}
	return out, nil
}
