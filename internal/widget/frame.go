package widget

import (
	"sort"

	"tinyboard/internal/board"
)

// Renderer receives frame snapshots. Implementations report back through
// Board.FramePainted and Board.TransitionFinished; the board never calls
// Render while holding its lock, so both may be invoked synchronously.
type Renderer interface {
	Render(f Frame)
}

// Animation phases carried on a PieceView. The "-start" phases are the
// pre-transition frame and are replaced by their terminal form after one
// paint; they never appear outside a frame.
const (
	PhaseMoveStart = "move-start"
	PhaseMove      = "move"
	PhaseAddStart  = "add-start"
	PhaseAdd       = "add"
	PhaseClear     = "clear"
)

// Frame is a complete visual snapshot of the board.
type Frame struct {
	Orientation Orientation       `json:"orientation"`
	Size        int               `json:"size"`
	Pieces      []PieceView       `json:"pieces"`
	Highlights  map[string]string `json:"highlights,omitempty"`
	Drag        *DragView         `json:"drag,omitempty"`
}

// PieceView is one piece on the board. ID is set for animating pieces and is
// the token expected back through TransitionFinished.
type PieceView struct {
	Square   string `json:"square"`
	Piece    string `json:"piece"`
	Phase    string `json:"phase,omitempty"`
	From     string `json:"from,omitempty"`
	Duration int    `json:"durationMs,omitempty"`
	ID       string `json:"id,omitempty"`
}

// DragView is the piece attached to the pointer. During the terminal phases
// the renderer animates it and acks with TransitionFinished(DragElementID).
type DragView struct {
	Piece    string `json:"piece"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Phase    string `json:"phase"`
	Source   string `json:"source"`
	Location string `json:"location,omitempty"`
	Duration int    `json:"durationMs,omitempty"`
}

// DragElementID identifies the dragged piece in TransitionFinished calls.
const DragElementID = "drag"

func animID(a board.Animation) string {
	return a.Kind.String() + ":" + a.Square
}

func (b *Board) animDuration(k board.AnimKind) int {
	switch k {
	case board.AnimMove:
		return b.cfg.MoveSpeed
	case board.AnimAdd:
		return b.cfg.AppearSpeed
	default:
		return b.cfg.TrashSpeed
	}
}

// buildFrameLocked snapshots the current visual state. Caller holds b.mu.
func (b *Board) buildFrameLocked() Frame {
	f := Frame{
		Orientation: b.orientation,
		Size:        b.size,
	}
	if len(b.highlights) > 0 {
		f.Highlights = make(map[string]string, len(b.highlights))
		for sq, style := range b.highlights {
			f.Highlights[sq] = style
		}
	}

	// Index the active batch by destination square. Clears have no piece in
	// the committed position and are appended as fading extras below.
	arrivals := make(map[string]board.Animation)
	var clears []board.Animation
	pre := false
	if b.anim != nil {
		pre = b.anim.phase == phasePre
		for _, a := range b.anim.anims {
			if a.Kind == board.AnimClear {
				clears = append(clears, a)
			} else {
				arrivals[a.Square] = a
			}
		}
	}

	// While a drag exists its piece lives on the drag layer, so the square it
	// occupies (source while dragging or snapping back, destination while
	// snapping in) renders empty until the drag state is destroyed.
	hidden := ""
	if d := b.drag; d != nil {
		switch d.kind {
		case dragDragging, dragResolving, dragSnapback:
			if board.ValidSquare(d.source) {
				hidden = d.source
			}
		case dragSnap:
			if board.ValidSquare(d.location) {
				hidden = d.location
			}
		}
	}

	for sq, pc := range b.position {
		if sq == hidden {
			continue
		}
		pv := PieceView{Square: sq, Piece: pc}
		if a, ok := arrivals[sq]; ok {
			pv.ID = animID(a)
			pv.Duration = b.animDuration(a.Kind)
			switch {
			case a.Kind == board.AnimMove && pre:
				pv.Phase = PhaseMoveStart
				pv.From = a.Source
			case a.Kind == board.AnimMove:
				pv.Phase = PhaseMove
				pv.From = a.Source
			case pre:
				pv.Phase = PhaseAddStart
			default:
				pv.Phase = PhaseAdd
			}
		}
		f.Pieces = append(f.Pieces, pv)
	}
	for _, a := range clears {
		f.Pieces = append(f.Pieces, PieceView{
			Square:   a.Square,
			Piece:    a.Piece,
			Phase:    PhaseClear,
			Duration: b.animDuration(a.Kind),
			ID:       animID(a),
		})
	}

	sort.Slice(f.Pieces, func(i, j int) bool {
		if f.Pieces[i].Square != f.Pieces[j].Square {
			return f.Pieces[i].Square < f.Pieces[j].Square
		}
		return f.Pieces[i].Phase < f.Pieces[j].Phase
	})

	if d := b.drag; d != nil {
		dv := &DragView{
			Piece:    d.piece,
			X:        d.x,
			Y:        d.y,
			Phase:    d.kind.String(),
			Source:   d.source,
			Location: d.location,
		}
		switch d.kind {
		case dragSnapback:
			dv.Duration = b.cfg.SnapbackSpeed
		case dragSnap:
			dv.Duration = b.cfg.SnapSpeed
		case dragTrash:
			dv.Duration = b.cfg.TrashSpeed
		}
		f.Drag = dv
	}
	return f
}
