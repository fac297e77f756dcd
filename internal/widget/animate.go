package widget

import (
	"tinyboard/internal/board"
	"tinyboard/internal/logging"
)

// Animation batch phases. phasePre is the pre-transition frame; after one
// paint the batch flips to phaseTransition and the visual layer interpolates.
const (
	phasePre = iota
	phaseTransition
)

type animBatch struct {
	gen   int
	phase int
	anims []board.Animation
}

// FramePainted reports that the most recent frame is on screen. It releases
// every goroutine waiting on a paint.
func (b *Board) FramePainted() {
	b.mu.Lock()
	ws := b.frameWaiters
	b.frameWaiters = nil
	b.mu.Unlock()
	for _, ch := range ws {
		close(ch)
	}
}

// TransitionFinished reports that the visual transition of one element
// ended. IDs for batch animations appear on the frame's piece views;
// DragElementID names the dragged piece. Unknown or duplicate ids are
// ignored, so several watchers may ack the same element.
func (b *Board) TransitionFinished(id string) {
	b.mu.Lock()
	var ch chan struct{}
	if id == DragElementID {
		ch = b.dragWaiter
		b.dragWaiter = nil
	} else if w, ok := b.animWaiters[id]; ok {
		ch = w
		delete(b.animWaiters, id)
	}
	b.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// registerFrameWaiterLocked arms a channel closed by the next FramePainted.
func (b *Board) registerFrameWaiterLocked() chan struct{} {
	ch := make(chan struct{})
	b.frameWaiters = append(b.frameWaiters, ch)
	return ch
}

// releaseAnimWaitersLocked abandons the pending batch's waiters so a
// preempted sequencing goroutine wakes up and observes its stale generation.
func (b *Board) releaseAnimWaitersLocked() {
	for id, ch := range b.animWaiters {
		delete(b.animWaiters, id)
		close(ch)
	}
}

// play drives one animation batch through the two-phase protocol and fires
// the move-end notification when every transition has finished. An empty
// batch is a no-op: nothing renders and move-end never fires.
//
// A play starting while another is pending replaces it: the generation
// number advances and the older goroutine exits without settling.
func (b *Board) play(anims []board.Animation, old, next board.Position) {
	if len(anims) == 0 {
		return
	}

	b.mu.Lock()
	b.animGen++
	gen := b.animGen
	b.releaseAnimWaitersLocked()
	b.anim = &animBatch{gen: gen, phase: phasePre, anims: anims}
	frameCh := b.registerFrameWaiterLocked()
	f := b.buildFrameLocked()
	r := b.renderer
	b.mu.Unlock()

	// Phase 0: pre-transition styles must hit the screen before the
	// transition starts, or the two states collapse into a jump.
	if r != nil {
		r.Render(f)
	}
	<-frameCh

	b.mu.Lock()
	if b.animGen != gen {
		b.mu.Unlock()
		return
	}
	b.anim.phase = phaseTransition
	waiters := make([]chan struct{}, 0, len(anims))
	for _, a := range anims {
		ch := make(chan struct{})
		b.animWaiters[animID(a)] = ch
		waiters = append(waiters, ch)
	}
	f = b.buildFrameLocked()
	b.mu.Unlock()

	// Phase 1: terminal styles carry the transition durations; the visual
	// layer interpolates and acks each element.
	if r != nil {
		r.Render(f)
	}
	for _, ch := range waiters {
		<-ch
	}

	b.mu.Lock()
	if b.animGen != gen {
		b.mu.Unlock()
		return
	}
	b.anim = nil
	b.mu.Unlock()
	b.requestRender()

	logging.Debugf("animation batch settled: %d directives", len(anims))
	if b.events.OnMoveEnd != nil {
		b.events.OnMoveEnd(old.Copy(), next.Copy())
	}
}
