package interact

import (
	"strings"

	"github.com/kidandcat/fridge/internal/board"
)

// Z-order levels. Entities start at ZBase, sit at ZResting once they
// have been dragged and rise to ZDragging during a gesture.
const (
	ZBase     = 1
	ZResting  = 10
	ZDragging = 20
)

var interactiveTags = map[string]bool{
	"INPUT":    true,
	"TEXTAREA": true,
	"SELECT":   true,
	"BUTTON":   true,
}

// IsInteractive reports whether a gesture starting on an element with
// the given tag name belongs to that element rather than to a drag.
func IsInteractive(tag string) bool {
	return interactiveTags[strings.ToUpper(tag)]
}

type Drag struct {
	scaler   Scaler
	onCommit func(board.Point)

	pos      board.Point
	z        int
	dragging bool
	moved    bool

	startClient board.Point
	startPos    board.Point
}

func NewDrag(scaler Scaler, pos board.Point, onCommit func(board.Point)) *Drag {
	return &Drag{scaler: scaler, pos: pos, z: ZBase, onCommit: onCommit}
}

// Start begins a gesture at the given client coordinates. It returns
// false when the gesture originates on an interactive element or a
// gesture is already running; the caller must then leave the event alone.
func (d *Drag) Start(clientX, clientY float64, originTag string) bool {
	if d.dragging || IsInteractive(originTag) {
		return false
	}
	d.dragging = true
	d.moved = false
	d.z = ZDragging
	d.startClient = board.Point{X: clientX, Y: clientY}
	d.startPos = d.pos
	return true
}

// Move updates the position from the pointer. The zoom is read on every
// call so a zoom change mid-gesture is honoured from that point on.
func (d *Drag) Move(clientX, clientY float64) (board.Point, bool) {
	if !d.dragging {
		return d.pos, false
	}
	s := d.scale()
	d.pos = board.Point{
		X: d.startPos.X + (clientX-d.startClient.X)/s,
		Y: d.startPos.Y + (clientY-d.startClient.Y)/s,
	}
	if d.pos != d.startPos {
		d.moved = true
	}
	return d.pos, true
}

// End finishes the gesture and reports the final position to the owner
// exactly once.
func (d *Drag) End() (board.Point, bool) {
	if !d.dragging {
		return d.pos, false
	}
	d.dragging = false
	d.z = ZResting
	if d.onCommit != nil {
		d.onCommit(d.pos)
	}
	return d.pos, true
}

// Sync adopts the owner's position. It is ignored mid-gesture.
func (d *Drag) Sync(p board.Point) {
	if !d.dragging {
		d.pos = p
	}
}

func (d *Drag) Position() board.Point { return d.pos }
func (d *Drag) ZIndex() int           { return d.z }
func (d *Drag) Dragging() bool        { return d.dragging }

// Moved reports whether the current or last gesture displaced the entity.
func (d *Drag) Moved() bool { return d.moved }

func (d *Drag) scale() float64 {
	if d.scaler == nil {
		return 1
	}
	if s := d.scaler.Scale(); s > 0 {
		return s
	}
	return 1
}
