package interact

import "github.com/kidandcat/fridge/internal/board"

// Key identifies an entity across kinds.
type Key struct {
	Kind board.Kind
	ID   int64
}

func NoteKey(id int64) Key { return Key{Kind: board.KindNote, ID: id} }

// Surface keeps the drag and edit state of every entity on screen and
// routes one pointer gesture at a time to its owner.
type Surface struct {
	vp      *Viewport
	drags   map[Key]*Drag
	editors map[int64]*Editor

	active    Key
	hasActive bool
}

func NewSurface(vp *Viewport) *Surface {
	return &Surface{
		vp:      vp,
		drags:   make(map[Key]*Drag),
		editors: make(map[int64]*Editor),
	}
}

func (s *Surface) Viewport() *Viewport { return s.vp }

// Track returns the drag controller for k, creating it on first use.
// An idle controller adopts pos so board updates show through.
func (s *Surface) Track(k Key, pos board.Point, commit func(board.Point)) *Drag {
	d, ok := s.drags[k]
	if !ok {
		d = NewDrag(s.vp, pos, commit)
		s.drags[k] = d
		return d
	}
	d.Sync(pos)
	return d
}

// TrackNote registers a note's drag controller and inline editor.
func (s *Surface) TrackNote(n board.Note, commitPos func(board.Point), commitText func(title, content string)) (*Drag, *Editor) {
	k := NoteKey(n.ID)
	d := s.Track(k, n.Pos(), commitPos)
	ed, ok := s.editors[n.ID]
	if !ok {
		ed = NewEditor(n.Title, n.Content, func() bool {
			return d.Dragging() || d.Moved()
		}, commitText)
		s.editors[n.ID] = ed
	} else {
		ed.Sync(n.Title, n.Content)
	}
	return d, ed
}

func (s *Surface) Editor(id int64) (*Editor, bool) {
	ed, ok := s.editors[id]
	return ed, ok
}

// PointerDown handles a press on entity k. Edits running on other notes
// are committed first. It reports whether a drag started, in which case
// the event must not propagate further.
func (s *Surface) PointerDown(k Key, clientX, clientY float64, originTag string) bool {
	s.CommitEditorsExcept(k)
	if s.hasActive {
		return false
	}
	d, ok := s.drags[k]
	if !ok || !d.Start(clientX, clientY, originTag) {
		return false
	}
	s.active, s.hasActive = k, true
	return true
}

// PointerDownBackground handles a press on empty board space.
func (s *Surface) PointerDownBackground() {
	s.CommitEditorsExcept(Key{Kind: -1})
}

// CommitEditorsExcept treats a press anywhere outside note k as a press
// outside every other running edit.
func (s *Surface) CommitEditorsExcept(k Key) {
	for id, ed := range s.editors {
		if k.Kind == board.KindNote && k.ID == id {
			continue
		}
		ed.PointerDownOutside()
	}
}

// PointerMove forwards a move to the active gesture, if any.
func (s *Surface) PointerMove(clientX, clientY float64) (Key, board.Point, bool) {
	if !s.hasActive {
		return Key{}, board.Point{}, false
	}
	d := s.drags[s.active]
	p, ok := d.Move(clientX, clientY)
	return s.active, p, ok
}

// PointerUp ends the active gesture; the owner's commit callback fires
// from inside.
func (s *Surface) PointerUp() (Key, board.Point, bool) {
	if !s.hasActive {
		return Key{}, board.Point{}, false
	}
	k := s.active
	s.hasActive = false
	d, ok := s.drags[k]
	if !ok {
		return k, board.Point{}, false
	}
	p, ok := d.End()
	return k, p, ok
}

// Active returns the entity currently being dragged.
func (s *Surface) Active() (Key, bool) { return s.active, s.hasActive }

func (s *Surface) Forget(k Key) {
	delete(s.drags, k)
	if k.Kind == board.KindNote {
		delete(s.editors, k.ID)
	}
	if s.hasActive && s.active == k {
		s.hasActive = false
	}
}

// Retain drops state for every entity not listed in live.
func (s *Surface) Retain(live map[Key]bool) {
	for k := range s.drags {
		if !live[k] {
			s.Forget(k)
		}
	}
}

// Position is where k should be rendered: the live drag position when
// tracked, fallback otherwise.
func (s *Surface) Position(k Key, fallback board.Point) board.Point {
	if d, ok := s.drags[k]; ok {
		return d.Position()
	}
	return fallback
}

func (s *Surface) ZIndex(k Key) int {
	if d, ok := s.drags[k]; ok {
		return d.ZIndex()
	}
	return ZBase
}

func (s *Surface) Dragging(k Key) bool {
	d, ok := s.drags[k]
	return ok && d.Dragging()
}
