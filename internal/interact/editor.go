package interact

import "strings"

type Field int

const (
	Title Field = iota
	Content
)

func (f Field) String() string {
	if f == Title {
		return "title"
	}
	return "content"
}

type State int

const (
	Viewing State = iota
	Editing
	Committing
)

const minContentRows = 3

// Editor is the click-to-edit state machine of one note. Both fields
// share a single commit callback that receives the full draft.
type Editor struct {
	title   string
	content string
	states  [2]State

	busy     func() bool
	onCommit func(title, content string)
}

// NewEditor returns an editor seeded with the note text. busy reports
// whether a click should be ignored because the note is being dragged.
func NewEditor(title, content string, busy func() bool, onCommit func(title, content string)) *Editor {
	return &Editor{title: title, content: content, busy: busy, onCommit: onCommit}
}

// Click opens field for editing. Editing moves between fields without a
// commit; the session ends on blur, Enter or a click elsewhere.
func (e *Editor) Click(f Field) bool {
	if e.committing() || (e.busy != nil && e.busy()) {
		return false
	}
	other := otherField(f)
	if e.states[other] == Editing {
		e.states[other] = Viewing
	}
	e.states[f] = Editing
	return true
}

func (e *Editor) Input(f Field, value string) {
	if f == Title {
		e.title = value
		return
	}
	e.content = value
}

// KeyDown applies a key press in field f and reports whether the
// browser default must be prevented.
func (e *Editor) KeyDown(f Field, key string, shift bool) bool {
	if key != "Enter" || e.states[f] != Editing {
		return false
	}
	switch f {
	case Title:
		e.states[Title] = Viewing
		e.states[Content] = Editing
		return true
	default:
		if shift {
			return false
		}
		e.commit()
		return true
	}
}

// Blur commits only when f is still the field being edited, so the blur
// that follows a programmatic focus change is ignored.
func (e *Editor) Blur(f Field) bool {
	if e.states[f] != Editing {
		return false
	}
	return e.commit()
}

// PointerDownOutside commits a running edit when the user presses
// anywhere outside the note.
func (e *Editor) PointerDownOutside() bool {
	if !e.Active() {
		return false
	}
	return e.commit()
}

func (e *Editor) commit() bool {
	if e.committing() {
		return false
	}
	e.states = [2]State{Committing, Committing}
	if e.onCommit != nil {
		e.onCommit(e.title, e.content)
	}
	e.states = [2]State{Viewing, Viewing}
	return true
}

func (e *Editor) committing() bool {
	return e.states[Title] == Committing || e.states[Content] == Committing
}

// Sync adopts the owner's text while nothing is being edited.
func (e *Editor) Sync(title, content string) {
	if e.Active() || e.committing() {
		return
	}
	e.title, e.content = title, content
}

func (e *Editor) State(f Field) State  { return e.states[f] }
func (e *Editor) Editing(f Field) bool { return e.states[f] == Editing }
func (e *Editor) Active() bool         { return e.Editing(Title) || e.Editing(Content) }
func (e *Editor) Title() string        { return e.title }
func (e *Editor) Content() string      { return e.content }

// Focus returns the field that should hold input focus.
func (e *Editor) Focus() (Field, bool) {
	switch {
	case e.Editing(Title):
		return Title, true
	case e.Editing(Content):
		return Content, true
	}
	return Title, false
}

// ContentRows is the textarea height needed to show the whole draft.
func (e *Editor) ContentRows() int {
	if n := strings.Count(e.content, "\n") + 1; n > minContentRows {
		return n
	}
	return minContentRows
}

func otherField(f Field) Field {
	if f == Title {
		return Content
	}
	return Title
}
