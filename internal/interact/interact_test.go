package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/fridge/internal/board"
)

func TestViewport_Clamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{10, MinZoom},
		{50, 50},
		{87.5, 87.5},
		{150, 150},
		{400, MaxZoom},
	}
	for _, tt := range tests {
		v := NewViewport()
		assert.Equal(t, tt.want, v.SetZoom(tt.in))
	}
}

func TestViewport_StepsAndWheel(t *testing.T) {
	v := NewViewport()
	var seen []float64
	v.OnChange(func(z float64) { seen = append(seen, z) })

	assert.Equal(t, 110.0, v.ZoomIn())
	assert.Equal(t, 100.0, v.ZoomOut())

	assert.False(t, v.Wheel(-100, false), "plain scroll is left to the page")
	assert.Equal(t, 100.0, v.Zoom())

	assert.True(t, v.Wheel(-100, true))
	assert.Equal(t, 110.0, v.Zoom())
	assert.True(t, v.Wheel(1000, true))
	assert.Equal(t, MinZoom, v.Zoom())

	assert.Equal(t, []float64{110, 100, 110, 50}, seen)
	assert.Equal(t, "scale(0.5)", v.Transform())
	assert.Equal(t, "50%", v.Label())
}

func TestViewport_ToLogical(t *testing.T) {
	v := NewViewport()
	for z := MinZoom; z <= MaxZoom; z += 5 {
		v.SetZoom(z)
		dx, dy := v.ToLogical(30, -12)
		assert.InDelta(t, 30/(z/100), dx, 1e-9)
		assert.InDelta(t, -12/(z/100), dy, 1e-9)
	}
}

func TestDrag_FinalPositionIsLastMove(t *testing.T) {
	v := NewViewport()
	var commits []board.Point
	d := NewDrag(v, board.Point{X: 100, Y: 100}, func(p board.Point) { commits = append(commits, p) })

	require.True(t, d.Start(0, 0, "DIV"))
	assert.True(t, d.Dragging())
	assert.Equal(t, ZDragging, d.ZIndex())

	for i := 1; i <= 40; i++ {
		d.Move(float64(i*7%31), float64(i*3%17))
	}
	last, ok := d.Move(150, 80)
	require.True(t, ok)

	p, ok := d.End()
	require.True(t, ok)
	assert.Equal(t, last, p)
	assert.Equal(t, board.Point{X: 250, Y: 180}, p)
	assert.Equal(t, []board.Point{{X: 250, Y: 180}}, commits)
	assert.Equal(t, ZResting, d.ZIndex())
	assert.False(t, d.Dragging())

	_, ok = d.End()
	assert.False(t, ok, "a second end emits nothing")
	assert.Len(t, commits, 1)
}

func TestDrag_ScaledByZoom(t *testing.T) {
	v := NewViewport()
	v.SetZoom(50)
	var got board.Point
	d := NewDrag(v, board.Point{X: 10, Y: 20}, func(p board.Point) { got = p })

	require.True(t, d.Start(300, 300, "div"))
	d.Move(375, 340)
	d.End()

	assert.Equal(t, board.Point{X: 160, Y: 100}, got)
}

func TestDrag_IgnoresInteractiveOrigins(t *testing.T) {
	for _, tag := range []string{"INPUT", "textarea", "Button", "SELECT"} {
		d := NewDrag(NewViewport(), board.Point{}, nil)
		assert.False(t, d.Start(0, 0, tag), tag)
		assert.False(t, d.Dragging())
		assert.Equal(t, ZBase, d.ZIndex())
	}
}

func TestDrag_EndWithoutMoveStillCommits(t *testing.T) {
	n := 0
	d := NewDrag(NewViewport(), board.Point{X: 5, Y: 5}, func(board.Point) { n++ })
	d.Start(1, 1, "DIV")
	p, _ := d.End()
	assert.Equal(t, board.Point{X: 5, Y: 5}, p)
	assert.Equal(t, 1, n)
	assert.False(t, d.Moved())
}

func TestDrag_SyncIgnoredWhileDragging(t *testing.T) {
	d := NewDrag(NewViewport(), board.Point{}, nil)
	d.Start(0, 0, "DIV")
	d.Move(10, 10)
	d.Sync(board.Point{X: 99, Y: 99})
	assert.Equal(t, board.Point{X: 10, Y: 10}, d.Position())
	d.End()
	d.Sync(board.Point{X: 99, Y: 99})
	assert.Equal(t, board.Point{X: 99, Y: 99}, d.Position())
}

type commit struct{ title, content string }

func newRecordingEditor(busy *bool) (*Editor, *[]commit) {
	var got []commit
	ed := NewEditor("Buy Milk", "today", func() bool { return busy != nil && *busy }, func(title, content string) {
		got = append(got, commit{title, content})
	})
	return ed, &got
}

func TestEditor_TitleEnterThenContentBlur(t *testing.T) {
	ed, got := newRecordingEditor(nil)

	require.True(t, ed.Click(Title))
	ed.Input(Title, "X")
	assert.True(t, ed.KeyDown(Title, "Enter", false))
	assert.Empty(t, *got, "title enter must not commit")
	assert.Equal(t, Editing, ed.State(Content))
	assert.Equal(t, Viewing, ed.State(Title))

	// The browser fires blur on the title when focus moves to content.
	assert.False(t, ed.Blur(Title))

	ed.Input(Content, "Y")
	assert.True(t, ed.Blur(Content))

	assert.Equal(t, []commit{{"X", "Y"}}, *got)
	assert.False(t, ed.Active())
}

func TestEditor_SwitchingFieldsIsOneSession(t *testing.T) {
	ed, got := newRecordingEditor(nil)

	ed.Click(Content)
	ed.Input(Content, "draft")
	ed.Click(Title)
	ed.Blur(Content)
	ed.Input(Title, "new title")
	assert.Empty(t, *got)

	ed.Blur(Title)
	assert.Equal(t, []commit{{"new title", "draft"}}, *got)
}

func TestEditor_ContentKeys(t *testing.T) {
	ed, got := newRecordingEditor(nil)
	ed.Click(Content)

	assert.False(t, ed.KeyDown(Content, "Enter", true), "shift+enter inserts a newline")
	assert.False(t, ed.KeyDown(Content, "a", false))
	assert.Empty(t, *got)

	assert.True(t, ed.KeyDown(Content, "Enter", false))
	assert.Len(t, *got, 1)

	// Enter's focus loss must not fire a second commit.
	ed.Blur(Content)
	assert.Len(t, *got, 1)
}

func TestEditor_ClickIgnoredWhileBusy(t *testing.T) {
	busy := true
	ed, _ := newRecordingEditor(&busy)
	assert.False(t, ed.Click(Title))
	assert.False(t, ed.Active())

	busy = false
	assert.True(t, ed.Click(Title))
}

func TestEditor_PointerDownOutside(t *testing.T) {
	ed, got := newRecordingEditor(nil)
	assert.False(t, ed.PointerDownOutside())

	ed.Click(Title)
	assert.True(t, ed.PointerDownOutside())
	assert.False(t, ed.PointerDownOutside())
	assert.Len(t, *got, 1)
}

func TestEditor_ReentrantCommitIgnored(t *testing.T) {
	var ed *Editor
	n := 0
	ed = NewEditor("", "", nil, func(string, string) {
		n++
		ed.Blur(Content)
		ed.PointerDownOutside()
	})
	ed.Click(Content)
	ed.Blur(Content)
	assert.Equal(t, 1, n)
}

func TestEditor_ContentRows(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 3},
		{"a\nb", 3},
		{"a\nb\nc\nd", 4},
		{"1\n2\n3\n4\n5\n6", 6},
	}
	for _, tt := range tests {
		ed := NewEditor("", tt.content, nil, nil)
		assert.Equal(t, tt.want, ed.ContentRows(), tt.content)
	}
}

func TestEditor_SyncOnlyWhenViewing(t *testing.T) {
	ed, _ := newRecordingEditor(nil)
	ed.Click(Title)
	ed.Input(Title, "draft")
	ed.Sync("remote", "remote")
	assert.Equal(t, "draft", ed.Title())

	ed.PointerDownOutside()
	ed.Sync("remote", "body")
	assert.Equal(t, "remote", ed.Title())
	assert.Equal(t, "body", ed.Content())
}

func TestSurface_DragNoteThroughBoard(t *testing.T) {
	vp := NewViewport()
	s := NewSurface(vp)
	var committed board.Point
	note := board.Note{ID: 5, X: 100, Y: 100}
	s.TrackNote(note, func(p board.Point) { committed = p }, nil)

	require.True(t, s.PointerDown(NoteKey(5), 10, 10, "DIV"))
	assert.Equal(t, ZDragging, s.ZIndex(NoteKey(5)))
	k, p, ok := s.PointerMove(160, 90)
	require.True(t, ok)
	assert.Equal(t, NoteKey(5), k)
	assert.Equal(t, board.Point{X: 250, Y: 180}, p)

	_, _, ok = s.PointerUp()
	require.True(t, ok)
	assert.Equal(t, board.Point{X: 250, Y: 180}, committed)
	assert.Equal(t, ZResting, s.ZIndex(NoteKey(5)))

	_, _, ok = s.PointerMove(0, 0)
	assert.False(t, ok)
}

func TestSurface_PointerDownCommitsOtherNotes(t *testing.T) {
	s := NewSurface(NewViewport())
	var commits []int64
	for _, id := range []int64{1, 2} {
		id := id
		s.TrackNote(board.Note{ID: id}, nil, func(string, string) { commits = append(commits, id) })
	}
	ed1, _ := s.Editor(1)
	ed2, _ := s.Editor(2)
	ed1.Click(Title)
	ed2.Click(Content)

	// A press inside note 2's textarea commits note 1 only and starts no drag.
	assert.False(t, s.PointerDown(NoteKey(2), 0, 0, "TEXTAREA"))
	assert.Equal(t, []int64{1}, commits)
	assert.True(t, ed2.Active())

	s.PointerDownBackground()
	assert.Equal(t, []int64{1, 2}, commits)
}

func TestSurface_CommitEditorsExcept(t *testing.T) {
	s := NewSurface(NewViewport())
	var commits []int64
	for _, id := range []int64{1, 2, 3} {
		id := id
		s.TrackNote(board.Note{ID: id}, nil, func(string, string) { commits = append(commits, id) })
	}
	ed1, _ := s.Editor(1)
	ed2, _ := s.Editor(2)
	ed1.Click(Title)
	ed2.Click(Content)

	// A press on the header or toolbar is outside every note.
	s.CommitEditorsExcept(Key{Kind: board.KindEmoji, ID: 2})
	assert.ElementsMatch(t, []int64{1, 2}, commits)
	assert.False(t, ed1.Active())
	assert.False(t, ed2.Active())

	commits = nil
	ed1.Click(Content)
	s.CommitEditorsExcept(NoteKey(1))
	assert.Empty(t, commits)
	assert.True(t, ed1.Active())
}

func TestSurface_ClickAfterDragDoesNotEdit(t *testing.T) {
	s := NewSurface(NewViewport())
	s.TrackNote(board.Note{ID: 1}, func(board.Point) {}, nil)
	ed, _ := s.Editor(1)

	s.PointerDown(NoteKey(1), 0, 0, "DIV")
	s.PointerMove(30, 30)
	s.PointerUp()
	assert.False(t, ed.Click(Title))

	s.PointerDown(NoteKey(1), 0, 0, "DIV")
	s.PointerUp()
	assert.True(t, ed.Click(Title))
}

func TestSurface_OneGestureAtATime(t *testing.T) {
	s := NewSurface(NewViewport())
	s.Track(Key{Kind: board.KindEmoji, ID: 1}, board.Point{}, nil)
	s.Track(Key{Kind: board.KindImage, ID: 2}, board.Point{}, nil)

	require.True(t, s.PointerDown(Key{Kind: board.KindEmoji, ID: 1}, 0, 0, "SPAN"))
	assert.False(t, s.PointerDown(Key{Kind: board.KindImage, ID: 2}, 0, 0, "IMG"))
	k, _, _ := s.PointerUp()
	assert.Equal(t, Key{Kind: board.KindEmoji, ID: 1}, k)
}

func TestSurface_RetainAndPosition(t *testing.T) {
	s := NewSurface(NewViewport())
	a := Key{Kind: board.KindEmoji, ID: 1}
	b := NoteKey(2)
	s.Track(a, board.Point{X: 1, Y: 1}, nil)
	s.TrackNote(board.Note{ID: 2, X: 2, Y: 2}, nil, nil)

	s.Retain(map[Key]bool{a: true})
	assert.Equal(t, board.Point{X: 1, Y: 1}, s.Position(a, board.Point{}))
	assert.Equal(t, board.Point{X: 9, Y: 9}, s.Position(b, board.Point{X: 9, Y: 9}))
	_, ok := s.Editor(2)
	assert.False(t, ok)
	assert.Equal(t, ZBase, s.ZIndex(b))
}
