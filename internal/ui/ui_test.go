package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/identity"
	"github.com/kidandcat/fridge/internal/interact"
)

func TestNoteClass(t *testing.T) {
	assert.Equal(t, "note note-blue", noteClass(board.Note{Color: board.Blue}, false, false))
	assert.Equal(t, "note note-orange dragging editing", noteClass(board.Note{Color: "pink"}, true, true))
}

func TestNoteShadowAndTransform(t *testing.T) {
	n := board.Note{Rotate: "rotate(2deg)", ShadowHeight: 15, ShadowBlur: 30}
	assert.Equal(t, "0 15px 30px rgba(0, 0, 0, 0.25)", noteShadow(n, false))
	assert.Equal(t, "0 30px 60px rgba(0, 0, 0, 0.25)", noteShadow(n, true))
	assert.Equal(t, "rotate(2deg)", noteTransform(n, false))
	assert.Equal(t, "rotate(2deg) scale(1.05)", noteTransform(n, true))
}

func TestItemTransform(t *testing.T) {
	assert.Equal(t, "scale(1.00)", itemTransform(0))
	assert.Equal(t, "scale(2.50)", itemTransform(2.5))
}

func TestStrokesSVG(t *testing.T) {
	svg := strokesSVG([]board.Stroke{
		{ID: 1, Color: "#e53935", Width: 2, Points: []board.Point{{X: 1, Y: 2}, {X: 3, Y: 4.25}}},
		{ID: 2, Color: "red", Points: nil},
		{ID: 3, Color: `"><script>`, Points: []board.Point{{X: 0, Y: 0}}},
	})

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `d="M1.0 2.0 L3.0 4.2"`)
	assert.Contains(t, svg, `stroke-width="2.0"`)
	assert.Contains(t, svg, `stroke-width="4.0"`)
	assert.NotContains(t, svg, "<script>")
	assert.Equal(t, 2, strings.Count(svg, "<path"))
}

func TestStickersAreDataURIs(t *testing.T) {
	require.NotEmpty(t, Stickers)
	for _, s := range Stickers {
		assert.True(t, strings.HasPrefix(s, "data:image/svg+xml;utf8,"))
		assert.NotContains(t, s, "<")
		assert.NotContains(t, s, "#")
	}
}

func TestKeyAndFieldIDs(t *testing.T) {
	assert.Equal(t, "emoji-7", keyID(interact.Key{Kind: board.KindEmoji, ID: 7}))
	assert.Equal(t, "note-3-title", fieldID(3, interact.Title))
	assert.Equal(t, "note-3-content", fieldID(3, interact.Content))
}

func TestFocusTarget(t *testing.T) {
	s := interact.NewSurface(interact.NewViewport())
	var saved []string
	_, ed := s.TrackNote(board.Note{ID: 3, Title: "T"}, nil, func(title, content string) {
		saved = append(saved, title+"|"+content)
	})

	_, ok := focusTarget(3, ed)
	assert.False(t, ok)

	require.True(t, ed.Click(interact.Title))
	target, ok := focusTarget(3, ed)
	require.True(t, ok)
	assert.Equal(t, "note-3-title", target)

	// Enter in the title moves focus to the content field.
	require.True(t, ed.KeyDown(interact.Title, "Enter", false))
	target, ok = focusTarget(3, ed)
	require.True(t, ok)
	assert.Equal(t, "note-3-content", target)

	ed.Input(interact.Content, "Y")
	ed.Blur(interact.Content)
	_, ok = focusTarget(3, ed)
	assert.False(t, ok)
	assert.Equal(t, []string{"T|Y"}, saved)
}

func TestFitHeight(t *testing.T) {
	assert.Equal(t, "60px", fitHeight(0))
	assert.Equal(t, "143px", fitHeight(143))
}

func TestNoteIDOf(t *testing.T) {
	id, ok := noteIDOf(keyID(interact.NoteKey(42)))
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, s := range []string{"", "emoji-42", "note-", "note-x", "fridge-board"} {
		_, ok := noteIDOf(s)
		assert.False(t, ok, s)
	}
}

func TestTouchGuard(t *testing.T) {
	var g touchGuard
	t0 := time.UnixMilli(1_700_000_000_000)

	assert.False(t, g.skip("mousedown", t0), "mouse before any touch")
	assert.False(t, g.skip("touchstart", t0))
	assert.False(t, g.skip("touchend", t0.Add(120*time.Millisecond)))

	// The tap replayed as mouse events.
	assert.True(t, g.skip("mousedown", t0.Add(400*time.Millisecond)))
	assert.True(t, g.skip("mouseup", t0.Add(410*time.Millisecond)))

	assert.False(t, g.skip("mousedown", t0.Add(2*time.Second)))
	assert.False(t, g.skip("wheel", t0.Add(130*time.Millisecond)))
}

type fakeAuth struct {
	signUpUser *identity.User
	signUpErr  error
	signInErr  error
	signIns    int
}

func (f *fakeAuth) SignIn(context.Context, string, string) (*identity.User, error) {
	f.signIns++
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &identity.User{ID: "u1"}, nil
}

func (f *fakeAuth) SignUp(context.Context, string, string) (*identity.User, error) {
	return f.signUpUser, f.signUpErr
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	signedUp := identity.Text(identity.MsgSignedUp, language.English)
	sent := identity.Text(identity.MsgConfirmationSent, language.English)

	t.Run("sign in", func(t *testing.T) {
		f := &fakeAuth{}
		notice, err := authenticate(ctx, f, "a@b.c", "secret", false, language.English)
		require.NoError(t, err)
		assert.Empty(t, notice)
		assert.Equal(t, 1, f.signIns)
	})

	t.Run("sign up with session", func(t *testing.T) {
		f := &fakeAuth{signUpUser: &identity.User{ID: "u1"}}
		notice, err := authenticate(ctx, f, "a@b.c", "secret", true, language.English)
		require.NoError(t, err)
		assert.Equal(t, signedUp, notice)
		assert.Zero(t, f.signIns)
	})

	t.Run("sign up then sign in", func(t *testing.T) {
		f := &fakeAuth{}
		notice, err := authenticate(ctx, f, "a@b.c", "secret", true, language.English)
		require.NoError(t, err)
		assert.Equal(t, signedUp, notice)
		assert.Equal(t, 1, f.signIns)
	})

	t.Run("sign up pending confirmation", func(t *testing.T) {
		f := &fakeAuth{signInErr: &identity.Error{Kind: identity.EmailNotConfirmed, Message: "Email not confirmed"}}
		notice, err := authenticate(ctx, f, "a@b.c", "secret", true, language.English)
		require.NoError(t, err)
		assert.Equal(t, sent, notice)
	})

	t.Run("sign up rejected", func(t *testing.T) {
		f := &fakeAuth{signUpErr: errors.New("User already registered")}
		_, err := authenticate(ctx, f, "a@b.c", "secret", true, language.English)
		require.Error(t, err)
		assert.Zero(t, f.signIns)
	})
}

func TestFriendFormNote(t *testing.T) {
	f := friendForm{email: "  f@x.io ", title: " Hi ", content: "milk\n"}
	n := f.note()
	assert.Equal(t, "f@x.io", n.Email)
	assert.Equal(t, "Hi", n.Title)
	assert.Equal(t, "milk\n", n.Content)
}
