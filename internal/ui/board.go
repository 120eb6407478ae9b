package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/identity"
	"github.com/kidandcat/fridge/internal/interact"
	"github.com/kidandcat/fridge/internal/services"
)

type panel int

const (
	panelNone panel = iota
	panelEmoji
	panelSticker
	panelFriend
)

// BoardView is the fridge door of one user.
type BoardView struct {
	app.Compo

	Services *services.Services
	User     *identity.User

	board     *board.Board
	viewport  *interact.Viewport
	surface   *interact.Surface
	loaded    bool
	unsub     func()
	listeners []func()
	touch     touchGuard

	// Freehand drawing
	drawing     bool
	strokeColor string
	stroke      int64

	// Chrome
	menuOpen bool
	panel    panel
	friend   friendForm
	status   string
}

func (v *BoardView) OnInit() {
	v.viewport = interact.NewViewport()
	v.surface = interact.NewSurface(v.viewport)
	v.strokeColor = StrokeColors[0]
}

func (v *BoardView) OnMount(ctx app.Context) {
	log := v.Services.Log.With("user_id", v.User.ID)
	v.board = board.New(v.Services.Notes,
		board.WithAsync(ctx.Async),
		board.WithLogger(log.With("component", "board")),
	)
	v.unsub = v.board.Subscribe(func(ev board.Event) {
		ctx.Dispatch(func(ctx app.Context) {
			if ev.Op == board.OpHydrate {
				v.loaded = true
			}
		})
	})
	v.listen(ctx)

	b, userID := v.board, v.User.ID
	ctx.Async(func() {
		if err := b.Bootstrap(ctx, userID); err != nil {
			log.Warn("load notes failed", "error", err)
		}
	})
}

func (v *BoardView) OnDismount() {
	if v.unsub != nil {
		v.unsub()
	}
	for _, remove := range v.listeners {
		remove()
	}
	v.listeners = nil
}

// compatDelay is how long mouse events are ignored after a touch. Browsers
// replay a tap as mousedown and mouseup once the touch sequence is done.
const compatDelay = 800 * time.Millisecond

type touchGuard struct {
	last time.Time
}

// skip records touches and reports whether e is a replayed mouse event.
func (g *touchGuard) skip(kind string, now time.Time) bool {
	if strings.HasPrefix(kind, "touch") {
		g.last = now
		return false
	}
	return strings.HasPrefix(kind, "mouse") && !g.last.IsZero() && now.Sub(g.last) < compatDelay
}

func (v *BoardView) replayed(e app.Event) bool {
	return v.touch.skip(e.Get("type").String(), time.Now())
}

// listen follows pointer moves and releases on the whole window so a
// drag keeps tracking when the pointer leaves the entity. Presses that
// no item stopped also land here and end running edits.
func (v *BoardView) listen(ctx app.Context) {
	move := func(_ app.Context, e app.Event) { v.onPointerMove(ctx, e) }
	up := func(_ app.Context, e app.Event) { v.onPointerUp(ctx, e) }
	down := func(_ app.Context, e app.Event) { v.onWindowDown(ctx, e) }

	win := app.Window()
	v.listeners = append(v.listeners,
		win.AddEventListener("mousemove", move),
		win.AddEventListener("touchmove", move),
		win.AddEventListener("mouseup", up),
		win.AddEventListener("touchend", up),
		win.AddEventListener("mousedown", down),
		win.AddEventListener("touchstart", down),
	)
}

// noteIDOf parses the element id renderNote gives a note.
func noteIDOf(elementID string) (int64, bool) {
	rest, ok := strings.CutPrefix(elementID, board.KindNote.String()+"-")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	return id, err == nil
}

func (v *BoardView) onWindowDown(ctx app.Context, e app.Event) {
	if v.replayed(e) {
		return
	}
	k := interact.Key{Kind: -1}
	if t := e.Get("target"); t.Truthy() && t.Get("closest").Truthy() {
		if note := t.Call("closest", ".note"); note.Truthy() {
			if id, ok := noteIDOf(note.Get("id").String()); ok {
				k = interact.NoteKey(id)
			}
		}
	}
	v.surface.CommitEditorsExcept(k)
	ctx.Dispatch(func(app.Context) {})
}

func (v *BoardView) onPointerMove(ctx app.Context, e app.Event) {
	x, y, ok := pointer(e)
	if !ok {
		return
	}
	if v.stroke != 0 {
		e.PreventDefault()
		v.board.ExtendStroke(v.stroke, boardPoint(x, y, v.viewport.Scale()))
		return
	}
	if _, _, moved := v.surface.PointerMove(x, y); moved {
		e.PreventDefault()
		ctx.Dispatch(func(app.Context) {})
	}
}

func (v *BoardView) onPointerUp(ctx app.Context, e app.Event) {
	if v.replayed(e) {
		return
	}
	if v.stroke != 0 {
		v.stroke = 0
		return
	}
	if _, _, ok := v.surface.PointerUp(); ok {
		ctx.Dispatch(func(app.Context) {})
	}
}

// onItemDown starts a drag of k. The press never reaches the board
// background, which would commit k's own running edit.
func (v *BoardView) onItemDown(k interact.Key) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if v.drawing {
			return
		}
		e.Call("stopPropagation")
		if v.replayed(e) {
			return
		}
		x, y, ok := pointer(e)
		if !ok {
			return
		}
		if v.surface.PointerDown(k, x, y, targetTag(e)) && e.Get("type").String() == "mousedown" {
			e.PreventDefault()
		}
	}
}

func (v *BoardView) onBackgroundDown(ctx app.Context, e app.Event) {
	if v.replayed(e) {
		return
	}
	v.surface.PointerDownBackground()
	v.menuOpen = false
	if !v.drawing {
		return
	}
	x, y, ok := pointer(e)
	if !ok {
		return
	}
	e.PreventDefault()
	v.stroke = v.board.BeginStroke(v.strokeColor, strokeWidth, boardPoint(x, y, v.viewport.Scale()))
}

func (v *BoardView) onWheel(ctx app.Context, e app.Event) {
	if v.viewport.Wheel(e.Get("deltaY").Float(), modifier(e)) {
		e.PreventDefault()
	}
}

// onItemWheel resizes emoji and stickers with ctrl or meta held.
func (v *BoardView) onItemWheel(k interact.Key) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if !modifier(e) {
			return
		}
		e.PreventDefault()
		e.Call("stopPropagation")
		delta := e.Get("deltaY").Float()
		switch k.Kind {
		case board.KindEmoji:
			v.board.ScaleEmoji(k.ID, delta)
		case board.KindSticker:
			v.board.ScaleSticker(k.ID, delta)
		}
	}
}

func (v *BoardView) deleteNote(id int64) {
	if v.board.DeleteNote(id) {
		v.surface.Forget(interact.NoteKey(id))
	}
}

func (v *BoardView) deleteImage(id int64) {
	if v.board.DeleteImage(id) {
		v.surface.Forget(interact.Key{Kind: board.KindImage, ID: id})
	}
}

func (v *BoardView) Render() (ui app.UI) {
	defer guard(&ui, app.Log)
	if v.board == nil || !v.loaded {
		return loadingScreen()
	}

	notes := v.board.Notes()
	emojis := v.board.Emojis()
	stickers := v.board.Stickers()
	images := v.board.Images()
	v.retain(notes, emojis, stickers, images)

	cls := "fridge"
	if v.drawing {
		cls += " drawing"
	}
	if _, dragging := v.surface.Active(); dragging {
		cls += " dragging"
	}

	return app.Div().Class("board-view").Body(
		v.renderHeader(),
		app.Div().
			Class(cls).
			OnMouseDown(v.onBackgroundDown).
			On("touchstart", v.onBackgroundDown).
			OnWheel(v.onWheel).
			Body(
				app.Div().
					ID(boardID).
					Class("fridge-board").
					Style("transform", v.viewport.Transform()).
					Body(
						app.Raw(strokesSVG(v.board.Strokes())),
						app.Range(images).Slice(func(i int) app.UI {
							return v.renderImage(images[i])
						}),
						app.Range(notes).Slice(func(i int) app.UI {
							return v.renderNote(notes[i])
						}),
						app.Range(stickers).Slice(func(i int) app.UI {
							return v.renderSticker(stickers[i])
						}),
						app.Range(emojis).Slice(func(i int) app.UI {
							return v.renderEmoji(emojis[i])
						}),
					),
			),
		v.renderFloatingBar(),
		v.renderPanel(),
		app.If(v.status != "", func() app.UI {
			return app.Div().Class("toast").Text(v.status)
		}),
	)
}

// retain drops gesture state of entities that left the board.
func (v *BoardView) retain(notes []board.Note, emojis []board.Emoji, stickers []board.Sticker, images []board.Image) {
	live := make(map[interact.Key]bool, len(notes)+len(emojis)+len(stickers)+len(images))
	for _, n := range notes {
		live[interact.NoteKey(n.ID)] = true
	}
	for _, e := range emojis {
		live[interact.Key{Kind: board.KindEmoji, ID: e.ID}] = true
	}
	for _, s := range stickers {
		live[interact.Key{Kind: board.KindSticker, ID: s.ID}] = true
	}
	for _, i := range images {
		live[interact.Key{Kind: board.KindImage, ID: i.ID}] = true
	}
	v.surface.Retain(live)
}
