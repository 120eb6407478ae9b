package ui

import (
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/interact"
	"github.com/kidandcat/fridge/internal/markup"
)

func (v *BoardView) renderNote(n board.Note) app.UI {
	k := interact.NoteKey(n.ID)
	id := n.ID
	d, ed := v.surface.TrackNote(n,
		func(p board.Point) { v.board.UpdateNotePosition(id, p) },
		func(title, content string) { v.board.UpdateNoteContent(id, title, content) },
	)
	pos := d.Position()
	dragging := d.Dragging()

	return app.Div().
		ID(keyID(k)).
		Class(noteClass(n, dragging, ed.Active())).
		Style("left", px(pos.X)).
		Style("top", px(pos.Y)).
		Style("z-index", zIndex(d.ZIndex())).
		Style("transform", noteTransform(n, dragging)).
		Style("box-shadow", noteShadow(n, dragging)).
		OnMouseDown(v.onItemDown(k)).
		On("touchstart", v.onItemDown(k)).
		Body(
			app.Div().Class("note-magnet"),
			app.Button().
				Class("note-delete").
				Title("Delete note").
				Text("×").
				OnClick(func(ctx app.Context, e app.Event) {
					e.Call("stopPropagation")
					v.deleteNote(id)
				}),
			v.renderTitle(id, ed),
			v.renderContent(id, ed),
		)
}

func fieldID(id int64, f interact.Field) string {
	return fmt.Sprintf("note-%d-%s", id, f)
}

// focusTarget is the element id of the field ed is editing.
func focusTarget(id int64, ed *interact.Editor) (string, bool) {
	f, ok := ed.Focus()
	if !ok {
		return "", false
	}
	return fieldID(id, f), true
}

// focusEditor hands input focus to the field ed is editing once the
// update that inserts it has been rendered.
func (v *BoardView) focusEditor(ctx app.Context, id int64, ed *interact.Editor) {
	target, ok := focusTarget(id, ed)
	if !ok {
		return
	}
	ctx.Defer(func(app.Context) {
		el := app.Window().GetElementByID(target)
		if !el.Truthy() {
			return
		}
		if el.Get("tagName").String() == "TEXTAREA" {
			fitTextarea(el)
		}
		el.Call("focus")
	})
}

// fitTextarea grows el to its content, wrapped lines included.
func fitTextarea(el app.Value) {
	style := el.Get("style")
	style.Set("height", "auto")
	style.Set("height", fitHeight(el.Get("scrollHeight").Int()))
}

func fitHeight(scrollHeight int) string {
	if scrollHeight < minTextareaHeight {
		scrollHeight = minTextareaHeight
	}
	return fmt.Sprintf("%dpx", scrollHeight)
}

func (v *BoardView) renderTitle(id int64, ed *interact.Editor) app.UI {
	if ed.Editing(interact.Title) {
		return app.Input().
			ID(fieldID(id, interact.Title)).
			Class("note-title-input").
			Value(ed.Title()).
			OnInput(func(ctx app.Context, e app.Event) {
				ed.Input(interact.Title, inputValue(e))
			}).
			OnKeyDown(func(ctx app.Context, e app.Event) {
				if ed.KeyDown(interact.Title, e.Get("key").String(), e.Get("shiftKey").Bool()) {
					e.PreventDefault()
					v.focusEditor(ctx, id, ed)
				}
			}).
			OnBlur(func(ctx app.Context, e app.Event) {
				ed.Blur(interact.Title)
			})
	}
	return app.H3().
		Class("note-title").
		Text(ed.Title()).
		OnClick(func(ctx app.Context, e app.Event) {
			if ed.Click(interact.Title) {
				v.focusEditor(ctx, id, ed)
			}
		})
}

func (v *BoardView) renderContent(id int64, ed *interact.Editor) app.UI {
	if ed.Editing(interact.Content) {
		return app.Textarea().
			ID(fieldID(id, interact.Content)).
			Class("note-content-input").
			Rows(ed.ContentRows()).
			Text(ed.Content()).
			OnInput(func(ctx app.Context, e app.Event) {
				ed.Input(interact.Content, inputValue(e))
				fitTextarea(e.Get("target"))
			}).
			OnKeyDown(func(ctx app.Context, e app.Event) {
				if ed.KeyDown(interact.Content, e.Get("key").String(), e.Get("shiftKey").Bool()) {
					e.PreventDefault()
				}
			}).
			OnBlur(func(ctx app.Context, e app.Event) {
				ed.Blur(interact.Content)
			})
	}
	return app.Div().
		Class("note-content").
		OnClick(func(ctx app.Context, e app.Event) {
			if e.Get("target").Get("tagName").String() == "A" {
				return
			}
			if ed.Click(interact.Content) {
				v.focusEditor(ctx, id, ed)
			}
		}).
		Body(
			app.Raw(`<div class="markup">` + markup.Render(ed.Content()) + `</div>`),
		)
}

func (v *BoardView) renderEmoji(em board.Emoji) app.UI {
	k := interact.Key{Kind: board.KindEmoji, ID: em.ID}
	id := em.ID
	d := v.surface.Track(k, em.Pos(), func(p board.Point) { v.board.MoveEmoji(id, p) })
	return v.item(k, d, "emoji", em.Scale).Text(em.Emoji)
}

func (v *BoardView) renderSticker(s board.Sticker) app.UI {
	k := interact.Key{Kind: board.KindSticker, ID: s.ID}
	id := s.ID
	d := v.surface.Track(k, s.Pos(), func(p board.Point) { v.board.MoveSticker(id, p) })
	return v.item(k, d, "sticker", s.Scale).Body(
		app.Img().Src(s.URL).Alt("sticker").Draggable(false),
	)
}

func (v *BoardView) renderImage(img board.Image) app.UI {
	k := interact.Key{Kind: board.KindImage, ID: img.ID}
	id := img.ID
	d := v.surface.Track(k, img.Pos(), func(p board.Point) { v.board.MoveImage(id, p) })
	return v.item(k, d, "photo", 1).Body(
		app.Img().Src(img.URL).Alt("photo").Draggable(false),
		app.Button().
			Class("photo-delete").
			Title("Remove photo").
			Text("×").
			OnClick(func(ctx app.Context, e app.Event) {
				e.Call("stopPropagation")
				v.deleteImage(id)
			}),
	)
}

// item is the positioned, draggable frame shared by emoji, stickers and
// photos.
func (v *BoardView) item(k interact.Key, d *interact.Drag, class string, scale float64) app.HTMLDiv {
	pos := d.Position()
	if d.Dragging() {
		class += " dragging"
	}
	div := app.Div().
		ID(keyID(k)).
		Class(class).
		Style("left", px(pos.X)).
		Style("top", px(pos.Y)).
		Style("z-index", zIndex(d.ZIndex())).
		Style("transform", itemTransform(scale)).
		OnMouseDown(v.onItemDown(k)).
		On("touchstart", v.onItemDown(k))
	if k.Kind == board.KindEmoji || k.Kind == board.KindSticker {
		div = div.OnWheel(v.onItemWheel(k))
	}
	return div
}
