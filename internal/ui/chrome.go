package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/services"
	"github.com/kidandcat/fridge/internal/snapshot"
)

const (
	statusTTL     = 3 * time.Second
	friendEmailID = "friend-email"
)

type friendForm struct {
	email   string
	title   string
	content string
	sending bool
	err     string
}

func (f friendForm) note() services.FriendNote {
	return services.FriendNote{
		Email:   strings.TrimSpace(f.email),
		Title:   strings.TrimSpace(f.title),
		Content: f.content,
	}
}

func (v *BoardView) flash(ctx app.Context, msg string) {
	v.status = msg
	ctx.After(statusTTL, func(ctx app.Context) {
		if v.status == msg {
			v.status = ""
		}
	})
}

func (v *BoardView) renderHeader() app.UI {
	name := v.User.Name
	if name == "" {
		name = v.User.Email
	}

	return app.Header().Class("board-header").Body(
		app.H1().Text("🧲 My Fridge"),
		app.Div().Class("user-menu").Body(
			app.Button().
				Class("user-button").
				Text(name+" ▾").
				OnClick(func(ctx app.Context, e app.Event) {
					v.menuOpen = !v.menuOpen
				}),
			app.If(v.menuOpen, func() app.UI {
				return app.Div().Class("dropdown").Body(
					menuItem("Export notes (.txt)", v.exportText),
					menuItem("Export board (.png)", v.exportPNG),
					menuItem("Log out", v.signOut),
				)
			}),
		),
	)
}

func menuItem(label string, h app.EventHandler) app.UI {
	return app.Button().Class("dropdown-item").Text(label).OnClick(h)
}

func (v *BoardView) exportText(ctx app.Context, e app.Event) {
	v.menuOpen = false
	download(board.ExportFilename, "text/plain;charset=utf-8", []byte(v.board.ExportText()))
}

func (v *BoardView) exportPNG(ctx app.Context, e app.Event) {
	v.menuOpen = false
	scene := snapshot.SceneOf(v.board)
	log := v.Services.Log
	ctx.Async(func() {
		png, err := snapshot.Render(scene, snapshot.Options{})
		ctx.Dispatch(func(ctx app.Context) {
			switch {
			case errors.Is(err, snapshot.ErrEmptyBoard):
				v.flash(ctx, "The fridge is empty.")
			case err != nil:
				log.Error("export png failed", "error", err)
				v.flash(ctx, "Export failed.")
			default:
				download(snapshot.Filename, "image/png", png)
			}
		})
	})
}

func (v *BoardView) signOut(ctx app.Context, e app.Event) {
	v.menuOpen = false
	svc := v.Services
	ctx.Async(func() {
		if err := svc.Identity.SignOut(ctx); err != nil {
			svc.Log.Warn("sign out failed", "error", err)
		}
	})
}

func (v *BoardView) togglePanel(p panel) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if v.panel == p {
			v.panel = panelNone
			return
		}
		v.panel = p
		if p == panelFriend {
			focusByID(ctx, friendEmailID)
		}
	}
}

func focusByID(ctx app.Context, id string) {
	ctx.Defer(func(app.Context) {
		if el := app.Window().GetElementByID(id); el.Truthy() {
			el.Call("focus")
		}
	})
}

func barButton(icon, title string, active bool, h app.EventHandler) app.UI {
	cls := "bar-btn"
	if active {
		cls += " active"
	}
	return app.Button().Class(cls).Title(title).Text(icon).OnClick(h)
}

func (v *BoardView) renderFloatingBar() app.UI {
	return app.Div().Class("floating-bar").Body(
		barButton("📝", "Add note", false, func(ctx app.Context, e app.Event) {
			v.board.CreateNote()
		}),
		barButton("😀", "Add emoji", v.panel == panelEmoji, v.togglePanel(panelEmoji)),
		barButton("⭐", "Add sticker", v.panel == panelSticker, v.togglePanel(panelSticker)),
		app.Label().Class("bar-btn").Title("Add photo").Body(
			app.Text("🖼️"),
			app.Input().
				Type("file").
				Accept("image/*").
				Class("hidden").
				OnChange(v.onImagePicked),
		),
		barButton("✏️", "Draw", v.drawing, func(ctx app.Context, e app.Event) {
			v.drawing = !v.drawing
			v.stroke = 0
		}),
		app.If(v.drawing, func() app.UI {
			return v.renderPalette()
		}),
		barButton("💌", "Send a note to a friend", v.panel == panelFriend, v.togglePanel(panelFriend)),
		barButton("🗑️", "Reset board", false, func(ctx app.Context, e app.Event) {
			v.board.Reset(confirm)
		}),
		app.Div().Class("bar-divider"),
		barButton("−", "Zoom out", false, func(ctx app.Context, e app.Event) {
			v.viewport.ZoomOut()
		}),
		app.Span().Class("zoom-label").Text(v.viewport.Label()),
		barButton("+", "Zoom in", false, func(ctx app.Context, e app.Event) {
			v.viewport.ZoomIn()
		}),
	)
}

func (v *BoardView) renderPalette() app.UI {
	return app.Div().Class("palette").Body(
		app.Range(StrokeColors).Slice(func(i int) app.UI {
			color := StrokeColors[i]
			cls := "swatch"
			if color == v.strokeColor {
				cls += " active"
			}
			return app.Button().
				Class(cls).
				Title(color).
				Style("background", color).
				OnClick(func(ctx app.Context, e app.Event) {
					v.strokeColor = color
				})
		}),
		app.Button().
			Class("bar-btn").
			Title("Clear drawing").
			Text("🧽").
			OnClick(func(ctx app.Context, e app.Event) {
				v.board.ClearStrokes()
			}),
	)
}

func (v *BoardView) onImagePicked(ctx app.Context, e app.Event) {
	readDataURL(ctx, e.Get("target"), func(ctx app.Context, uri string) {
		v.board.AddImage(uri, viewCenter(v.viewport.Scale()))
	})
}

func (v *BoardView) renderPanel() app.UI {
	switch v.panel {
	case panelEmoji:
		return app.Div().Class("picker").Body(
			app.Range(Emojis).Slice(func(i int) app.UI {
				glyph := Emojis[i]
				return app.Button().Class("picker-item").Text(glyph).OnClick(func(ctx app.Context, e app.Event) {
					v.board.AddEmoji(glyph, viewCenter(v.viewport.Scale()))
					v.panel = panelNone
				})
			}),
		)
	case panelSticker:
		return app.Div().Class("picker stickers").Body(
			app.Range(Stickers).Slice(func(i int) app.UI {
				url := Stickers[i]
				return app.Button().Class("picker-item").OnClick(func(ctx app.Context, e app.Event) {
					v.board.AddSticker(url, viewCenter(v.viewport.Scale()))
					v.panel = panelNone
				}).Body(
					app.Img().Src(url).Alt("sticker"),
				)
			}),
		)
	case panelFriend:
		return v.renderFriendModal()
	}
	return app.Div().Class("hidden")
}

func (v *BoardView) renderFriendModal() app.UI {
	f := v.friend
	send := "Send"
	if f.sending {
		send = "Sending..."
	}

	return app.Div().Class("modal-backdrop").Body(
		app.Form().Class("modal").OnSubmit(v.sendFriendNote).Body(
			app.H2().Text("Send a note to a friend"),
			app.If(f.err != "", func() app.UI {
				return app.P().Class("login-error").Text(f.err)
			}),
			app.Input().
				ID(friendEmailID).
				Type("email").
				Placeholder("Friend's email").
				Required(true).
				Value(f.email).
				OnInput(func(ctx app.Context, e app.Event) { v.friend.email = inputValue(e) }),
			app.Input().
				Type("text").
				Placeholder("Title").
				Required(true).
				Value(f.title).
				OnInput(func(ctx app.Context, e app.Event) { v.friend.title = inputValue(e) }),
			app.Textarea().
				Placeholder("Write something nice...").
				Rows(4).
				Text(f.content).
				OnInput(func(ctx app.Context, e app.Event) { v.friend.content = inputValue(e) }),
			app.Div().Class("modal-actions").Body(
				app.Button().
					Type("button").
					Class("btn btn-ghost").
					Text("Cancel").
					OnClick(func(ctx app.Context, e app.Event) {
						v.panel = panelNone
						v.friend = friendForm{}
					}),
				app.Button().Type("submit").Class("btn btn-primary").Disabled(f.sending).Text(send),
			),
		),
	)
}

func (v *BoardView) sendFriendNote(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if v.friend.sending {
		return
	}
	v.friend.sending = true
	v.friend.err = ""

	svc, note := v.Services, v.friend.note()
	ctx.Async(func() {
		err := svc.SendFriendNote(ctx, note)
		ctx.Dispatch(func(ctx app.Context) {
			v.friend.sending = false
			if err != nil {
				svc.Log.Warn("friend note failed", "error", err)
				v.friend.err = "Could not send the note. Please try again."
				return
			}
			v.friend = friendForm{}
			v.panel = panelNone
			v.flash(ctx, "Note sent to "+note.Email+"!")
		})
	})
}
