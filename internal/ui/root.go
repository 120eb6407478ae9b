// Package ui holds the go-app components of the fridge board.
package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"golang.org/x/text/language"

	"github.com/kidandcat/fridge/internal/identity"
	"github.com/kidandcat/fridge/internal/services"
)

// actionRetry asks the root to mount a fresh board view.
const actionRetry = "fridge/retry"

// Root picks between the login form and the board for the current user.
type Root struct {
	app.Compo

	svc     *services.Services
	lang    language.Tag
	user    *identity.User
	loading bool
	remount bool
	unwatch func()
}

func (r *Root) OnInit() {
	r.loading = true
	r.lang = language.English
}

func (r *Root) OnMount(ctx app.Context) {
	r.lang = browserLanguage()
	r.svc = services.New(configFromEnv(), ctx.LocalStorage())
	ctx.Handle(actionRetry, r.onRetry)

	r.unwatch = r.svc.Identity.Watch(func(u *identity.User) {
		ctx.Dispatch(func(ctx app.Context) { r.setUser(u) })
	})

	svc := r.svc
	ctx.Async(func() {
		u, err := svc.Init(ctx)
		if err != nil {
			app.Log("restore session:", err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			r.loading = false
			r.setUser(u)
		})
	})
}

func (r *Root) OnDismount() {
	if r.unwatch != nil {
		r.unwatch()
	}
}

// setUser ignores token refreshes that keep the same account.
func (r *Root) setUser(u *identity.User) {
	if u != nil && r.user != nil && u.ID == r.user.ID {
		return
	}
	r.user = u
}

func (r *Root) onRetry(ctx app.Context, a app.Action) {
	r.remount = true
	ctx.Async(func() {
		ctx.Dispatch(func(ctx app.Context) { r.remount = false })
	})
}

func (r *Root) Render() app.UI {
	if r.loading || r.remount || r.svc == nil {
		return loadingScreen()
	}
	if r.user == nil {
		return &Login{Services: r.svc, Lang: r.lang}
	}
	return &BoardView{Services: r.svc, User: r.user}
}

func loadingScreen() app.UI {
	return app.Div().Class("loading-overlay").Body(
		app.Div().Class("loading-spinner"),
	)
}

// crashScreen is shown instead of a view whose render panicked.
func crashScreen() app.UI {
	return app.Div().Class("crash").Body(
		app.H2().Text("Something went wrong!"),
		app.Button().
			Class("btn").
			Text("Try again").
			OnClick(func(ctx app.Context, e app.Event) {
				ctx.NewAction(actionRetry)
			}),
	)
}

// guard replaces *ui with the crash screen when the render it is
// deferred in panics.
func guard(ui *app.UI, log func(v ...any)) {
	if rec := recover(); rec != nil {
		log("render panic:", rec)
		*ui = crashScreen()
	}
}
