package ui

import (
	"context"
	"errors"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"golang.org/x/text/language"

	"github.com/kidandcat/fridge/internal/identity"
	"github.com/kidandcat/fridge/internal/services"
)

// Login signs a user in or up. A successful sign-in reaches Root through
// the identity watcher.
type Login struct {
	app.Compo

	Services *services.Services
	Lang     language.Tag

	email    string
	password string
	signUp   bool
	busy     bool
	errMsg   string
	notice   string
}

func (l *Login) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if l.busy {
		return
	}
	l.busy = true
	l.errMsg, l.notice = "", ""

	svc, lang := l.Services, l.Lang
	email, password, signUp := l.email, l.password, l.signUp
	ctx.Async(func() {
		notice, err := authenticate(ctx, svc.Identity, email, password, signUp, lang)
		if err != nil {
			svc.Log.Warn("authentication failed", "sign_up", signUp, "error", err)
		}
		ctx.Dispatch(func(ctx app.Context) {
			l.busy = false
			l.notice = notice
			if err != nil {
				l.errMsg = identity.Describe(err, lang)
			}
		})
	})
}

type authenticator interface {
	SignIn(ctx context.Context, email, password string) (*identity.User, error)
	SignUp(ctx context.Context, email, password string) (*identity.User, error)
}

// authenticate signs in, or signs up and then tries to sign in straight
// away. An unconfirmed address after sign-up is reported as a notice.
func authenticate(ctx context.Context, auth authenticator, email, password string, signUp bool, lang language.Tag) (string, error) {
	if !signUp {
		_, err := auth.SignIn(ctx, email, password)
		return "", err
	}

	u, err := auth.SignUp(ctx, email, password)
	if err != nil {
		return "", err
	}
	notice := identity.Text(identity.MsgSignedUp, lang)
	if u != nil {
		return notice, nil
	}
	if _, err := auth.SignIn(ctx, email, password); err != nil {
		var idErr *identity.Error
		if errors.As(err, &idErr) && idErr.Kind == identity.EmailNotConfirmed {
			return identity.Text(identity.MsgConfirmationSent, lang), nil
		}
		return notice, err
	}
	return notice, nil
}

func (l *Login) onDevBypass(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if _, err := l.Services.Identity.DevBypass(); err != nil {
		l.errMsg = identity.Describe(err, l.Lang)
	}
}

func (l *Login) toggleMode(ctx app.Context, e app.Event) {
	e.PreventDefault()
	l.signUp = !l.signUp
	l.errMsg, l.notice = "", ""
}

func inputValue(e app.Event) string {
	return e.Get("target").Get("value").String()
}

func (l *Login) Render() app.UI {
	title, submit, toggle := "Sign in to your fridge", "Sign in", "No account? Sign up"
	if l.signUp {
		title, submit, toggle = "Create your fridge", "Sign up", "Have an account? Sign in"
	}
	if l.busy {
		submit = "..."
	}

	return app.Div().Class("login").Body(
		app.Form().Class("login-card").OnSubmit(l.onSubmit).Body(
			app.H1().Text("🧲 My Fridge"),
			app.H2().Text(title),
			app.If(l.errMsg != "", func() app.UI {
				return app.P().Class("login-error").Text(l.errMsg)
			}),
			app.If(l.notice != "", func() app.UI {
				return app.P().Class("login-notice").Text(l.notice)
			}),
			app.Input().
				Type("email").
				Placeholder("Email").
				Required(true).
				AutoFocus(true).
				Value(l.email).
				OnInput(func(ctx app.Context, e app.Event) { l.email = inputValue(e) }),
			app.Input().
				Type("password").
				Placeholder("Password").
				Required(true).
				Value(l.password).
				OnInput(func(ctx app.Context, e app.Event) { l.password = inputValue(e) }),
			app.Button().Type("submit").Class("btn btn-primary").Disabled(l.busy).Text(submit),
			app.A().Href("#").Class("login-toggle").Text(toggle).OnClick(l.toggleMode),
			app.If(l.Services.Config.DevBypass, func() app.UI {
				return app.Button().
					Type("button").
					Class("btn btn-ghost").
					Text("Continue without account").
					OnClick(l.onDevBypass)
			}),
		),
	)
}
