package ui

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// Register declares the client routes. Both the server and the wasm
// binary must call it so pages prerender and hydrate alike.
func Register() {
	app.Route("/", func() app.Composer { return &Root{} })
}
