package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/fridge/internal/ui"
)

func main() {
	ui.Register()
	app.RunWhenOnBrowser()
}
