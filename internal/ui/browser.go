package ui

import (
	"strconv"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"golang.org/x/text/language"

	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/identity"
	"github.com/kidandcat/fridge/internal/services"
)

const boardID = "fridge-board"

// configFromEnv reads the values the server put in the page shell.
func configFromEnv() services.Config {
	bypass, _ := strconv.ParseBool(app.Getenv("FRIDGE_DEV_BYPASS"))
	return services.Config{
		SupabaseURL: app.Getenv("SUPABASE_URL"),
		AnonKey:     app.Getenv("SUPABASE_ANON_KEY"),
		DevBypass:   bypass,
		LogLevel:    app.Getenv("FRIDGE_LOG_LEVEL"),
	}
}

func browserLanguage() language.Tag {
	nav := app.Window().Get("navigator")
	if !nav.Truthy() {
		return language.English
	}
	return identity.ParseLanguage(nav.Get("language").String())
}

// pointer returns the client coordinates of a mouse or touch event.
func pointer(e app.Event) (float64, float64, bool) {
	if touches := e.Get("touches"); touches.Truthy() {
		if touches.Length() == 0 {
			return 0, 0, false
		}
		t := touches.Index(0)
		return t.Get("clientX").Float(), t.Get("clientY").Float(), true
	}
	return e.Get("clientX").Float(), e.Get("clientY").Float(), true
}

func targetTag(e app.Event) string {
	target := e.Get("target")
	if !target.Truthy() {
		return ""
	}
	return target.Get("tagName").String()
}

func modifier(e app.Event) bool {
	return e.Get("ctrlKey").Bool() || e.Get("metaKey").Bool()
}

// boardPoint converts client coordinates to board coordinates.
func boardPoint(clientX, clientY, scale float64) board.Point {
	left, top := 0.0, 0.0
	if el := app.Window().GetElementByID(boardID); el.Truthy() {
		rect := el.Call("getBoundingClientRect")
		left, top = rect.Get("left").Float(), rect.Get("top").Float()
	}
	return board.Point{X: (clientX - left) / scale, Y: (clientY - top) / scale}
}

// viewCenter is the board point under the middle of the window.
func viewCenter(scale float64) board.Point {
	w, h := app.Window().Size()
	return boardPoint(float64(w)/2, float64(h)/2, scale)
}

func confirm(prompt string) bool {
	return app.Window().Call("confirm", prompt).Bool()
}

// download hands data to the browser as a file named name.
func download(name, mime string, data []byte) {
	arr := app.Window().Get("Uint8Array").New(len(data))
	app.CopyBytesToJS(arr, data)
	parts := app.Window().Get("Array").New()
	parts.Call("push", arr)
	blob := app.Window().Get("Blob").New(parts, map[string]any{"type": mime})

	url := app.Window().Get("URL")
	href := url.Call("createObjectURL", blob)
	a := app.Window().Get("document").Call("createElement", "a")
	a.Set("href", href)
	a.Set("download", name)
	a.Call("click")
	url.Call("revokeObjectURL", href)
}

// readDataURL reads the first file picked in input and passes its data
// URI to fn on the UI goroutine.
func readDataURL(ctx app.Context, input app.Value, fn func(ctx app.Context, uri string)) {
	files := input.Get("files")
	if !files.Truthy() || files.Length() == 0 {
		return
	}
	reader := app.Window().Get("FileReader").New()
	var onload app.Func
	onload = app.FuncOf(func(this app.Value, args []app.Value) any {
		uri := reader.Get("result").String()
		onload.Release()
		ctx.Dispatch(func(ctx app.Context) { fn(ctx, uri) })
		return nil
	})
	reader.Set("onload", onload)
	reader.Call("readAsDataURL", files.Index(0))
	input.Set("value", "")
}
