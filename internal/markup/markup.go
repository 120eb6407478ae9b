// Package markup renders note text for display.
package markup

import (
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough, extension.TaskList),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// Render converts note content to HTML. Raw HTML in the input is
// dropped, so the result is safe to inject into the page.
func Render(content string) string {
	var buf strings.Builder
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return buf.String()
}
