package ui

import (
	"fmt"
	"html"
	"strings"

	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/interact"
)

// Emojis offered by the picker.
var Emojis = []string{
	"😀", "😂", "🥰", "😎", "🤔", "😴", "🎉", "❤️",
	"⭐", "🔥", "👍", "🙏", "🍕", "🍎", "🥛", "🧀",
	"☕", "🎂", "🐶", "🐱", "🌈", "☀️", "🌙", "📌",
}

// Stickers offered by the tray. They are inline SVG so the board works
// without any static asset.
var Stickers = []string{
	svgSticker(`<circle cx="40" cy="40" r="36" fill="#ffd54f"/><circle cx="28" cy="32" r="5"/><circle cx="52" cy="32" r="5"/><path d="M24 50 Q40 64 56 50" stroke="#000" stroke-width="4" fill="none"/>`),
	svgSticker(`<path d="M40 70 L12 40 A16 16 0 0 1 40 18 A16 16 0 0 1 68 40 Z" fill="#e53935"/>`),
	svgSticker(`<polygon points="40,6 50,30 76,30 55,46 63,72 40,56 17,72 25,46 4,30 30,30" fill="#ffb300"/>`),
	svgSticker(`<rect x="10" y="22" width="60" height="36" rx="8" fill="#4fc3f7"/><text x="40" y="46" font-size="16" text-anchor="middle" fill="#fff" font-family="sans-serif">YUM</text>`),
	svgSticker(`<circle cx="40" cy="40" r="34" fill="#66bb6a"/><path d="M24 40 L36 52 L58 28" stroke="#fff" stroke-width="7" fill="none"/>`),
}

// StrokeColors is the drawing palette.
var StrokeColors = []string{"#212121", "#e53935", "#1e88e5", "#43a047"}

const (
	strokeWidth       = 4.0
	minTextareaHeight = 60
)

func svgSticker(body string) string {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="80" height="80" viewBox="0 0 80 80">` + body + `</svg>`
	return "data:image/svg+xml;utf8," + strings.NewReplacer(`"`, "'", "#", "%23", "<", "%3C", ">", "%3E").Replace(svg)
}

func px(v float64) string {
	return fmt.Sprintf("%.1fpx", v)
}

func noteClass(n board.Note, dragging, editing bool) string {
	color := n.Color
	if !color.Valid() {
		color = board.Orange
	}
	classes := "note note-" + string(color)
	if dragging {
		classes += " dragging"
	}
	if editing {
		classes += " editing"
	}
	return classes
}

func noteShadow(n board.Note, dragging bool) string {
	h, blur := n.ShadowHeight, n.ShadowBlur
	if dragging {
		h, blur = h*2, blur*2
	}
	return fmt.Sprintf("0 %dpx %dpx rgba(0, 0, 0, 0.25)", h, blur)
}

func noteTransform(n board.Note, dragging bool) string {
	if dragging {
		return n.Rotate + " scale(1.05)"
	}
	return n.Rotate
}

func itemTransform(scale float64) string {
	if scale <= 0 {
		scale = 1
	}
	return fmt.Sprintf("scale(%.2f)", scale)
}

// strokePath renders points as an SVG path.
func strokePath(points []board.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString(" L")
		}
		fmt.Fprintf(&b, "%.1f %.1f", p.X, p.Y)
	}
	return b.String()
}

func zIndex(z int) string {
	return fmt.Sprintf("%d", z)
}

func keyID(k interact.Key) string {
	return fmt.Sprintf("%s-%d", k.Kind, k.ID)
}

// strokesSVG renders every stroke into one overlay covering the board.
func strokesSVG(strokes []board.Stroke) string {
	var b strings.Builder
	b.WriteString(`<svg class="strokes" xmlns="http://www.w3.org/2000/svg">`)
	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		w := s.Width
		if w <= 0 {
			w = strokeWidth
		}
		fmt.Fprintf(&b, `<path d="%s" stroke="%s" stroke-width="%.1f" fill="none" stroke-linecap="round" stroke-linejoin="round"/>`,
			strokePath(s.Points), html.EscapeString(s.Color), w)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
