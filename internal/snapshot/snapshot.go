// Package snapshot renders the board to a PNG image.
package snapshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp"

	"github.com/kidandcat/fridge/internal/board"
)

const (
	NoteWidth    = 220.0
	NoteHeight   = 180.0
	ImageSize    = 200.0
	EmojiSize    = 45.0
	StickerSize  = 80.0
	notePadding  = 14.0
	titleSize    = 18.0
	bodySize     = 14.0
	lineSpacing  = 1.4
	defaultWidth = 3.0
)

// Filename is the name the PNG export is downloaded under.
const Filename = "fridge-board.png"

var ErrEmptyBoard = errors.New("nothing to export")

var noteFill = map[board.Color]string{
	board.Orange: "#ffcc80",
	board.Blue:   "#90caf9",
	board.Purple: "#ce93d8",
	board.Green:  "#a5d6a7",
	board.Black:  "#424242",
}

// Scene is the board content to draw, in board coordinates.
type Scene struct {
	Notes    []board.Note
	Emojis   []board.Emoji
	Stickers []board.Sticker
	Images   []board.Image
	Strokes  []board.Stroke
}

func SceneOf(b *board.Board) Scene {
	return Scene{
		Notes:    b.Notes(),
		Emojis:   b.Emojis(),
		Stickers: b.Stickers(),
		Images:   b.Images(),
		Strokes:  b.Strokes(),
	}
}

type Options struct {
	Padding    float64
	Background string
}

func (o Options) withDefaults() Options {
	if o.Padding <= 0 {
		o.Padding = 40
	}
	if o.Background == "" {
		o.Background = "#f5f5f0"
	}
	return o
}

type bounds struct {
	minX, minY, maxX, maxY float64
	set                    bool
}

func (b *bounds) add(x, y, w, h float64) {
	if !b.set {
		b.minX, b.minY, b.maxX, b.maxY = x, y, x+w, y+h
		b.set = true
		return
	}
	b.minX = math.Min(b.minX, x)
	b.minY = math.Min(b.minY, y)
	b.maxX = math.Max(b.maxX, x+w)
	b.maxY = math.Max(b.maxY, y+h)
}

func (s Scene) bounds() bounds {
	var bb bounds
	for _, n := range s.Notes {
		bb.add(n.X, n.Y, NoteWidth, NoteHeight)
	}
	for _, e := range s.Emojis {
		size := EmojiSize * scaleOr1(e.Scale)
		bb.add(e.X, e.Y, size, size)
	}
	for _, st := range s.Stickers {
		size := StickerSize * scaleOr1(st.Scale)
		bb.add(st.X, st.Y, size, size)
	}
	for _, im := range s.Images {
		bb.add(im.X, im.Y, ImageSize, ImageSize)
	}
	for _, st := range s.Strokes {
		for _, p := range st.Points {
			bb.add(p.X, p.Y, 0, 0)
		}
	}
	return bb
}

// Render draws the scene cropped to its content and returns PNG bytes.
func Render(s Scene, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	bb := s.bounds()
	if !bb.set {
		return nil, ErrEmptyBoard
	}

	w := int(math.Ceil(bb.maxX-bb.minX+2*opts.Padding)) + 1
	h := int(math.Ceil(bb.maxY-bb.minY+2*opts.Padding)) + 1
	dc := gg.NewContext(w, h)
	dc.SetHexColor(opts.Background)
	dc.Clear()
	dc.Translate(opts.Padding-bb.minX, opts.Padding-bb.minY)

	titleFace, err := face(gobold.TTF, titleSize)
	if err != nil {
		return nil, err
	}
	bodyFace, err := face(goregular.TTF, bodySize)
	if err != nil {
		return nil, err
	}

	for _, st := range s.Strokes {
		drawStroke(dc, st)
	}
	for _, im := range s.Images {
		drawPicture(dc, im.URL, im.X, im.Y, ImageSize)
	}
	for _, n := range s.Notes {
		drawNote(dc, n, titleFace, bodyFace)
	}
	for _, st := range s.Stickers {
		drawPicture(dc, st.URL, st.X, st.Y, StickerSize*scaleOr1(st.Scale))
	}
	for _, e := range s.Emojis {
		drawEmoji(dc, e)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func face(ttf []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

var rotateRe = regexp.MustCompile(`rotate\(\s*(-?[\d.]+)\s*deg\s*\)`)

// RotationDegrees extracts the angle from a CSS rotate() transform.
func RotationDegrees(transform string) float64 {
	m := rotateRe.FindStringSubmatch(transform)
	if m == nil {
		return 0
	}
	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return deg
}

func drawNote(dc *gg.Context, n board.Note, titleFace, bodyFace font.Face) {
	fill, ok := noteFill[n.Color]
	if !ok {
		fill = noteFill[board.Orange]
	}
	cx, cy := n.X+NoteWidth/2, n.Y+NoteHeight/2

	dc.Push()
	dc.RotateAbout(gg.Radians(RotationDegrees(n.Rotate)), cx, cy)

	blur := float64(n.ShadowBlur) / 6
	dc.SetRGBA(0, 0, 0, 0.18)
	dc.DrawRoundedRectangle(n.X+blur, n.Y+float64(n.ShadowHeight)/2, NoteWidth, NoteHeight, 6)
	dc.Fill()

	dc.SetHexColor(fill)
	dc.DrawRoundedRectangle(n.X, n.Y, NoteWidth, NoteHeight, 6)
	dc.Fill()

	text := "#212121"
	if n.Color == board.Black {
		text = "#fafafa"
	}
	dc.SetHexColor(text)
	inner := NoteWidth - 2*notePadding
	dc.SetFontFace(titleFace)
	dc.DrawStringWrapped(n.Title, n.X+notePadding, n.Y+notePadding, 0, 0, inner, lineSpacing, gg.AlignLeft)

	titleLines := len(dc.WordWrap(n.Title, inner))
	bodyY := n.Y + notePadding + float64(titleLines)*titleSize*lineSpacing + 6
	dc.SetFontFace(bodyFace)
	dc.DrawStringWrapped(n.Content, n.X+notePadding, bodyY, 0, 0, inner, lineSpacing, gg.AlignLeft)
	dc.Pop()
}

func drawEmoji(dc *gg.Context, e board.Emoji) {
	r := EmojiSize * scaleOr1(e.Scale) / 2
	dc.SetHexColor("#ffd54f")
	dc.DrawCircle(e.X+r, e.Y+r, r)
	dc.Fill()
	dc.SetHexColor("#f57f17")
	dc.SetLineWidth(2)
	dc.DrawCircle(e.X+r, e.Y+r, r)
	dc.Stroke()
}

func drawStroke(dc *gg.Context, s board.Stroke) {
	if len(s.Points) == 0 {
		return
	}
	width := s.Width
	if width <= 0 {
		width = defaultWidth
	}
	dc.SetLineWidth(width)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	if s.Color != "" {
		dc.SetHexColor(s.Color)
	} else {
		dc.SetHexColor("#000000")
	}
	dc.MoveTo(s.Points[0].X, s.Points[0].Y)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	if len(s.Points) == 1 {
		dc.DrawCircle(s.Points[0].X, s.Points[0].Y, width/2)
		dc.Fill()
		return
	}
	dc.Stroke()
}

// drawPicture draws a data URI image fitted into a size×size box, or a
// framed placeholder when the data cannot be decoded (e.g. SVG).
func drawPicture(dc *gg.Context, dataURI string, x, y, size float64) {
	img, err := DecodeDataURI(dataURI)
	if err != nil {
		dc.SetHexColor("#e0e0e0")
		dc.DrawRectangle(x, y, size, size)
		dc.Fill()
		dc.SetHexColor("#9e9e9e")
		dc.SetLineWidth(1)
		dc.DrawRectangle(x, y, size, size)
		dc.Stroke()
		return
	}
	b := img.Bounds()
	scale := math.Min(size/float64(b.Dx()), size/float64(b.Dy()))
	dc.Push()
	dc.ScaleAbout(scale, scale, x, y)
	dc.DrawImage(img, int(x), int(y))
	dc.Pop()
}

// DecodeDataURI decodes a base64 or percent-encoded raster data URI.
func DecodeDataURI(uri string) (image.Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}

	var raw []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		raw, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		raw = []byte(s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func scaleOr1(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}
