package board

import "fmt"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

type Color string

const (
	Orange Color = "orange"
	Blue   Color = "blue"
	Purple Color = "purple"
	Green  Color = "green"
	Black  Color = "black"
)

// NoteColors is the palette new notes draw from. Black is reserved for
// notes that arrive from storage with it set.
var NoteColors = []Color{Orange, Blue, Purple, Green}

func (c Color) Valid() bool {
	switch c {
	case Orange, Blue, Purple, Green, Black:
		return true
	}
	return false
}

type Kind int

const (
	KindNote Kind = iota
	KindEmoji
	KindSticker
	KindImage
	KindStroke
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindEmoji:
		return "emoji"
	case KindSticker:
		return "sticker"
	case KindImage:
		return "image"
	case KindStroke:
		return "stroke"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Note struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Color        Color   `json:"color"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Rotate       string  `json:"rotate"`
	ShadowHeight int     `json:"shadowHeight"`
	ShadowBlur   int     `json:"shadowBlur"`
	UserID       string  `json:"user_id"`
}

func (n Note) Pos() Point { return Point{n.X, n.Y} }

// Emoji, Sticker, Image and Stroke live only for the session.

type Emoji struct {
	ID    int64   `json:"id"`
	Emoji string  `json:"emoji"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

func (e Emoji) Pos() Point { return Point{e.X, e.Y} }

type Sticker struct {
	ID    int64   `json:"id"`
	URL   string  `json:"url"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

func (s Sticker) Pos() Point { return Point{s.X, s.Y} }

type Image struct {
	ID  int64   `json:"id"`
	URL string  `json:"url"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

func (i Image) Pos() Point { return Point{i.X, i.Y} }

type Stroke struct {
	ID     int64   `json:"id"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Points []Point `json:"points"`
}

type identified interface {
	Note | Emoji | Sticker | Image | Stroke
}

func idOf[T identified](v T) int64 {
	switch x := any(v).(type) {
	case Note:
		return x.ID
	case Emoji:
		return x.ID
	case Sticker:
		return x.ID
	case Image:
		return x.ID
	case Stroke:
		return x.ID
	}
	return 0
}

// replaceByID returns a new slice with the element matching id passed
// through fn. The input slice is never written to.
func replaceByID[T identified](items []T, id int64, fn func(T) T) ([]T, bool) {
	out := make([]T, len(items))
	found := false
	for i, it := range items {
		if idOf(it) == id {
			it = fn(it)
			found = true
		}
		out[i] = it
	}
	return out, found
}

func removeByID[T identified](items []T, id int64) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, it := range items {
		if idOf(it) == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
