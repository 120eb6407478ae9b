package board

const (
	MinItemScale = 0.5
	MaxItemScale = 3.0

	emojiOffset = 30
	emojiJitter = 50
	imageOffset = 100
)

// stamp returns a millisecond timestamp id, bumped past the previous one
// when two items are created within the same millisecond.
// Callers hold b.mu.
func (b *Board) stamp() int64 {
	id := b.now().UnixMilli()
	if id <= b.lastTS {
		id = b.lastTS + 1
	}
	b.lastTS = id
	return id
}

func (b *Board) jitter(center Point) Point {
	return Point{
		X: center.X - emojiOffset + b.rnd.Float64()*emojiJitter,
		Y: center.Y - emojiOffset + b.rnd.Float64()*emojiJitter,
	}
}

// scaleBy applies a wheel delta to an item scale.
func scaleBy(scale, deltaY float64) float64 {
	if scale == 0 {
		scale = 1
	}
	return clamp(scale-deltaY*0.01, MinItemScale, MaxItemScale)
}

func (b *Board) AddEmoji(glyph string, center Point) Emoji {
	b.mu.Lock()
	p := b.jitter(center)
	e := Emoji{ID: b.stamp(), Emoji: glyph, X: p.X, Y: p.Y, Scale: 1}
	b.emojis = append(append([]Emoji(nil), b.emojis...), e)
	b.mu.Unlock()

	b.emit(Event{Kind: KindEmoji, Op: OpCreate, ID: e.ID})
	return e
}

func (b *Board) MoveEmoji(id int64, p Point) bool {
	b.mu.Lock()
	items, ok := replaceByID(b.emojis, id, func(e Emoji) Emoji {
		e.X, e.Y = p.X, p.Y
		return e
	})
	if ok {
		b.emojis = items
	}
	b.mu.Unlock()
	return b.updated(KindEmoji, id, ok)
}

func (b *Board) ScaleEmoji(id int64, deltaY float64) bool {
	b.mu.Lock()
	items, ok := replaceByID(b.emojis, id, func(e Emoji) Emoji {
		e.Scale = scaleBy(e.Scale, deltaY)
		return e
	})
	if ok {
		b.emojis = items
	}
	b.mu.Unlock()
	return b.updated(KindEmoji, id, ok)
}

func (b *Board) Emojis() []Emoji {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Emoji(nil), b.emojis...)
}

func (b *Board) AddSticker(url string, center Point) Sticker {
	b.mu.Lock()
	p := b.jitter(center)
	s := Sticker{ID: b.stamp(), URL: url, X: p.X, Y: p.Y, Scale: 1}
	b.stickers = append(append([]Sticker(nil), b.stickers...), s)
	b.mu.Unlock()

	b.emit(Event{Kind: KindSticker, Op: OpCreate, ID: s.ID})
	return s
}

func (b *Board) MoveSticker(id int64, p Point) bool {
	b.mu.Lock()
	items, ok := replaceByID(b.stickers, id, func(s Sticker) Sticker {
		s.X, s.Y = p.X, p.Y
		return s
	})
	if ok {
		b.stickers = items
	}
	b.mu.Unlock()
	return b.updated(KindSticker, id, ok)
}

func (b *Board) ScaleSticker(id int64, deltaY float64) bool {
	b.mu.Lock()
	items, ok := replaceByID(b.stickers, id, func(s Sticker) Sticker {
		s.Scale = scaleBy(s.Scale, deltaY)
		return s
	})
	if ok {
		b.stickers = items
	}
	b.mu.Unlock()
	return b.updated(KindSticker, id, ok)
}

func (b *Board) Stickers() []Sticker {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Sticker(nil), b.stickers...)
}

func (b *Board) AddImage(url string, center Point) Image {
	b.mu.Lock()
	img := Image{ID: b.stamp(), URL: url, X: center.X - imageOffset, Y: center.Y - imageOffset}
	b.images = append(append([]Image(nil), b.images...), img)
	b.mu.Unlock()

	b.emit(Event{Kind: KindImage, Op: OpCreate, ID: img.ID})
	return img
}

func (b *Board) MoveImage(id int64, p Point) bool {
	b.mu.Lock()
	items, ok := replaceByID(b.images, id, func(i Image) Image {
		i.X, i.Y = p.X, p.Y
		return i
	})
	if ok {
		b.images = items
	}
	b.mu.Unlock()
	return b.updated(KindImage, id, ok)
}

func (b *Board) DeleteImage(id int64) bool {
	b.mu.Lock()
	items, ok := removeByID(b.images, id)
	if ok {
		b.images = items
	}
	b.mu.Unlock()
	if ok {
		b.emit(Event{Kind: KindImage, Op: OpDelete, ID: id})
	}
	return ok
}

func (b *Board) Images() []Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Image(nil), b.images...)
}

// BeginStroke starts a freehand line at p and returns its id.
func (b *Board) BeginStroke(color string, width float64, p Point) int64 {
	b.mu.Lock()
	s := Stroke{ID: b.stamp(), Color: color, Width: width, Points: []Point{p}}
	b.strokes = append(b.strokes, s)
	b.mu.Unlock()

	b.emit(Event{Kind: KindStroke, Op: OpCreate, ID: s.ID})
	return s.ID
}

// ExtendStroke appends p to the stroke in place. Strokes never leave the
// board without a deep copy, so growing the points slice is safe.
func (b *Board) ExtendStroke(id int64, p Point) bool {
	b.mu.Lock()
	ok := false
	for i := len(b.strokes) - 1; i >= 0; i-- {
		if b.strokes[i].ID == id {
			b.strokes[i].Points = append(b.strokes[i].Points, p)
			ok = true
			break
		}
	}
	b.mu.Unlock()
	return b.updated(KindStroke, id, ok)
}

func (b *Board) ClearStrokes() {
	b.mu.Lock()
	b.strokes = nil
	b.mu.Unlock()
	b.emit(Event{Kind: KindStroke, Op: OpReset})
}

func (b *Board) Strokes() []Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Stroke, len(b.strokes))
	for i, s := range b.strokes {
		s.Points = append([]Point(nil), s.Points...)
		out[i] = s
	}
	return out
}

func (b *Board) updated(k Kind, id int64, ok bool) bool {
	if ok {
		b.emit(Event{Kind: k, Op: OpUpdate, ID: id})
	}
	return ok
}
