// Package board owns the fridge board's entity collections and routes
// note mutations to a Persister.
package board

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

const (
	// MinNextID is the floor for the note id counter after hydration.
	MinNextID int64 = 100

	ResetPrompt = "Are you sure you want to reset the board? This will clear all notes."

	newNoteTitle   = "New Note"
	newNoteContent = "Click to edit..."
)

// Persister stores notes remotely. Implementations must be safe to call
// from any goroutine.
type Persister interface {
	FetchAll(ctx context.Context, userID string) ([]Note, error)
	Upsert(ctx context.Context, n Note) error
	Delete(ctx context.Context, id int64, userID string) error
}

type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
	OpReset
	OpHydrate
)

type Event struct {
	Kind Kind
	Op   Op
	ID   int64
}

type Option func(*Board)

// WithAsync sets how persistence calls are scheduled. The default runs
// each call on its own goroutine.
func WithAsync(run func(func())) Option {
	return func(b *Board) { b.async = run }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.log = l }
}

func WithRand(r *rand.Rand) Option {
	return func(b *Board) { b.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

type Board struct {
	mu sync.Mutex

	store Persister
	async func(func())
	log   *slog.Logger
	rnd   *rand.Rand
	now   func() time.Time

	userID   string
	nextID   int64
	lastTS   int64
	notes    []Note
	emojis   []Emoji
	stickers []Sticker
	images   []Image
	strokes  []Stroke
	deleted  map[int64]struct{}

	subs   map[int]func(Event)
	subSeq int
}

func New(store Persister, opts ...Option) *Board {
	b := &Board{
		store:   store,
		async:   func(f func()) { go f() },
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		rnd:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:     time.Now,
		nextID:  MinNextID,
		deleted: make(map[int64]struct{}),
		subs:    make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers fn for every mutation. The returned func removes it.
func (b *Board) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subSeq++
	id := b.subSeq
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Board) emit(events ...Event) {
	b.mu.Lock()
	subs := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}

// Bootstrap loads the user's notes and hydrates the board with them.
// A fetch failure is returned for logging only; the board still ends up
// populated with defaults.
func (b *Board) Bootstrap(ctx context.Context, userID string) error {
	notes, err := b.store.FetchAll(ctx, userID)
	b.Hydrate(userID, notes, err)
	return err
}

// Hydrate installs fetched notes. With fetchErr set the defaults are used
// without persisting them; with no notes the defaults are seeded and
// persisted once each.
func (b *Board) Hydrate(userID string, notes []Note, fetchErr error) {
	var seed []Note

	b.mu.Lock()
	b.userID = userID
	switch {
	case fetchErr != nil:
		b.log.Warn("fetch notes failed, using local defaults", "user_id", userID, "error", fetchErr)
		b.notes = DefaultNotes(userID)
	case len(notes) == 0:
		b.notes = DefaultNotes(userID)
		seed = append(seed, b.notes...)
	default:
		kept := make([]Note, 0, len(notes))
		for _, n := range notes {
			if _, gone := b.deleted[n.ID]; gone {
				continue
			}
			kept = append(kept, n)
		}
		b.notes = kept
	}
	b.nextID = nextIDAfter(b.notes)
	b.mu.Unlock()

	for _, n := range seed {
		b.persist(n)
	}
	b.emit(Event{Kind: KindNote, Op: OpHydrate})
}

func nextIDAfter(notes []Note) int64 {
	next := MinNextID
	for _, n := range notes {
		if n.ID+1 > next {
			next = n.ID + 1
		}
	}
	return next
}

func (b *Board) persist(n Note) {
	b.async(func() {
		if err := b.store.Upsert(context.Background(), n); err != nil {
			b.log.Error("save note failed", "note_id", n.ID, "error", err)
		}
	})
}

func (b *Board) CreateNote() Note {
	b.mu.Lock()
	n := Note{
		ID:           b.nextID,
		Title:        newNoteTitle,
		Content:      newNoteContent,
		Color:        NoteColors[b.rnd.IntN(len(NoteColors))],
		X:            200 + b.rnd.Float64()*100,
		Y:            200 + b.rnd.Float64()*100,
		Rotate:       rotation(b.rnd.Float64()*6 - 3),
		ShadowHeight: 14,
		ShadowBlur:   28,
		UserID:       b.userID,
	}
	b.nextID++
	b.notes = append(append([]Note(nil), b.notes...), n)
	b.mu.Unlock()

	b.persist(n)
	b.emit(Event{Kind: KindNote, Op: OpCreate, ID: n.ID})
	return n
}

func rotation(deg float64) string {
	return "rotate(" + strconv.FormatFloat(deg, 'f', 2, 64) + "deg)"
}

func (b *Board) UpdateNotePosition(id int64, p Point) bool {
	return b.updateNote(id, func(n Note) Note {
		n.X, n.Y = p.X, p.Y
		return n
	})
}

func (b *Board) UpdateNoteContent(id int64, title, content string) bool {
	return b.updateNote(id, func(n Note) Note {
		n.Title, n.Content = title, content
		return n
	})
}

func (b *Board) updateNote(id int64, fn func(Note) Note) bool {
	b.mu.Lock()
	notes, ok := replaceByID(b.notes, id, fn)
	var changed Note
	if ok {
		b.notes = notes
		changed, _ = findByID(notes, id)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}

	b.persist(changed)
	b.emit(Event{Kind: KindNote, Op: OpUpdate, ID: id})
	return true
}

// DeleteNote removes the note locally and asks the store to delete it.
// The id is remembered so a later hydration in this session skips it.
func (b *Board) DeleteNote(id int64) bool {
	b.mu.Lock()
	notes, ok := removeByID(b.notes, id)
	if ok {
		b.notes = notes
		b.deleted[id] = struct{}{}
	}
	userID := b.userID
	b.mu.Unlock()
	if !ok {
		return false
	}

	b.async(func() {
		if err := b.store.Delete(context.Background(), id, userID); err != nil {
			b.log.Error("delete note failed", "note_id", id, "error", err)
		}
	})
	b.emit(Event{Kind: KindNote, Op: OpDelete, ID: id})
	return true
}

// Reset clears every local collection once confirm accepts ResetPrompt.
// Stored notes are left untouched.
func (b *Board) Reset(confirm func(prompt string) bool) bool {
	if confirm == nil || !confirm(ResetPrompt) {
		return false
	}
	b.mu.Lock()
	b.notes = nil
	b.emojis = nil
	b.stickers = nil
	b.images = nil
	b.strokes = nil
	b.mu.Unlock()

	b.emit(Event{Kind: KindNote, Op: OpReset})
	return true
}

func (b *Board) Notes() []Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Note(nil), b.notes...)
}

func (b *Board) Note(id int64) (Note, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return findByID(b.notes, id)
}

func (b *Board) NextID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextID
}

func (b *Board) UserID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userID
}

func findByID[T identified](items []T, id int64) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
