// Package persist translates board note mutations into calls against a
// remote notes table.
package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/kidandcat/fridge/internal/board"
)

const (
	TableName  = "notes"
	onConflict = "id"
)

var ErrNoUser = errors.New("no authenticated user")

// Table is the subset of a PostgREST-style table client the bridge needs.
// Filters are column equality predicates.
type Table interface {
	Select(ctx context.Context, eq map[string]string) ([]map[string]any, error)
	Upsert(ctx context.Context, rec map[string]any, onConflict string) error
	Delete(ctx context.Context, eq map[string]string) error
}

type Bridge struct {
	table Table
	log   *slog.Logger
}

var _ board.Persister = (*Bridge)(nil)

func New(table Table, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bridge{table: table, log: log}
}

// FetchAll returns every note owned by userID. Rows that cannot be
// normalized are skipped.
func (b *Bridge) FetchAll(ctx context.Context, userID string) ([]board.Note, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	rows, err := b.table.Select(ctx, map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}

	notes := make([]board.Note, 0, len(rows))
	for _, row := range rows {
		n, err := Normalize(row)
		if err != nil {
			b.log.Warn("skipping stored note", "error", err)
			continue
		}
		notes = append(notes, n)
	}
	b.log.Debug("notes fetched", "user_id", userID, "count", len(notes))
	return notes, nil
}

func (b *Bridge) Upsert(ctx context.Context, n board.Note) error {
	if n.UserID == "" {
		return ErrNoUser
	}
	if err := b.table.Upsert(ctx, ToRecord(n), onConflict); err != nil {
		return fmt.Errorf("upsert note %d: %w", n.ID, err)
	}
	return nil
}

func (b *Bridge) Delete(ctx context.Context, id int64, userID string) error {
	if userID == "" {
		return ErrNoUser
	}
	err := b.table.Delete(ctx, map[string]string{
		"id":      strconv.FormatInt(id, 10),
		"user_id": userID,
	})
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}
