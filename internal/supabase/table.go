package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/supabase-community/postgrest-go"
)

// Table issues PostgREST requests against one table. Filters are plain
// equality predicates.
type Table struct {
	c    *Client
	name string
}

func eq(f *postgrest.FilterBuilder, filters map[string]string) *postgrest.FilterBuilder {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f = f.Eq(k, filters[k])
	}
	return f
}

func (t *Table) Select(ctx context.Context, filters map[string]string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, _, err := eq(t.c.rest().From(t.name).Select("*", "", false), filters).Execute()
	if err != nil {
		return nil, restError(err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", t.name, err)
	}
	return rows, nil
}

// Upsert inserts rec or merges it into the row matching onConflict.
func (t *Table) Upsert(ctx context.Context, rec map[string]any, onConflict string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := t.c.rest().From(t.name).Upsert(rec, onConflict, "minimal", "").Execute(); err != nil {
		return restError(err)
	}
	return nil
}

func (t *Table) Delete(ctx context.Context, filters map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := eq(t.c.rest().From(t.name).Delete("minimal", ""), filters).Execute(); err != nil {
		return restError(err)
	}
	return nil
}
