package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kidandcat/fridge/internal/board"
)

const (
	defaultShadowHeight = 10
	defaultShadowBlur   = 30
	defaultRotate       = "rotate(0deg)"
	defaultColor        = board.Orange
)

var ErrInvalidRecord = errors.New("invalid note record")

// Normalize maps a stored row onto the in-memory note shape. Several
// historical column names are accepted for the same field; the first one
// present and non-null wins.
func Normalize(rec map[string]any) (board.Note, error) {
	raw, ok := first(rec, "id")
	if !ok {
		return board.Note{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	id, ok := toInt(raw)
	if !ok {
		return board.Note{}, fmt.Errorf("%w: invalid id %v", ErrInvalidRecord, raw)
	}

	n := board.Note{
		ID:           id,
		Title:        text(rec, "title"),
		Content:      text(rec, "content"),
		Color:        board.Color(text(rec, "color")),
		Rotate:       text(rec, "rotate"),
		UserID:       text(rec, "user_id", "userId"),
		ShadowHeight: defaultShadowHeight,
		ShadowBlur:   defaultShadowBlur,
	}
	if x, ok := number(rec, "x", "position_x"); ok {
		n.X = x
	}
	if y, ok := number(rec, "y", "position_y"); ok {
		n.Y = y
	}
	if v, ok := number(rec, "shadowHeight", "shadow_height"); ok {
		n.ShadowHeight = int(v)
	}
	if v, ok := number(rec, "shadowBlur", "shadow_blur"); ok {
		n.ShadowBlur = int(v)
	}
	if n.Rotate == "" {
		n.Rotate = defaultRotate
	}
	if !n.Color.Valid() {
		n.Color = defaultColor
	}
	return n, nil
}

// ToRecord is the write-side shape. Only canonical column names are used.
func ToRecord(n board.Note) map[string]any {
	return map[string]any{
		"id":            n.ID,
		"user_id":       n.UserID,
		"title":         n.Title,
		"content":       n.Content,
		"color":         string(n.Color),
		"position_x":    n.X,
		"position_y":    n.Y,
		"rotate":        n.Rotate,
		"shadow_height": n.ShadowHeight,
		"shadow_blur":   n.ShadowBlur,
	}
}

func first(rec map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func text(rec map[string]any, keys ...string) string {
	v, ok := first(rec, keys...)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func number(rec map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// toInt accepts whole numbers that fit in an int64.
func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(x, 10, 64); err == nil {
			return i, true
		}
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// toFloat rejects NaN and infinities so a broken column falls through to
// the next alias.
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
