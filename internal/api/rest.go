package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kidandcat/fridge/internal/apperr"
	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/db"
	"github.com/kidandcat/fridge/internal/persist"
)

const rlsViolation = `new row violates row-level security policy for table "notes"`

// Query parameters that are not column filters.
var reservedParams = map[string]bool{
	"select":      true,
	"order":       true,
	"on_conflict": true,
	"columns":     true,
	"apikey":      true,
}

// noteFilter is the parsed form of PostgREST style eq filters. Rows are
// always scoped to the caller; a user_id filter naming someone else
// matches nothing.
type noteFilter struct {
	id      *int64
	nothing bool
}

func parseFilter(q url.Values, caller string) (noteFilter, error) {
	var f noteFilter
	for key, values := range q {
		if reservedParams[key] {
			continue
		}
		for _, v := range values {
			val, ok := strings.CutPrefix(v, "eq.")
			if !ok {
				return f, apperr.Newf(apperr.CodeBadRequest, "unsupported filter %s=%s", key, v)
			}
			switch key {
			case "id":
				id, err := strconv.ParseInt(val, 10, 64)
				if err != nil {
					return f, apperr.Newf(apperr.CodeBadRequest, "invalid id %q", val)
				}
				if f.id != nil && *f.id != id {
					f.nothing = true
				}
				f.id = &id
			case "user_id":
				if val != caller {
					f.nothing = true
				}
			default:
				return f, apperr.Newf(apperr.CodeBadRequest, "unknown column %q", key)
			}
		}
	}
	return f, nil
}

func (s *server) handleSelectNotes(w http.ResponseWriter, r *http.Request) {
	caller := auth.CurrentUser(r).Subject
	f, err := parseFilter(r.URL.Query(), caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if f.nothing {
		writeJSON(w, http.StatusOK, []db.Note{})
		return
	}
	notes, err := s.Store.SelectNotes(caller, f.id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

type notePayload struct {
	ID      int64  `json:"id" validate:"gt=0"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"max=10000"`
	Color   string `json:"color" validate:"omitempty,notecolor"`
}

// records accepts either a single JSON object or an array of them.
func records(raw json.RawMessage) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var out []map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, apperr.BadRequest("invalid JSON")
		}
		return out, nil
	}
	var one map[string]any
	if err := json.Unmarshal(raw, &one); err != nil || one == nil {
		return nil, apperr.BadRequest("invalid JSON")
	}
	return []map[string]any{one}, nil
}

func (s *server) toRow(rec map[string]any, caller string) (*db.Note, error) {
	if owner, ok := rec["user_id"].(string); ok && owner != "" && owner != caller {
		return nil, apperr.Forbidden(rlsViolation)
	}
	n, err := persist.Normalize(rec)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	color, _ := rec["color"].(string)
	if err := s.Validator.Validate(notePayload{ID: n.ID, Title: n.Title, Content: n.Content, Color: color}); err != nil {
		return nil, err
	}
	return &db.Note{
		UserID:       caller,
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		Color:        string(n.Color),
		PositionX:    n.X,
		PositionY:    n.Y,
		Rotate:       n.Rotate,
		ShadowHeight: n.ShadowHeight,
		ShadowBlur:   n.ShadowBlur,
	}, nil
}

// handleUpsertNotes inserts rows, or merges them over existing ones when
// the Prefer header asks for resolution=merge-duplicates.
func (s *server) handleUpsertNotes(w http.ResponseWriter, r *http.Request) {
	caller := auth.CurrentUser(r).Subject
	if oc := r.URL.Query().Get("on_conflict"); oc != "" && oc != "id" {
		s.writeError(w, apperr.Newf(apperr.CodeBadRequest, "unsupported on_conflict %q", oc))
		return
	}
	prefer := r.Header.Get("Prefer")
	merge := strings.Contains(prefer, "resolution=merge-duplicates")

	var raw json.RawMessage
	if err := decode(w, r, &raw); err != nil {
		s.writeError(w, err)
		return
	}
	recs, err := records(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rows := make([]*db.Note, 0, len(recs))
	for _, rec := range recs {
		row, err := s.toRow(rec, caller)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if !merge {
			existing, err := s.Store.SelectNotes(caller, &row.ID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			if len(existing) > 0 {
				s.writeError(w, apperr.Conflict(`duplicate key value violates unique constraint "notes_pkey"`))
				return
			}
		}
		rows = append(rows, row)
	}

	out := make([]db.Note, 0, len(rows))
	for _, row := range rows {
		if err := s.Store.UpsertNote(row); err != nil {
			s.writeError(w, err)
			return
		}
		out = append(out, *row)
	}

	if strings.Contains(prefer, "return=representation") {
		writeJSON(w, http.StatusCreated, out)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleDeleteNotes(w http.ResponseWriter, r *http.Request) {
	caller := auth.CurrentUser(r).Subject
	f, err := parseFilter(r.URL.Query(), caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if f.id == nil {
		s.writeError(w, apperr.BadRequest("DELETE requires a filter on id"))
		return
	}
	if !f.nothing {
		n, err := s.Store.DeleteNotes(caller, *f.id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Log.Debug("notes deleted", "user_id", caller, "id", *f.id, "count", n)
	}
	w.WriteHeader(http.StatusNoContent)
}
