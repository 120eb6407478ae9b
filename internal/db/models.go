package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Metadata     string     `db:"user_metadata"`
	ConfirmedAt  *time.Time `db:"confirmed_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Note is a stored note row. JSON names are the canonical column names
// served over the REST dialect.
type Note struct {
	UserID       string    `db:"user_id" json:"user_id"`
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	Color        string    `db:"color" json:"color"`
	PositionX    float64   `db:"position_x" json:"position_x"`
	PositionY    float64   `db:"position_y" json:"position_y"`
	Rotate       string    `db:"rotate" json:"rotate"`
	ShadowHeight int       `db:"shadow_height" json:"shadow_height"`
	ShadowBlur   int       `db:"shadow_blur" json:"shadow_blur"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Users

func (s *Store) CreateUser(u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Metadata == "" {
		u.Metadata = "{}"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExec(`INSERT INTO users (id, email, password_hash, user_metadata, confirmed_at, created_at)
		VALUES (:id, :email, :password_hash, :user_metadata, :confirmed_at, :created_at)`, u)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(email string) (*User, error) {
	return s.user("SELECT * FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) UserByID(id string) (*User, error) {
	return s.user("SELECT * FROM users WHERE id = ?", id)
}

func (s *Store) user(query string, arg any) (*User, error) {
	var u User
	if err := s.db.Get(&u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (s *Store) ConfirmUser(id string, at time.Time) error {
	res, err := s.db.Exec("UPDATE users SET confirmed_at = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Refresh tokens

func (s *Store) SaveRefreshToken(token, userID string, expiresAt time.Time) error {
	_, err := s.db.Exec("INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken deletes token and returns its owner. Each refresh
// token can be used once; expired or unknown tokens yield ErrNotFound.
func (s *Store) ConsumeRefreshToken(token string, now time.Time) (string, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var row struct {
		UserID    string `db:"user_id"`
		ExpiresAt int64  `db:"expires_at"`
	}
	err = tx.Get(&row, "SELECT user_id, expires_at FROM refresh_tokens WHERE token = ?", token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query refresh token: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM refresh_tokens WHERE token = ?", token); err != nil {
		return "", fmt.Errorf("delete refresh token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if row.ExpiresAt <= now.Unix() {
		return "", ErrNotFound
	}
	return row.UserID, nil
}

func (s *Store) RevokeUserTokens(userID string) error {
	if _, err := s.db.Exec("DELETE FROM refresh_tokens WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// Notes

// SelectNotes returns userID's notes ordered by id. A non-nil id narrows
// the result to that note.
func (s *Store) SelectNotes(userID string, id *int64) ([]Note, error) {
	query := "SELECT * FROM notes WHERE user_id = ?"
	args := []any{userID}
	if id != nil {
		query += " AND id = ?"
		args = append(args, *id)
	}
	query += " ORDER BY id"

	notes := []Note{}
	if err := s.db.Select(&notes, query, args...); err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	return notes, nil
}

// UpsertNote inserts n or merges it over the caller's existing note with
// the same id. Ids are scoped per user, so one account can never touch
// another account's rows. A merge keeps the stored created_at, which is
// read back into n.
func (s *Store) UpsertNote(n *Note) error {
	now := time.Now().UTC()
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = n.UpdatedAt
	}
	_, err := s.db.NamedExec(`INSERT INTO notes
		(user_id, id, title, content, color, position_x, position_y, rotate, shadow_height, shadow_blur, created_at, updated_at)
		VALUES (:user_id, :id, :title, :content, :color, :position_x, :position_y, :rotate, :shadow_height, :shadow_blur, :created_at, :updated_at)
		ON CONFLICT(user_id, id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			color = excluded.color,
			position_x = excluded.position_x,
			position_y = excluded.position_y,
			rotate = excluded.rotate,
			shadow_height = excluded.shadow_height,
			shadow_blur = excluded.shadow_blur,
			updated_at = excluded.updated_at`, n)
	if err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}
	if err := s.db.Get(&n.CreatedAt, "SELECT created_at FROM notes WHERE user_id = ? AND id = ?", n.UserID, n.ID); err != nil {
		return fmt.Errorf("read created_at: %w", err)
	}
	return nil
}

// DeleteNotes removes userID's notes matching id and reports how many
// went away.
func (s *Store) DeleteNotes(userID string, id int64) (int64, error) {
	res, err := s.db.Exec("DELETE FROM notes WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return 0, fmt.Errorf("delete notes: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
