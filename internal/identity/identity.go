// Package identity resolves who is using the board: a signed-in account
// from the identity provider or a locally stored development identity.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kidandcat/fridge/internal/supabase"
)

// DevUserKey is the local storage key of the development identity.
const DevUserKey = "fridgeflow_dev_user"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Dev   bool   `json:"dev,omitempty"`
}

// Provider is the identity provider surface the board relies on.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*supabase.User, *supabase.Session, error)
	GetSession(ctx context.Context) (*supabase.Session, error)
	OnAuthStateChange(fn func(supabase.AuthEvent, *supabase.Session)) func()
	SignOut(ctx context.Context) error
}

type devRecord struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type Service struct {
	auth Provider
	kv   supabase.KV

	mu       sync.Mutex
	watchers map[int]func(*User)
	seq      int
}

func NewService(auth Provider, kv supabase.KV) *Service {
	return &Service{auth: auth, kv: kv, watchers: make(map[int]func(*User))}
}

// Current returns the active user or nil when nobody is signed in. The
// development identity takes precedence over a provider session.
func (s *Service) Current(ctx context.Context) (*User, error) {
	if u := s.devUser(); u != nil {
		return u, nil
	}
	sess, err := s.auth.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return fromSession(sess), nil
}

// SignIn returns a *Error classifying provider failures.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, error) {
	sess, err := s.auth.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, Classify(err)
	}
	return fromSession(sess), nil
}

// SignUp registers an account named after the local part of the email.
// The returned user is nil when the provider wants the address confirmed
// first.
func (s *Service) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	name, _, _ := strings.Cut(email, "@")
	_, sess, err := s.auth.SignUp(ctx, email, password, map[string]any{"full_name": name})
	if err != nil {
		return nil, Classify(err)
	}
	return fromSession(sess), nil
}

// DevBypass stores and returns the development identity.
func (s *Service) DevBypass() (*User, error) {
	rec := devRecord{
		ID:           "dev-user-123",
		Email:        "dev@example.com",
		UserMetadata: map[string]any{"full_name": "Development User"},
	}
	if err := s.kv.Set(DevUserKey, rec); err != nil {
		return nil, fmt.Errorf("store dev user: %w", err)
	}
	u := fromDev(rec)
	s.notify(u)
	return u, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	if s.devUser() != nil {
		s.kv.Del(DevUserKey)
		s.notify(nil)
		return nil
	}
	return s.auth.SignOut(ctx)
}

// Watch calls fn whenever the signed-in user changes.
func (s *Service) Watch(fn func(*User)) func() {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.watchers[id] = fn
	s.mu.Unlock()

	unsubscribe := s.auth.OnAuthStateChange(func(ev supabase.AuthEvent, sess *supabase.Session) {
		if ev == supabase.EventInitialSession || s.devUser() != nil {
			return
		}
		fn(fromSession(sess))
	})
	return func() {
		unsubscribe()
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(u *User) {
	s.mu.Lock()
	fns := make([]func(*User), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

func (s *Service) devUser() *User {
	var rec devRecord
	if err := s.kv.Get(DevUserKey, &rec); err != nil || rec.ID == "" {
		return nil
	}
	return fromDev(rec)
}

func fromDev(rec devRecord) *User {
	name, _ := rec.UserMetadata["full_name"].(string)
	return &User{ID: rec.ID, Email: rec.Email, Name: name, Dev: true}
}

func fromSession(sess *supabase.Session) *User {
	if sess == nil || sess.User.ID == "" {
		return nil
	}
	name, _ := sess.User.UserMetadata["full_name"].(string)
	return &User{ID: sess.User.ID, Email: sess.User.Email, Name: name}
}
