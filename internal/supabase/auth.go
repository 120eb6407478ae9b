package supabase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/supabase-community/gotrue-go/types"
)

// refreshMargin is how long before expiry a stored session is refreshed.
const refreshMargin = 60 * time.Second

type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

func fromUser(u types.User) User {
	return User{ID: u.ID.String(), Email: u.Email, UserMetadata: u.UserMetadata}
}

func fromSession(s types.Session) *Session {
	return &Session{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		ExpiresAt:    s.ExpiresAt,
		RefreshToken: s.RefreshToken,
		User:         fromUser(s.User),
	}
}

func (s *Session) expiresSoon(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Add(refreshMargin).Unix() >= s.ExpiresAt
}

type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Auth talks to the GoTrue endpoints through gotrue-go and keeps the current session in a
// SessionStore.
type Auth struct {
	c     *Client
	store SessionStore
	now   func() time.Time

	mu        sync.Mutex
	listeners map[int]func(AuthEvent, *Session)
	seq       int
}

func NewAuth(c *Client, store SessionStore) *Auth {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Auth{
		c:         c,
		store:     store,
		now:       time.Now,
		listeners: make(map[int]func(AuthEvent, *Session)),
	}
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := a.c.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, authError(err)
	}
	return a.adopt(fromSession(resp.Session), EventSignedIn)
}

// SignUp registers a new account. The returned session is nil when the
// backend requires email confirmation first.
func (a *Auth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, *Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	resp, err := a.c.auth.Signup(types.SignupRequest{Email: email, Password: password, Data: metadata})
	if err != nil {
		return nil, nil, authError(err)
	}
	if resp.Session.AccessToken == "" {
		u := fromUser(resp.User)
		return &u, nil, nil
	}
	sess, err := a.adopt(fromSession(resp.Session), EventSignedIn)
	if err != nil {
		return nil, nil, err
	}
	return &sess.User, sess, nil
}

// GetSession returns the stored session, refreshing it when it is about
// to expire. A nil session means nobody is signed in.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	sess, err := a.store.Load()
	if err != nil || sess == nil {
		return nil, err
	}
	if !sess.expiresSoon(a.now()) {
		a.c.SetAccessToken(sess.AccessToken)
		return sess, nil
	}
	if sess.RefreshToken == "" {
		a.clear(EventSignedOut)
		return nil, nil
	}
	refreshed, err := a.refresh(ctx, sess.RefreshToken)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status < 500 {
			a.clear(EventSignedOut)
			return nil, nil
		}
		return nil, err
	}
	return refreshed, nil
}

// OnAuthStateChange registers fn and immediately reports the stored
// session as EventInitialSession. The returned func unsubscribes.
func (a *Auth) OnAuthStateChange(fn func(AuthEvent, *Session)) func() {
	a.mu.Lock()
	a.seq++
	id := a.seq
	a.listeners[id] = fn
	a.mu.Unlock()

	sess, _ := a.store.Load()
	fn(EventInitialSession, sess)

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// SignOut revokes the session remotely when possible and always forgets
// it locally.
func (a *Auth) SignOut(ctx context.Context) error {
	sess, _ := a.store.Load()
	var err error
	if sess != nil && sess.AccessToken != "" && ctx.Err() == nil {
		if err = a.c.auth.WithToken(sess.AccessToken).Logout(); err != nil {
			err = authError(err)
		}
	}
	a.clear(EventSignedOut)
	return err
}

func (a *Auth) refresh(ctx context.Context, token string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := a.c.auth.RefreshToken(token)
	if err != nil {
		return nil, authError(err)
	}
	return a.adopt(fromSession(resp.Session), EventTokenRefreshed)
}

func (a *Auth) adopt(sess *Session, ev AuthEvent) (*Session, error) {
	if sess.ExpiresAt == 0 && sess.ExpiresIn > 0 {
		sess.ExpiresAt = a.now().Add(time.Duration(sess.ExpiresIn) * time.Second).Unix()
	}
	if err := a.store.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.c.SetAccessToken(sess.AccessToken)
	a.notify(ev, sess)
	return sess, nil
}

func (a *Auth) clear(ev AuthEvent) {
	_ = a.store.Clear()
	a.c.SetAccessToken("")
	a.notify(ev, nil)
}

func (a *Auth) notify(ev AuthEvent, sess *Session) {
	a.mu.Lock()
	fns := make([]func(AuthEvent, *Session), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(ev, sess)
	}
}
