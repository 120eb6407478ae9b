package identity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/kidandcat/fridge/internal/supabase"
)

type fakeProvider struct {
	session    *supabase.Session
	err        error
	signUpMeta map[string]any
	listener   func(supabase.AuthEvent, *supabase.Session)
	signedOut  bool
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, _ string) (*supabase.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.session = &supabase.Session{AccessToken: "t", User: supabase.User{ID: "u1", Email: email}}
	if f.listener != nil {
		f.listener(supabase.EventSignedIn, f.session)
	}
	return f.session, nil
}

func (f *fakeProvider) SignUp(_ context.Context, email, _ string, meta map[string]any) (*supabase.User, *supabase.Session, error) {
	f.signUpMeta = meta
	if f.err != nil {
		return nil, nil, f.err
	}
	return &supabase.User{ID: "u2", Email: email}, nil, nil
}

func (f *fakeProvider) GetSession(context.Context) (*supabase.Session, error) {
	return f.session, f.err
}

func (f *fakeProvider) OnAuthStateChange(fn func(supabase.AuthEvent, *supabase.Session)) func() {
	f.listener = fn
	fn(supabase.EventInitialSession, f.session)
	return func() { f.listener = nil }
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.signedOut = true
	f.session = nil
	if f.listener != nil {
		f.listener(supabase.EventSignedOut, nil)
	}
	return nil
}

type mapKV map[string][]byte

func (m mapKV) Get(k string, v any) error {
	raw, ok := m[k]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (m mapKV) Set(k string, v any) error {
	raw, err := json.Marshal(v)
	m[k] = raw
	return err
}

func (m mapKV) Del(k string) { delete(m, k) }

func TestCurrent(t *testing.T) {
	p := &fakeProvider{}
	s := NewService(p, mapKV{})
	ctx := context.Background()

	u, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	p.session = &supabase.Session{User: supabase.User{ID: "u1", Email: "a@b.c", UserMetadata: map[string]any{"full_name": "A"}}}
	u, err = s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: "u1", Email: "a@b.c", Name: "A"}, u)
}

func TestDevBypass(t *testing.T) {
	kv := mapKV{}
	p := &fakeProvider{session: &supabase.Session{User: supabase.User{ID: "real"}}}
	s := NewService(p, kv)

	var seen []*User
	s.Watch(func(u *User) { seen = append(seen, u) })

	dev, err := s.DevBypass()
	require.NoError(t, err)
	assert.Equal(t, "dev-user-123", dev.ID)
	assert.True(t, dev.Dev)
	assert.Contains(t, kv, DevUserKey)

	cur, _ := s.Current(context.Background())
	assert.Equal(t, dev, cur, "dev identity wins over provider session")

	require.NoError(t, s.SignOut(context.Background()))
	assert.NotContains(t, kv, DevUserKey)
	assert.False(t, p.signedOut)
	assert.Equal(t, []*User{dev, nil}, seen)
}

func TestSignInAndWatch(t *testing.T) {
	p := &fakeProvider{}
	s := NewService(p, mapKV{})

	var seen []*User
	stop := s.Watch(func(u *User) { seen = append(seen, u) })

	u, err := s.SignIn(context.Background(), "  a@b.c ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)

	require.NoError(t, s.SignOut(context.Background()))
	assert.True(t, p.signedOut)
	require.Len(t, seen, 2)
	assert.Equal(t, "u1", seen[0].ID)
	assert.Nil(t, seen[1])

	stop()
	assert.Nil(t, p.listener)
}

func TestSignUp(t *testing.T) {
	p := &fakeProvider{}
	s := NewService(p, mapKV{})

	u, err := s.SignUp(context.Background(), "new.user@b.c", "secret")
	require.NoError(t, err)
	assert.Nil(t, u, "confirmation pending")
	assert.Equal(t, map[string]any{"full_name": "new.user"}, p.signUpMeta)
}

func TestClassifyAndDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		en   string
		he   string
	}{
		{
			name: "invalid credentials",
			err:  &supabase.APIError{Status: 400, Message: "Invalid login credentials"},
			kind: InvalidCredentials,
			en:   "Invalid email or password. Check your email and password.",
			he:   "פרטי התחברות שגויים. בדוק את האימייל והסיסמה שלך.",
		},
		{
			name: "unconfirmed",
			err:  &supabase.APIError{Status: 400, Message: "Email not confirmed"},
			kind: EmailNotConfirmed,
			en:   "Your email has not been confirmed yet. Check your inbox.",
			he:   "האימייל טרם אומת. בדוק את תיבת הדואר שלך.",
		},
		{
			name: "redirect",
			err:  &supabase.APIError{Status: 400, Message: "requested path is invalid"},
			kind: InvalidRedirect,
			en:   "Routing error. Please refresh the page and try again.",
			he:   "שגיאת ניתוב. אנא רענן את הדף ונסה שוב.",
		},
		{
			name: "registered",
			err:  &supabase.APIError{Status: 422, Message: "User already registered"},
			kind: AlreadyRegistered,
			en:   "A user with this email is already registered. Please sign in.",
			he:   "משתמש עם אימייל זה כבר רשום. אנא התחבר.",
		},
		{
			name: "weak password",
			err:  &supabase.APIError{Status: 422, Message: "Password should be at least 6 characters."},
			kind: WeakPassword,
			en:   "The password must be at least 6 characters long.",
			he:   "הסיסמה צריכה להיות באורך של לפחות 6 תווים.",
		},
		{
			name: "unknown keeps provider text",
			err:  &supabase.APIError{Status: 429, Message: "Too many requests"},
			kind: Unknown,
			en:   "Too many requests",
			he:   "Too many requests",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var idErr *Error
			require.True(t, errors.As(Classify(tt.err), &idErr))
			assert.Equal(t, tt.kind, idErr.Kind)
			assert.ErrorIs(t, idErr, tt.err)
			assert.Equal(t, tt.en, Describe(tt.err, language.English))
			assert.Equal(t, tt.he, Describe(tt.err, language.Hebrew))
		})
	}
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, language.Hebrew, ParseLanguage("he-IL"))
	assert.Equal(t, language.English, ParseLanguage("en-US"))
	assert.Equal(t, language.English, ParseLanguage("fr"))
	assert.Equal(t, language.English, ParseLanguage(""))
}

func TestText(t *testing.T) {
	assert.Equal(t, MsgSignedUp, Text(MsgSignedUp, language.English))
	assert.Equal(t, "ההרשמה הצליחה! אתה יכול להתחבר כעת.", Text(MsgSignedUp, language.Hebrew))
}
