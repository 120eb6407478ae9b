package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/fridge/internal/apperr"
	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/board"
	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/db"
	"github.com/kidandcat/fridge/internal/logger"
	"github.com/kidandcat/fridge/internal/mail"
	"github.com/kidandcat/fridge/internal/persist"
	"github.com/kidandcat/fridge/internal/ratelimit"
	"github.com/kidandcat/fridge/internal/supabase"
	"github.com/kidandcat/fridge/internal/validation"
)

const anonKey = "anon-test-key"

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.sent...)
}

type testEnv struct {
	srv    *httptest.Server
	auth   *auth.Service
	outbox *outbox
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		BaseURL:     "http://fridge.test",
		AnonKey:     anonKey,
		CORSOrigins: []string{"*"},
		Auth: config.AuthConfig{
			JWTSecret:  "0123456789abcdef0123456789abcdef",
			AccessTTL:  time.Hour,
			RefreshTTL: time.Hour,
		},
	}
	log := logger.Discard()
	limiter := ratelimit.New(0.001, 3)
	t.Cleanup(limiter.Stop)

	env := &testEnv{
		auth:   auth.NewService(store, cfg.Auth, log),
		outbox: &outbox{},
	}
	env.srv = httptest.NewServer(Handler(Deps{
		Config:    cfg,
		Store:     store,
		Auth:      env.auth,
		Mailer:    env.outbox,
		Limiter:   limiter,
		Validator: validation.New(),
		Log:       log,
	}))
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) client() (*supabase.Client, *supabase.Auth) {
	c := supabase.New(e.srv.URL, anonKey, supabase.WithHTTPClient(e.srv.Client()))
	return c, supabase.NewAuth(c, nil)
}

func (e *testEnv) signUp(t *testing.T, email string) (*supabase.Client, *supabase.Session) {
	t.Helper()
	c, a := e.client()
	_, sess, err := a.SignUp(context.Background(), email, "secret1", map[string]any{"full_name": "ana"})
	require.NoError(t, err)
	require.NotNil(t, sess)
	return c, sess
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.srv.Client().Get(env.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, a := env.client()

	_, sess, err := a.SignUp(ctx, "ana@example.com", "secret1", nil)
	require.NoError(t, err)
	require.NotNil(t, sess)

	_, _, err = a.SignUp(ctx, "ana@example.com", "secret1", nil)
	apiErr, ok := supabase.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, auth.MsgAlreadyRegistered, apiErr.Message)

	_, err = a.SignInWithPassword(ctx, "ana@example.com", "wrong")
	apiErr, ok = supabase.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, auth.MsgInvalidCredentials, apiErr.Message)

	signed, err := a.SignInWithPassword(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, signed.User.ID)

	require.NoError(t, a.SignOut(ctx))
	_, err = env.auth.Refresh(signed.RefreshToken)
	assert.Error(t, err, "logout revokes refresh tokens")
}

func TestSignInRateLimited(t *testing.T) {
	env := newTestEnv(t)
	_, a := env.client()

	var last error
	for range 4 {
		_, last = a.SignInWithPassword(context.Background(), "nobody@example.com", "secret1")
	}
	apiErr, ok := supabase.AsAPIError(last)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestSignUpRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.auth.RequireConfirm = true
	_, a := env.client()

	u, sess, err := a.SignUp(context.Background(), "bo@example.com", "secret1", nil)
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, "bo@example.com", u.Email)

	sent := env.outbox.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "bo@example.com", sent[0].To)

	start := strings.Index(sent[0].HTML, "http://fridge.test/auth/v1/verify?token=")
	require.GreaterOrEqual(t, start, 0)
	link := sent[0].HTML[start:]
	link = link[:strings.Index(link, `"`)]
	link = strings.Replace(link, "http://fridge.test", env.srv.URL, 1)

	noRedirect := *env.srv.Client()
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := noRedirect.Get(link)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err = a.SignInWithPassword(context.Background(), "bo@example.com", "secret1")
	assert.NoError(t, err)
}

func TestBridgeRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c, sess := env.signUp(t, "ana@example.com")
	uid := sess.User.ID

	bridge := persist.New(c.From(persist.TableName), logger.Discard())

	notes, err := bridge.FetchAll(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, notes)

	for _, n := range board.DefaultNotes(uid) {
		require.NoError(t, bridge.Upsert(ctx, n))
	}
	moved := board.DefaultNotes(uid)[0]
	moved.X, moved.Y = 321, 123
	require.NoError(t, bridge.Upsert(ctx, moved))

	notes, err = bridge.FetchAll(ctx, uid)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, moved.ID, notes[0].ID)
	assert.Equal(t, 321.0, notes[0].X)
	assert.Equal(t, moved.Rotate, notes[0].Rotate)

	require.NoError(t, bridge.Delete(ctx, notes[1].ID, uid))
	notes, err = bridge.FetchAll(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestNotesAreScopedPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ca, sa := env.signUp(t, "ana@example.com")
	cb, sb := env.signUp(t, "bo@example.com")

	ba := persist.New(ca.From(persist.TableName), nil)
	bb := persist.New(cb.From(persist.TableName), nil)

	require.NoError(t, ba.Upsert(ctx, board.Note{ID: 1, Title: "ana's", UserID: sa.User.ID}))
	require.NoError(t, bb.Upsert(ctx, board.Note{ID: 1, Title: "bo's", UserID: sb.User.ID}))

	// Writing a row on behalf of someone else is refused.
	err := ba.Upsert(ctx, board.Note{ID: 1, Title: "hijack", UserID: sb.User.ID})
	apiErr, ok := supabase.AsAPIError(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, string(apperr.CodeForbidden), apiErr.Code)

	// Reading or deleting someone else's rows matches nothing.
	rows, err := ca.From(persist.TableName).Select(ctx, map[string]string{"user_id": sb.User.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, ba.Delete(ctx, 1, sb.User.ID))

	notes, err := bb.FetchAll(ctx, sb.User.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "bo's", notes[0].Title)
}

func TestRESTErrors(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.signUp(t, "ana@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/rest/v1/notes", "", "", http.StatusUnauthorized},
		{"anon key as bearer", http.MethodGet, "/rest/v1/notes", "", anonKey, http.StatusUnauthorized},
		{"unsupported operator", http.MethodGet, "/rest/v1/notes?id=gt.3", "", sess.AccessToken, http.StatusBadRequest},
		{"unknown column", http.MethodGet, "/rest/v1/notes?title=eq.x", "", sess.AccessToken, http.StatusBadRequest},
		{"delete without filter", http.MethodDelete, "/rest/v1/notes", "", sess.AccessToken, http.StatusBadRequest},
		{"bad color", http.MethodPost, "/rest/v1/notes", `{"id":5,"color":"teal"}`, sess.AccessToken, http.StatusBadRequest},
		{"missing id", http.MethodPost, "/rest/v1/notes", `{"title":"x"}`, sess.AccessToken, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/rest/v1/notes", `{`, sess.AccessToken, http.StatusBadRequest},
		{"bad grant", http.MethodPost, "/auth/v1/token?grant_type=magic", `{}`, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, env.srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("apikey", anonKey)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := env.srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestInsertWithoutMergeConflicts(t *testing.T) {
	env := newTestEnv(t)
	_, sess := env.signUp(t, "ana@example.com")

	post := func() *http.Response {
		req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/rest/v1/notes", strings.NewReader(`{"id":7,"title":"t"}`))
		require.NoError(t, err)
		req.Header.Set("apikey", anonKey)
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
		req.Header.Set("Prefer", "return=representation")
		resp, err := env.srv.Client().Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post()
	var rows []db.Note
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, rows, 1)
	assert.Equal(t, sess.User.ID, rows[0].UserID)
	assert.Equal(t, "orange", rows[0].Color)

	resp = post()
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFriendNote(t *testing.T) {
	env := newTestEnv(t)
	c, _ := env.signUp(t, "ana@example.com")

	err := c.Invoke(context.Background(), "friend-note", map[string]string{
		"email": "bo@example.com", "title": "Dinner", "content": "7pm?",
	}, nil)
	require.NoError(t, err)

	sent := env.outbox.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "bo@example.com", sent[0].To)
	assert.Equal(t, "ana@example.com", sent[0].ReplyTo)

	err = c.Invoke(context.Background(), "friend-note", map[string]string{"email": "nope"}, nil)
	apiErr, ok := supabase.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodOptions, env.srv.URL+"/rest/v1/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "apikey, authorization, prefer, accept-profile, content-profile")

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
