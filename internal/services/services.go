// Package services builds the client side collaborators of the board:
// the backend client, the identity service and the note bridge.
package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/kidandcat/fridge/internal/identity"
	"github.com/kidandcat/fridge/internal/logger"
	"github.com/kidandcat/fridge/internal/persist"
	"github.com/kidandcat/fridge/internal/supabase"
)

// SessionKey is the local storage key of the provider session.
const SessionKey = "sb-fridge-auth-token"

// Config is what the page shell hands to the client.
type Config struct {
	SupabaseURL string
	AnonKey     string
	DevBypass   bool
	LogLevel    string
	LogWriter   io.Writer
}

type Services struct {
	Config   Config
	Log      *slog.Logger
	Client   *supabase.Client
	Auth     *supabase.Auth
	Identity *identity.Service
	Notes    *persist.Bridge

	once    sync.Once
	user    *identity.User
	initErr error
}

// New wires the services over kv, which holds the session and the
// development identity.
func New(cfg Config, kv supabase.KV, opts ...supabase.Option) *Services {
	log := logger.New(logger.Config{
		Writer: cfg.LogWriter,
		Format: logger.FormatText,
		Level:  logger.ParseLevel(cfg.LogLevel),
	})

	client := supabase.New(cfg.SupabaseURL, cfg.AnonKey, opts...)
	auth := supabase.NewAuth(client, supabase.KVStore{KV: kv, Key: SessionKey})

	return &Services{
		Config:   cfg,
		Log:      log,
		Client:   client,
		Auth:     auth,
		Identity: identity.NewService(auth, kv),
		Notes:    persist.New(client.From(persist.TableName), log.With("component", "persist")),
	}
}

// Init resolves the user of a restored session. Only the first call does
// any work; later calls return the same result.
func (s *Services) Init(ctx context.Context) (*identity.User, error) {
	s.once.Do(func() {
		s.user, s.initErr = s.Identity.Current(ctx)
		if s.initErr != nil {
			s.Log.Warn("restore session failed", "error", s.initErr)
			return
		}
		if s.user != nil {
			s.Log.Info("session restored", "user_id", s.user.ID, "dev", s.user.Dev)
		}
	})
	return s.user, s.initErr
}

// FriendNote is the body of the friend-note function.
type FriendNote struct {
	Email   string `json:"email"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Services) SendFriendNote(ctx context.Context, n FriendNote) error {
	return s.Client.Invoke(ctx, "friend-note", n, nil)
}
