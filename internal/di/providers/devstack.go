package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/db"
	"github.com/kidandcat/fridge/internal/mail"
	"github.com/kidandcat/fridge/internal/ratelimit"
	"github.com/kidandcat/fridge/internal/validation"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*db.Store
}

// Shutdown implements do.Shutdowner.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	store, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized", "dir", cfg.DataDir)
	return &StoreHandle{Store: store}, nil
}

func ProvideAuthService(i do.Injector) (*auth.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	log.Info("auth configured",
		"access_ttl", cfg.Auth.AccessTTL,
		"refresh_ttl", cfg.Auth.RefreshTTL,
		"require_confirm", cfg.Auth.RequireConfirm,
	)
	return auth.NewService(store.Store, cfg.Auth, log), nil
}

func ProvideMailer(i do.Injector) (mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	return mail.FromConfig(cfg.Email, log), nil
}

// LimiterHandle stops the limiter's sweep goroutine on shutdown.
type LimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

func (h *LimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

func ProvideLimiter(i do.Injector) (*LimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &LimiterHandle{ratelimit.New(cfg.Auth.SignInRate, cfg.Auth.SignInBurst)}, nil
}

func ProvideValidator(do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
