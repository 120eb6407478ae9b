package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/samber/do/v2"

	"github.com/kidandcat/fridge/internal/api"
	"github.com/kidandcat/fridge/internal/auth"
	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/mail"
	"github.com/kidandcat/fridge/internal/ui"
	"github.com/kidandcat/fridge/internal/validation"
)

// HTTPServerHandle wraps http.Server with Shutdown.
type HTTPServerHandle struct {
	*http.Server
}

func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAppHandler provides the handler serving the wasm client and its
// page shell.
func ProvideAppHandler(i do.Injector) (*app.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	ui.Register()
	return &app.Handler{
		Name:        "Fridge",
		ShortName:   "Fridge",
		Title:       "My Fridge",
		Description: "Sticky notes, emoji and photos on a shared fridge door",
		Lang:        "en",
		ThemeColor:  "#ffcc80",
		Styles:      []string{"/web/fridge.css"},
		Env:         cfg.ClientEnv(),
	}, nil
}

// Routes builds the top level mux: the devstack API when enabled and the
// client for everything else.
func Routes(i do.Injector) (http.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	appHandler := do.MustInvoke[*app.Handler](i)

	mux := http.NewServeMux()
	if cfg.Devstack {
		h := api.Handler(api.Deps{
			Config:    *cfg,
			Store:     do.MustInvoke[*StoreHandle](i).Store,
			Auth:      do.MustInvoke[*auth.Service](i),
			Mailer:    do.MustInvoke[mail.Mailer](i),
			Limiter:   do.MustInvoke[*LimiterHandle](i).KeyedRateLimiter,
			Validator: do.MustInvoke[*validation.Validator](i),
			Log:       do.MustInvoke[*slog.Logger](i),
		})
		for _, prefix := range api.Prefixes {
			mux.Handle(prefix, h)
		}
	}
	mux.Handle("/", appHandler)
	return mux, nil
}

func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	handler, err := Routes(i)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
