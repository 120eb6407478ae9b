// Package di wires the fridge server with samber/do.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/di/providers"
)

// NewContainer registers every provider. Services are built lazily on
// first use, so the devstack pieces stay idle unless enabled.
func NewContainer(cfg config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(cfg))
	do.Provide(injector, providers.ProvideLogger)

	// Devstack
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvideLimiter)
	do.Provide(injector, providers.ProvideValidator)

	// Server
	do.Provide(injector, providers.ProvideAppHandler)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap validates the configuration and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	cfg := do.MustInvoke[*config.Config](injector)
	if err := cfg.Validate(); err != nil {
		return err
	}
	_ = do.MustInvoke[*slog.Logger](injector)
	if cfg.Devstack {
		_ = do.MustInvoke[*providers.StoreHandle](injector)
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
