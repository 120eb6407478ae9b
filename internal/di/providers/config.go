// Package providers holds the dependency injection providers of the
// fridge server.
package providers

import (
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/logger"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 30 * time.Second

// ProvideConfig provides the already loaded configuration.
func ProvideConfig(cfg config.Config) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return &cfg, nil
	}
}

func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		Environment: cfg.Environment,
		AddSource:   cfg.Environment == "development",
	})

	log.Info("starting fridge",
		"environment", cfg.Environment,
		"log_level", cfg.Log.Level,
		"devstack", cfg.Devstack,
		"supabase_url", cfg.SupabaseURL,
	)
	return log, nil
}
