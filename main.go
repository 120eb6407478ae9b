// Command fridge serves the fridge board client and, with -devstack, a
// self-hosted identity and note storage backend.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/kidandcat/fridge/internal/config"
	"github.com/kidandcat/fridge/internal/di"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	baseURL := flag.String("base-url", "http://localhost:8080", "public URL of this server")
	dataDir := flag.String("data", "data", "directory of the devstack database")
	devstack := flag.Bool("devstack", false, "serve the identity and storage API from this process")
	flag.Parse()

	cfg := config.Load(*addr, *baseURL, *dataDir, *devstack)
	injector := di.NewContainer(cfg)

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*slog.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
