package main

import (
	"context"
	"fmt"
	"os"

	"github.com/errata-app/errata-api/internal/config"
	"github.com/errata-app/errata-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	app, err := newApplication(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return startServer(app, newRouter(app))
}
