package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/blogfs"
)

const shutdownTimeout = 10 * time.Second

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := blogfs.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- app.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Echo.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
