package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corvid-labs/taskline-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			a.Log.Error("server failed", "error", err)
		}
	case sig := <-stop:
		a.Log.Info("shutting down", "signal", sig.String())
	}

	if err := a.Shutdown(context.Background()); err != nil {
		a.Log.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
