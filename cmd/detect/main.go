package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"objectdetection/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The first interrupt stops a running stream; a second one kills the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	application := app.NewApp()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Failed to run: %v", err)
	}
}
