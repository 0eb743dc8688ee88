package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-loader/internal/app"
)

// shutdownTimeout bounds draining the publisher and flushing the event sink.
const shutdownTimeout = 30 * time.Second

func main() {
	loaderApp := app.InitApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loaderApp.StartApp(ctx); err != nil {
		log.Fatalf("photo-loader: could not start serving photos: %v", err)
	}

	<-ctx.Done()
	stop()

	log.Printf("photo-loader: signal received, offloading resources (timeout %s)", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := loaderApp.StopApp(shutdownCtx); err != nil {
		log.Fatalf("photo-loader: resources not released cleanly: %v", err)
	}

	log.Println("photo-loader: all resources offloaded, bye")
}
