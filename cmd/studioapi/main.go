package main

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"studioapi/internal/config"
	"studioapi/internal/http/handlers"
	applog "studioapi/internal/log"
	"studioapi/internal/repos"
	"studioapi/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	app := server.New(handlers.NewDeps(db, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Fatal(err)
	}
	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
	if err := serve(ctx, app, ln, 10*time.Second); err != nil {
		log.Fatal(err)
	}
	applog.Info(nil, "server.stop", nil)
}

// serve runs app on ln until ctx is cancelled, then drains in-flight requests
// for at most grace before returning.
func serve(ctx context.Context, app *fiber.App, ln net.Listener, grace time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			applog.Error(nil, "server.shutdown", err, nil)
		}
	}()

	if err := app.Listener(ln); err != nil {
		return err
	}
	// Listener returns once shutdown starts; wait for in-flight requests.
	<-done
	return nil
}
