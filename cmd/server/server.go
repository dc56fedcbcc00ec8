package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/costott/mandlebrot-sub000/config"
)

// main is the entry point for the Mandelbrot display server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML render description; built in defaults when empty")
	addr := flag.String("addr", ":8080", "http listen address")
	static := flag.String("static", "./static", "directory served at /")
	tileSize := flag.Int("tile", 64, "tile edge in pixels")
	flag.Parse()

	f := config.Default()
	if *configPath != "" {
		var err error
		if f, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	v, cfg, layers, err := f.Build()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *tileSize < 1 {
		return fmt.Errorf("tile size %d must be positive", *tileSize)
	}

	// imgWorkScheduler renders the current view on cfg.Workers goroutines and
	// hands finished frames to every connected display
	iws := newImgWorkScheduler(cfg.Workers, *tileSize, layers)
	iws.setView(v)

	srv := webServer(*addr, *static, iws)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("httpServer.Shutdown: %v", err)
		}
	}()

	log.Printf("listening on http://localhost%s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer: %w", err)
	}
	return nil
}
