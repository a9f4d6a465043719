package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/config"
	httpserver "github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/http"
	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessions := session.NewRegistry()
	defer sessions.Close()

	srv := httpserver.New(cfg, sessions)
	log.Printf("dashboard listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
