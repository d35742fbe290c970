package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/razbensimon/hit-computer-security-project/internal/infra/app"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/config"
)

func main() {
	// Optional .env for local development; real deployments set PORTAL_* directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("portal: invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("portal: startup failed: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("portal: stopped with error: %v", err)
		os.Exit(1)
	}
}
