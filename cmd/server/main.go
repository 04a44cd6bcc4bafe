package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/circuit/guest-pool/internal/adapters/circuit"
	"github.com/circuit/guest-pool/internal/app/services"
	"github.com/circuit/guest-pool/internal/config"
	"github.com/circuit/guest-pool/internal/presence"
	"github.com/circuit/guest-pool/internal/server"
	"github.com/circuit/guest-pool/internal/server/routes"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return
	}

	store := presence.NewStore()
	clients := circuit.NewFactory(cfg.PlatformTimeout())
	bootstrapper := services.NewBootstrapper(clients, store, cfg.Webhook.PublicURL, log)

	srv := server.New(log)
	srv.RegisterRouter(routes.NewWebhookRoutes(store, store, log))
	srv.RegisterRouter(routes.NewTokenRoutes(services.NewDispenser(cfg, store)))
	srv.RegisterRouter(routes.NewHealthRoutes(cfg.Domains, store))

	// The listener comes up before domain initialization finishes; domains
	// answer DomainNotReady until their seed load lands.
	go func() {
		results := bootstrapper.Bootstrap(context.Background(), cfg.Domains)
		ready := 0
		for _, result := range results {
			if result.Err == nil {
				ready++
			}
		}
		slog.Info("Domain initialization finished", "ready", ready, "total", len(results))
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting server", "port", cfg.Server.Port, "domains", len(cfg.Domains))
	slog.Error("Closing server", "error", srv.Start(addr))
}
