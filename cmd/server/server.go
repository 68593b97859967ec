package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grimforge/initiative-api/internal/config"
	"github.com/grimforge/initiative-api/internal/dice"
	"github.com/grimforge/initiative-api/internal/handlers/ws"
	campaignsvc "github.com/grimforge/initiative-api/internal/orchestrators/campaign"
	"github.com/grimforge/initiative-api/internal/orchestrators/session"
	"github.com/grimforge/initiative-api/internal/pkg/clock"
	"github.com/grimforge/initiative-api/internal/pkg/idgen"
	"github.com/grimforge/initiative-api/internal/redis"
	campaignrepo "github.com/grimforge/initiative-api/internal/repositories/campaign"
)

var (
	serverPort int
	redisAddr  string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the tracker server",
	Long:  `Start the HTTP/websocket server with all configured services.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "HTTP server port (overrides PORT)")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address (overrides REDIS_ADDR)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = serverPort
	}
	if cmd.Flags().Changed("redis-addr") {
		cfg.RedisAddr = redisAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	redisClient, err := redis.NewClient(cfg.RedisAddr, &redis.Options{
		PoolSize:        cfg.RedisPoolSize,
		MinIdleConns:    cfg.RedisMinIdleConns,
		MaxRetries:      cfg.RedisMaxRetries,
		ConnMaxIdleTime: cfg.RedisIdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}()

	repo, err := campaignrepo.NewRedisRepository(&campaignrepo.Config{Client: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create campaign repository: %w", err)
	}

	sessions, err := session.New(&session.Config{
		CampaignRepo: repo,
		Roller:       dice.NewRoller(),
		IDGenerator:  idgen.NewPrefixed("combatant"),
		Clock:        clock.New(),
	})
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}

	campaigns, err := campaignsvc.New(&campaignsvc.Config{
		Repo:  repo,
		Clock: clock.New(),
	})
	if err != nil {
		return fmt.Errorf("failed to create campaign service: %w", err)
	}

	// Every install starts with a campaign to attach to
	ensured, err := campaigns.EnsureDefault(ctx, &campaignsvc.EnsureDefaultInput{})
	if err != nil {
		return fmt.Errorf("failed to ensure default campaign: %w", err)
	}
	if _, err := sessions.SwitchCampaign(ctx, &session.SwitchCampaignInput{
		CampaignID: ensured.CampaignID,
	}); err != nil {
		return fmt.Errorf("failed to attach session: %w", err)
	}

	handler, err := ws.NewHandler(&ws.HandlerConfig{
		SessionService:  sessions,
		CampaignService: campaigns,
	})
	if err != nil {
		return fmt.Errorf("failed to create websocket handler: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.Routes(),
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Server starting",
			"port", cfg.Port,
			"campaign_id", ensured.CampaignID,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Graceful shutdown failed, forcing close", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}
		slog.Info("Server stopped")
		return nil
	case err := <-errChan:
		return err
	}
}
