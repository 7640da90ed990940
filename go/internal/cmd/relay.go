package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/touchline/go/internal/config"
	"github.com/mcdev12/touchline/go/internal/dbconfig"
	"github.com/mcdev12/touchline/go/internal/outbox"
	"github.com/mcdev12/touchline/go/internal/store"
)

func newRelayCmd(cfg *config.Config) *cobra.Command {
	var (
		healthPort string
		fallback   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish saved notifications from the Postgres outbox to JetStream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(cmd.Context(), *cfg, healthPort, fallback)
		},
	}
	cmd.Flags().StringVar(&healthPort, "health-port", "8081", "port for the /health endpoint")
	cmd.Flags().DurationVar(&fallback, "fallback", outbox.DefaultListenerConfig().FallbackInterval, "poll interval for missed notifications")
	return cmd
}

func runRelay(ctx context.Context, cfg config.Config, healthPort string, fallback time.Duration) error {
	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := setupDatabase(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	pg := store.NewPgStore(pool, outbox.DefaultChannel)
	if err := pg.Migrate(ctx); err != nil {
		return err
	}

	// JetStream publisher
	jsCfg := outbox.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	jsCfg.ReconnectWait = cfg.NATS.ReconnectWait
	publisher, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		return fmt.Errorf("failed to create jetstream publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close publisher")
		}
	}()

	// Listener config
	ltCfg := outbox.DefaultListenerConfig()
	ltCfg.DatabaseURL = dbCfg.DSN()
	ltCfg.FallbackInterval = fallback

	relay := outbox.NewRelay(pg.Outbox(), publisher, ltCfg)
	listener, err := outbox.NewListener(relay, ltCfg)
	if err != nil {
		return fmt.Errorf("failed to create outbox listener: %w", err)
	}

	health := outbox.NewHealthChecker(relay, pool, pg.Outbox(), publisher.Conn().IsConnected, listener.Active, 10*time.Minute)
	mux := http.NewServeMux()
	mux.Handle("GET /health", health)
	server := &http.Server{Addr: fmt.Sprintf(":%s", healthPort), Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("starting realtime listener")
		return listener.Start(ctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info().Msg("relay stopped")
	return err
}
