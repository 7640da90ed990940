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

	"github.com/mcdev12/touchline/go/internal/api"
	"github.com/mcdev12/touchline/go/internal/config"
	"github.com/mcdev12/touchline/go/internal/gateway"
	"github.com/mcdev12/touchline/go/internal/season"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	var auto bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game API and the notification gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg, auto)
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "auto-advance the season on the configured interval")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, auto bool) error {
	repo, release, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	hub := gateway.NewHub(gateway.DefaultConnectionConfig())

	// with Postgres the relay publishes saved notifications to JetStream;
	// otherwise the app hands them to the hub directly
	var notifier season.Notifier = hub
	if cfg.Store == config.StorePostgres {
		consumerCfg := gateway.DefaultJetStreamConsumerConfig()
		consumerCfg.URL = cfg.NATS.URL
		consumerCfg.MaxReconnects = cfg.NATS.MaxReconnects
		consumerCfg.ReconnectWait = cfg.NATS.ReconnectWait
		if err := hub.ConsumeFrom(ctx, consumerCfg); err != nil {
			return err
		}
		notifier = nil
	}

	s := setupServices(ctx, cfg, repo, notifier)
	defer s.Close()
	if err := loadOrStart(ctx, s, cfg); err != nil {
		return err
	}

	server := setupServer(cfg, s, hub)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Start(ctx) })
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if auto {
		g.Go(func() error {
			ticks, err := season.NewRunner(s.App, s.Clock, cfg.AutoAdvance).Run(ctx)
			log.Info().Int("ticks", ticks).Msg("auto-advance finished")
			return err
		})
	}
	return g.Wait()
}

func setupServer(cfg config.Config, s *Services, hub *gateway.Hub) *http.Server {
	return api.NewServer(fmt.Sprintf(":%s", cfg.Port), api.NewHandler(s.App, s.Scout), hub)
}
