package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/touchline/go/internal/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("touchline failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		path string
		cfg  config.Config
	)

	root := &cobra.Command{
		Use:          "touchline",
		Short:        "Football club management season engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&path, "config", "c", config.DefaultPath, "path to touchline.yaml")

	root.AddCommand(
		newGameCmd(&cfg),
		newServeCmd(&cfg),
		newSimulateCmd(&cfg),
		newRelayCmd(&cfg),
	)
	return root
}
