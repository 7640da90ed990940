package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcdev12/touchline/go/internal/config"
	"github.com/mcdev12/touchline/go/internal/store"
)

func newGameCmd(cfg *config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new-game",
		Short: "Generate a new league and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, release, err := openStore(ctx, *cfg)
			if err != nil {
				return err
			}
			defer release()

			s := setupServices(ctx, *cfg, repo, nil)
			defer s.Close()

			if !force {
				err := s.App.Load(ctx)
				switch {
				case err == nil:
					return errors.New("a saved game already exists; use --force to replace it")
				case !errors.Is(err, store.ErrNotFound):
					return err
				}
			}
			return startGame(ctx, s, *cfg)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing saved game")
	return cmd
}
