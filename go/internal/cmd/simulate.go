package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/touchline/go/internal/config"
	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/season"
)

func newSimulateCmd(cfg *config.Config) *cobra.Command {
	var (
		seasons  int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play seasons headless, leaving every decision to the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seasons < 1 {
				return fmt.Errorf("--seasons must be at least 1")
			}
			ctx := cmd.Context()
			repo, release, err := openStore(ctx, *cfg)
			if err != nil {
				return err
			}
			defer release()

			s := setupServices(ctx, *cfg, repo, logNotifier{})
			defer s.Close()
			if err := loadOrStart(ctx, s, *cfg); err != nil {
				return err
			}
			return simulate(ctx, s, seasons, interval)
		},
	}
	cmd.Flags().IntVar(&seasons, "seasons", 1, "number of seasons to play")
	cmd.Flags().DurationVar(&interval, "interval", time.Millisecond, "delay between ticks")
	return cmd
}

func simulate(ctx context.Context, s *Services, seasons int, interval time.Duration) error {
	runner := season.NewRunner(s.App, s.Clock, interval)
	for played := 0; played < seasons; {
		if _, err := runner.Run(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		state, err := s.App.State()
		if err != nil {
			return err
		}
		if human := state.HumanClub(); human != nil && season.AwaitingRetirementDecision(human) {
			// headless play lets announced retirements go ahead
			for _, p := range human.Players {
				if r := p.Retirement; r.Announced && !r.Persuaded && !r.PersuadeTried {
					if err := s.App.LetRetire(ctx, p.ID); err != nil {
						return err
					}
				}
			}
			continue
		}
		if !state.SeasonOver {
			continue
		}

		logTable(state)
		played++
		if state.Manager.GameOver {
			log.Warn().Msg("the board has dismissed the manager")
			return nil
		}
		if played < seasons {
			if err := s.App.StartNextSeason(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func logTable(state *models.SeasonState) {
	for i, c := range state.Table() {
		log.Info().
			Str("season", state.Label).
			Int("rank", i+1).
			Str("club", c.Name).
			Int("points", c.Standing.Points).
			Int("goal_difference", c.Standing.GoalDifference()).
			Bool("human", c.Human).
			Msg("final table")
	}
}

// logNotifier writes notifications to the log
type logNotifier struct{}

func (logNotifier) Notify(_ context.Context, notes []models.Notification) {
	for _, n := range notes {
		ev := log.Info()
		switch n.Severity {
		case models.SeverityWarning:
			ev = log.Warn()
		case models.SeverityError:
			ev = log.Error()
		}
		ev.Int("week", n.Week).Str("severity", string(n.Severity)).Msg(n.Message)
	}
}
