package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rosterwire/leaguerank/internal/backtest"
	"github.com/rosterwire/leaguerank/internal/domain"
)

func backtestCmd(ctx context.Context, configPath *string) *cobra.Command {
	var (
		league string
		season int
		week   int
		target string
		cutoff int
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Grade a persisted snapshot against observed outcomes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			st, err := buildStores(ctx, cfg)
			if err != nil {
				return err
			}
			bundle, err := buildProviders(cfg)
			if err != nil {
				return err
			}

			meta, err := bundle.League.League(ctx, league)
			if err != nil {
				return fmt.Errorf("fetch league %s: %w", league, err)
			}
			format := domain.FormatRedraft
			if meta.Dynasty {
				format = domain.FormatDynasty
			}
			class := domain.LeagueClass{
				Format:    format,
				Superflex: meta.Superflex,
				Phase:     domain.ResolvePhase(meta.Status, meta.CurrentWeek),
			}

			ev := backtest.NewEvaluator(st.snapshots, bundle.League, log.Logger)
			result, err := ev.Evaluate(ctx, backtest.Request{
				LeagueID:      league,
				Season:        season,
				Week:          week,
				Target:        domain.TargetType(target),
				SegmentKey:    class.Key(),
				PlayoffCutoff: cutoff,
			})
			switch {
			case errors.Is(err, backtest.ErrInsufficientSample):
				fmt.Println("not enough snapshotted teams to evaluate")
				return nil
			case errors.Is(err, backtest.ErrMissingOutcome):
				fmt.Println("outcome not observable yet for this target")
				return nil
			case err != nil:
				return err
			}

			if err := st.backtests.Record(ctx, result); err != nil {
				return fmt.Errorf("record backtest result: %w", err)
			}

			fmt.Printf("%s season %d week %d target=%s segment=%s teams=%d\n",
				result.LeagueID, result.Season, result.WeekEvaluated,
				result.Target, result.SegmentKey, result.TeamCount)
			fmt.Printf("brier=%.4f ece=%.4f ndcg=%.4f spearman=%.4f\n",
				result.Brier, result.ECE, result.NDCG, result.Spearman)
			return nil
		},
	}

	cmd.Flags().StringVar(&league, "league", "", "league id")
	cmd.Flags().IntVar(&season, "season", 0, "season year")
	cmd.Flags().IntVar(&week, "week", 0, "snapshot week to evaluate")
	cmd.Flags().StringVar(&target, "target", string(domain.TargetWinPct3W),
		"evaluation target: win_pct_3w, playoff_qual, or championship_finish")
	cmd.Flags().IntVar(&cutoff, "playoff-cutoff", 0, "playoff qualification line (0 uses the default)")
	_ = cmd.MarkFlagRequired("league")
	_ = cmd.MarkFlagRequired("season")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}
