package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rosterwire/leaguerank/internal/backtest"
	"github.com/rosterwire/leaguerank/internal/domain"
	"github.com/rosterwire/leaguerank/internal/learner"
	"github.com/rosterwire/leaguerank/internal/providers"
)

func learnCmd(ctx context.Context, configPath *string) *cobra.Command {
	var (
		format     string
		phase      string
		superflex  bool
		projection bool
	)

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Run one parameter learning cycle for a league class",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			st, err := buildStores(ctx, cfg)
			if err != nil {
				return err
			}

			class := domain.LeagueClass{
				Format:    domain.Format(format),
				Superflex: superflex,
				Phase:     domain.Phase(phase),
			}

			var opts []learner.Option
			if !projection {
				// Replay re-grades stored snapshots under each candidate,
				// the preferred path whenever history exists. The league
				// provider is optional; without it only the forward
				// win-rate target is skipped.
				var league providers.LeagueProvider
				if cfg.FixturePath != "" {
					if bundle, err := buildProviders(cfg); err == nil {
						league = bundle.League
					}
				}
				ev := backtest.NewEvaluator(st.snapshots, league, log.Logger)
				opts = append(opts, learner.WithEvaluator(
					learner.ReplayEvaluator(ev, buildResolver(cfg), class)))
			}

			l := learner.New(st.backtests, st.params, log.Logger, opts...)
			report, err := l.Run(ctx, class)
			if errors.Is(err, learner.ErrInsufficientEvidence) {
				fmt.Printf("%s: not enough backtest evidence yet, nothing changed\n", class.Key())
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s  evidence=%d baseline=%.4f candidate=%.4f applied=%v\n",
				report.Class, report.Evidence, report.Baseline, report.Candidate, report.Applied)
			for _, move := range report.Moves {
				fmt.Printf("  %-24s %.3f -> %.3f (proposed %.3f)\n",
					move.Name, move.Previous, move.Applied, move.Proposed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(domain.FormatDynasty), "league format: dynasty or redraft")
	cmd.Flags().StringVar(&phase, "phase", string(domain.PhaseInSeason), "season phase: inseason, offseason, postDraft, or postSeason")
	cmd.Flags().BoolVar(&superflex, "superflex", false, "superflex league class")
	cmd.Flags().BoolVar(&projection, "projection", false, "use the projection heuristic instead of snapshot replay")
	return cmd
}
