package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rosterwire/leaguerank/internal/config"
)

// Execute wires the root command and runs the CLI.
func Execute(ctx context.Context) error {
	var configPath string

	root := &cobra.Command{
		Use:   "leaguerank",
		Short: "Composite league ranking engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to engine config YAML")

	root.AddCommand(rankCmd(ctx, &configPath))
	root.AddCommand(backtestCmd(ctx, &configPath))
	root.AddCommand(learnCmd(ctx, &configPath))

	return root.ExecuteContext(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}
	return cfg, nil
}
