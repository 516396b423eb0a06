package cli

import (
	"fmt"

	"github.com/hilthontt/encore/internal/infrastructure/configs"
	"github.com/hilthontt/encore/internal/infrastructure/env"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "encore",
		Short:         "Encore - karaoke song request queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config.yaml (default: ENCORE_CONFIG or well-known locations)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewAccountCommand(opts))

	return cmd
}

// load reads the environment and config and builds the logger.
func load(opts *RootOptions) (*configs.Config, *logger.Logger, error) {
	env.Load(opts.EnvFile)

	path, err := configs.DetermineConfigPath(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := configs.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	log, err := logger.New(cfg.App, cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing logger: %w", err)
	}

	return cfg, log, nil
}
