package cli

import (
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(root)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Open(cmd.Context(), cfg.Postgres, log)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := database.Migrate(db); err != nil {
				return err
			}

			log.Info("Database schema is up to date", zap.Int("models", len(database.Models())))
			return nil
		},
	}
}
