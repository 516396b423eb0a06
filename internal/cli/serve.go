package cli

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/encore/internal/dependency"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand(root *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, live hub and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(root)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			c, err := dependency.NewContainer(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer closeCancel()
				if err := c.Close(closeCtx); err != nil {
					log.Error("failed to release dependencies", zap.Error(err))
				}
			}()

			if migrate {
				if err := database.Migrate(c.DB); err != nil {
					return err
				}
				log.Info("Database schema is up to date")
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Start(ctx)
			}()

			err = c.App.Run(ctx, c.App.Mount())
			cancel()
			wg.Wait()

			return err
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")

	return cmd
}
