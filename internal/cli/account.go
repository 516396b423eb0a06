package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hilthontt/encore/internal/dependency"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/spf13/cobra"
)

type accountOptions struct {
	First string
	Last  string
	Pin   string
	Role  string
}

func NewAccountCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage staff accounts",
	}

	cmd.AddCommand(newAccountCreateCommand(root))

	return cmd
}

func newAccountCreateCommand(root *RootOptions) *cobra.Command {
	opts := &accountOptions{}

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an owner, admin or participant account",
		Example: "  encore account create --first Olive --last Stone --pin 4821 --role owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := domain.ParseRole(opts.Role)
			if !ok {
				return fmt.Errorf("unknown role %q: must be owner, admin or participant", opts.Role)
			}

			cfg, log, err := load(root)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			c, err := dependency.NewContainer(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = c.Close(ctx)
			}()

			account, err := c.AuthUC.CreateAccount(cmd.Context(), domain.SystemActor, opts.First, opts.Last, opts.Pin, role)
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(account)
		},
	}

	cmd.Flags().StringVar(&opts.First, "first", "", "first name")
	cmd.Flags().StringVar(&opts.Last, "last", "", "last name")
	cmd.Flags().StringVar(&opts.Pin, "pin", "", "4 to 8 digit pin")
	cmd.Flags().StringVar(&opts.Role, "role", string(domain.RoleAdmin), "owner, admin or participant")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")
	_ = cmd.MarkFlagRequired("pin")

	return cmd
}
