package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/mealplanner/internal/auth"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 access token for AUTH_MODE=jwt deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.v.GetString("auth.jwt_secret")
			if secret == "" {
				return fmt.Errorf("MEALPLANNER_AUTH_JWT_SECRET is not set")
			}
			token, err := auth.MintToken(userID, email, secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "subject (user id)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
