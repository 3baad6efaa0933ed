package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	pkgconfig "github.com/Skotchmaster/beauty_shop/pkg/config"
	"github.com/Skotchmaster/beauty_shop/pkg/tokens"
)

// tokenCmd mints an access token for operators and local testing.
func tokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Print a signed access token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := pkgconfig.MustEnvBytes("JWT_SECRET")

			userID := uuid.NewString()
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("user id must be a uuid: %w", err)
				}
				userID = id.String()
			}

			tok, err := tokens.NewAccessToken(userID, role, time.Now().Add(ttl), secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "user", "role claim (user or admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
