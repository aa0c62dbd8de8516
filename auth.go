package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/connections-bot/internal/httpserver"
)

var tokenTTL time.Duration

// tokenCmd prints an admin bearer token for the results API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an admin token for DELETE /results/{id}",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.TokenTTL()
		}
		tok, exp, err := httpserver.SignAdminToken(cfg.Server.JWTSecret, ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default server.token_ttl)")
}
