package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/api"
	"github.com/janekbaraniewski/calplot/internal/config"
)

func newTokenCommand(cfg config.Config) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Sign a bearer token for the API write endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := api.IssueToken(cfg.APISecret, args[0], ttl, time.Now())
			if err != nil {
				return fmt.Errorf("%w (set api_secret in %s)", err, config.ConfigPath())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
