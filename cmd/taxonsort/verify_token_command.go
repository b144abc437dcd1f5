package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyTokenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-token",
		Short: "Check that the configured iNaturalist access token works",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if err := client.VerifyToken(cmd.Context()); err != nil {
				return fmt.Errorf("token verification failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Access token is valid")
			return nil
		},
	}
}
