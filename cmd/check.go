package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/healthwatch/internal/watcher"
)

func newCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check <health-url>",
		Short: "Fetch one health endpoint and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := watcher.NewHTTPFetcher(timeout).Fetch(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("could not retrieve health information for [%s]: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(health)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Give up on the request after this long")

	return cmd
}
