package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskhive/taskhive/internal/server"
)

// NewRemindCommand runs a single reminder scan and prints its result.
func NewRemindCommand(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send due-date reminders once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, cleanup, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			srv, err := server.New(ctx, cfg, l)
			if err != nil {
				return err
			}
			defer srv.Cleanup(context.Background())

			res, err := srv.Reminders().Runner().RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("reminder scan failed: %w", err)
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "maximum duration of the scan")
	return cmd
}
