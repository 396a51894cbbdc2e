package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
)

// NewCommand creates the migrate command. Without a subcommand it applies
// pending migrations.
func NewCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrate",
		Args:    cobra.NoArgs,
		Aliases: []string{"m"},
		Short:   "Database migration commands",
		Long:    `Create or upgrade the TaskHive schema in the configured database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return up(cmd, *configPath)
		},
	}

	cmd.AddCommand(
		newUpCommand(configPath),
		newTablesCommand(),
	)
	return cmd
}

func newUpCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return up(cmd, *configPath)
		},
	}
}

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the application tables",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range data.Tables() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	}
}

func up(cmd *cobra.Command, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, cleanupLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer cleanupLogger()

	d, cleanup, err := data.New(cfg.Data, l)
	if err != nil {
		return err
	}
	defer cleanup()

	applied, err := d.Migrate(context.Background())
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied migrations: %v\n", applied)
	return nil
}
