package commands

import (
	"github.com/spf13/cobra"
	"github.com/taskhive/taskhive/cmd/taskhive/commands/migrate"
)

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "taskhive",
		Short:         "TaskHive collaborative task board API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")

	rootCmd.AddCommand(
		NewServeCommand(&configPath),
		NewRemindCommand(&configPath),
		NewVersionCommand(),
		migrate.NewCommand(&configPath),
	)
	return rootCmd
}
