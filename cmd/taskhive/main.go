// Command taskhive runs the TaskHive API server and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/taskhive/taskhive/cmd/taskhive/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
