package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "produflow",
	Short: "ProduFlow production management CLI",
	Long:  "Command line tools for the ProduFlow production order and stock system.",
}

// Execute applies all registered commands and runs the root command.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
