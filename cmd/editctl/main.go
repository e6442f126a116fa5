package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "editctl",
	Short: "Drive the canvas editing engine from the command line",
	Long: `editctl loads a composition, replays recorded pointer gestures through the
editing state machine, and renders the composition with its selection overlay
to PNG.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
