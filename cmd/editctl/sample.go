package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inamate/canvasedit/internal/scene"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the built-in sample composition as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(scene.NewSampleStore().Document(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
