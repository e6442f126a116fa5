package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var replayAll bool

var replayCmd = &cobra.Command{
	Use:   "replay [composition] [gesture]",
	Short: "Replay a recorded gesture and print the changed elements",
	Long: `Replay runs a recorded pointer-event script through the editing state
machine and prints the state of every element the gesture changed. With
--all the whole resulting composition is printed instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayAll, "all", false, "print the whole composition")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ed, err := loadEditor(args[0])
	if err != nil {
		return err
	}
	script, err := loadScript(args[1])
	if err != nil {
		return err
	}
	if err := script.Replay(ed); err != nil {
		return err
	}

	var out any = ed.TakeChanged()
	if replayAll {
		out = ed.Store().Document()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
