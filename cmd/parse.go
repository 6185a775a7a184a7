package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/rxtally/dispense-cli/internal/sig"
)

var parseCmd = &cobra.Command{
	Use:   "parse <sig text>",
	Short: "Interpret a SIG instruction without selecting packages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := args[0]
		for _, a := range args[1:] {
			text += " " + a
		}

		parsed, err := sig.Interpret(text)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(parsed)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
