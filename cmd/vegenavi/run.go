package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var runEvent string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the handler once and print the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cleanup := buildHandler(cfg, logger)
		defer cleanup()

		if !json.Valid([]byte(runEvent)) {
			return fmt.Errorf("--event must be valid JSON")
		}
		resp, _ := h.Handle(cmd.Context(), json.RawMessage(runEvent))
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		if !resp.OK() {
			return fmt.Errorf("run failed with status %d", resp.StatusCode)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runEvent, "event", "{}", "invocation event passed to the handler")
}
