package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miradorstack/status-monitor/internal/models"
)

var checkOverride string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one probe and propagate the classified state",
	Long: `check runs the pipeline once. It is what an external scheduler should call.
An optional --override JSON object replaces probe fields (url, method, headers,
params, data) for this run only; an explicit null clears a default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var override models.ProbeOverride
		if checkOverride != "" {
			if err := json.Unmarshal([]byte(checkOverride), &override); err != nil {
				return fmt.Errorf("parse --override: %w", err)
			}
		}

		env, err := loadRuntime()
		if err != nil {
			return err
		}
		defer env.Close()

		service, err := newStatusService(cmd.Context(), env)
		if err != nil {
			return err
		}

		result, err := service.Check(cmd.Context(), override)
		if err != nil {
			return err
		}
		if result.State == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "no state: probe produced no response")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d) from HTTP %d\n", result.State, result.State.Code(), result.StatusCode)
		if result.PropagationError != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "status page update failed: %s\n", result.PropagationError)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkOverride, "override", "", "JSON object overriding probe fields for this run")
}
