package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miradorstack/status-monitor/internal/models"
	"github.com/miradorstack/status-monitor/internal/services"
)

var setPageID string

var setCmd = &cobra.Command{
	Use:   "set <state> [component-ids]",
	Short: "Write a state to Statuspage components directly",
	Long: `set bypasses the probe and writes state to the given comma-separated
components (or the configured ones). It is the way to announce under_maintenance.
State may be a Statuspage name (partial_outage) or a code (4).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := models.ParseHealthState(args[0])
		if err != nil {
			return err
		}

		env, err := loadRuntime()
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.cfg.Validate(false, true); err != nil {
			return err
		}

		ids := env.cfg.StatusPage.ComponentIDs
		if len(args) == 2 {
			ids = models.ParseComponentIDs(args[1])
		}
		if ids.Empty() {
			return errors.New("no component ids given or configured")
		}

		service := services.NewStatusService(env.logger, nil, newStatusPageClient(env))
		results, setErr := service.SetComponents(cmd.Context(), state, ids, setPageID)
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %v\n", r.ComponentID, r.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.ComponentID, state)
		}
		return setErr
	},
}

func init() {
	setCmd.Flags().StringVar(&setPageID, "page", "", "Statuspage page id (default: configured page)")
}
