package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapsync/core/content"
	"mapsync/core/coordinator"
)

// planCmd diffs two description files without touching a surface.
var planCmd = &cobra.Command{
	Use:   "plan <before.json> <after.json>",
	Short: "Show the mutations needed to converge one description onto another",
	Long: `Reads two content description files and prints the surface mutations
a render pass would issue to move from the first to the second. Pass "-"
as the first argument to plan against an empty surface.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := readDescription(args[0])
		if err != nil {
			return err
		}
		after, err := readDescription(args[1])
		if err != nil {
			return err
		}

		plan := coordinator.BuildPlan(before, after)

		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}

		printPhase(cmd, "remove", plan.Removes)
		printPhase(cmd, "add", plan.Adds)
		printPhase(cmd, "update", plan.Updates)
		cmd.Printf("%d mutations (%d removes, %d adds, %d updates)\n",
			plan.Len(), len(plan.Removes), len(plan.Adds), len(plan.Updates))
		return nil
	},
}

func readDescription(path string) (*content.Description, error) {
	if path == "-" {
		return content.NewDescription(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description %s: %w", path, err)
	}
	var desc content.Description
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse description %s: %w", path, err)
	}
	return &desc, nil
}

func printPhase(cmd *cobra.Command, verb string, actions []coordinator.Action) {
	for _, a := range actions {
		cmd.Printf("%-7s %-20s %s/%s\n", verb, a.Kind, a.Group, a.Identity)
	}
}

func init() {
	planCmd.Flags().Bool("json", false, "emit the plan as JSON")
	RootCmd.AddCommand(planCmd)
}
