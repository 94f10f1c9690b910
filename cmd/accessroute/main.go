// Command accessroute plans and exports accessible routes from the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "accessroute",
	Short: "Plan accessibility-scored walking routes",
	Long: `accessroute plans a walking route between two points, splits it into segments,
tags each segment safe, caution or hazard against the hazard catalog and estimates travel time.
Configuration is read the same way as the API server (configs/config.yaml, .env, environment).`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newPlanCmd(), newHazardsCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
