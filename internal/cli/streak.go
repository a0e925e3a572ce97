package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(streakCmd)
}

var streakCmd = &cobra.Command{
	Use:   "streak <goal-id>",
	Short: "Show streaks and consistency for a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		sum, err := d.Tracker.Streaks(actingUser(d), args[0], timezone(d))
		if err != nil {
			return err
		}

		fmt.Printf("Current streak:  %d days (strict)\n", sum.Current)
		fmt.Printf("With freezes:    %d days (%d freezes used)\n",
			sum.Graceful.CurrentStreak, sum.Graceful.FreezesUsed)
		fmt.Printf("Best streak:     %d days\n", sum.Best)
		fmt.Printf("Consistency:     %d%% over the last %d days (%d completed)\n",
			sum.ConsistencyPct, sum.WindowDays, sum.RecentCompletions)
		if sum.Graceful.AtRisk {
			fmt.Println("At risk: check in today to keep the streak alive!")
		}
		fmt.Println()
		fmt.Println(sum.Message)
		return nil
	},
}
