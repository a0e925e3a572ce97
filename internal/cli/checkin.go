package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	checkinCmd.Flags().BoolVar(&checkinPartial, "partial", false, "Record a partial (no points until upgraded)")
	backfillCmd.Flags().IntVar(&backfillCount, "count", 1, "Desired completion count for the day")

	rootCmd.AddCommand(checkinCmd, undoCmd, upgradeCmd, backfillCmd)
}

var (
	checkinPartial bool
	backfillCount  int
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <goal-id>",
	Short: "Record a completion for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Tracker.CheckIn(actingUser(d), args[0], timezone(d), checkinPartial)
		if err != nil {
			return err
		}

		if checkinPartial {
			fmt.Println("Partial check-in recorded. Upgrade it later to earn points.")
			return nil
		}
		fmt.Printf("Checked in! +%.3f points", float64(res.Award.PointsMilli)/1000)
		if res.Award.BonusApplied > 1 {
			fmt.Printf(" (streak bonus x%.2f)", res.Award.BonusApplied)
		}
		fmt.Println()
		if res.DayComplete {
			fmt.Println("Day complete.")
		} else {
			fmt.Printf("Progress today: %d\n", res.DayCount)
		}
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <goal-id>",
	Short: "Remove today's most recent check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if _, err := d.Tracker.Undo(actingUser(d), args[0], timezone(d)); err != nil {
			return err
		}
		fmt.Println("Check-in removed.")
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <goal-id>",
	Short: "Upgrade today's partial check-in to a full completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Tracker.UpgradePartial(actingUser(d), args[0], timezone(d))
		if err != nil {
			return err
		}
		fmt.Printf("Upgraded! +%.3f points\n", float64(res.Award.PointsMilli)/1000)
		return nil
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill <goal-id> <date>",
	Short: "Set the completion count for a past day (date: YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Tracker.SetDayCount(actingUser(d), args[0], args[1], backfillCount, timezone(d))
		if err != nil {
			return err
		}
		fmt.Printf("%s: +%d / -%d check-ins", res.DateKey, res.Inserted, res.Deleted)
		if res.Award.PointsMilli > 0 {
			fmt.Printf(", +%.3f points", float64(res.Award.PointsMilli)/1000)
		}
		fmt.Println()
		return nil
	},
}
