package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	pointsCmd.Flags().IntVar(&ledgerLimit, "ledger", 0, "Also show the last N ledger entries")
	pointsCmd.Flags().BoolVar(&pointsRebuild, "rebuild", false, "Rebuild cached totals from the ledger first")
	rootCmd.AddCommand(pointsCmd)
}

var (
	ledgerLimit   int
	pointsRebuild bool
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show weekly and lifetime points",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		user := actingUser(d)
		if pointsRebuild {
			if _, err := d.Tracker.RebuildAggregates(user, timezone(d)); err != nil {
				return err
			}
		}

		agg, err := d.Tracker.Aggregates(user)
		if err != nil {
			return err
		}
		fmt.Printf("This week (%s): %.3f / 1000 points\n",
			agg.PointsWeekKey, float64(agg.PointsWeekMilli)/1000)
		fmt.Printf("Lifetime:        %.3f points\n", float64(agg.PointsLifetimeMilli)/1000)

		if ledgerLimit > 0 {
			entries, err := d.Tracker.Ledger(user, ledgerLimit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\nWHEN\tWEEK\tREASON\tPOINTS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\n",
					e.CreatedAt.Format("2006-01-02 15:04"),
					e.WeekKey, e.Reason, float64(e.PointsMilli)/1000)
			}
			return w.Flush()
		}
		return nil
	},
}
