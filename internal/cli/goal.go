package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steady-app/steady/internal/domain"
)

func init() {
	goalAddCmd.Flags().StringVar(&goalCadence, "cadence", "DAILY", "DAILY or WEEKLY")
	goalAddCmd.Flags().IntVar(&goalDaily, "daily-target", 1, "Completions per day (DAILY)")
	goalAddCmd.Flags().IntVar(&goalWeekly, "weekly-target", 0, "Completions per week (WEEKLY)")
	goalAddCmd.Flags().IntVar(&goalFreezes, "freezes", 1, "Streak freezes per gap run")

	goalListCmd.Flags().BoolVar(&goalAll, "all", false, "Include archived goals")

	goalCmd.AddCommand(goalAddCmd, goalListCmd, goalArchiveCmd, goalDeleteCmd)
	rootCmd.AddCommand(goalCmd)
}

var (
	goalCadence string
	goalDaily   int
	goalWeekly  int
	goalFreezes int
	goalAll     bool
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		goal, err := d.Tracker.CreateGoal(actingUser(d), domain.Goal{
			Name:          args[0],
			Cadence:       domain.Cadence(goalCadence),
			DailyTarget:   goalDaily,
			WeeklyTarget:  goalWeekly,
			StreakFreezes: goalFreezes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created goal %q (%s)\n", goal.Name, goal.ID)
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		goals, err := d.Tracker.Goals(actingUser(d), !goalAll)
		if err != nil {
			return err
		}
		if len(goals) == 0 {
			fmt.Println("No goals yet. Run 'steady goal add <name>' to get started.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCADENCE\tTARGET\tACTIVE")
		for _, g := range goals {
			target := fmt.Sprintf("%d/day", g.DailyTarget)
			if g.Cadence == domain.CadenceWeekly {
				target = fmt.Sprintf("%d/week", g.WeeklyTarget)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", g.ID, g.Name, g.Cadence, target, g.Active)
		}
		return w.Flush()
	},
}

var goalArchiveCmd = &cobra.Command{
	Use:   "archive <goal-id>",
	Short: "Archive a goal, keeping its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Tracker.ArchiveGoal(actingUser(d), args[0]); err != nil {
			return err
		}
		fmt.Println("Goal archived.")
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <goal-id>",
	Short: "Delete a goal and all its check-ins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Tracker.DeleteGoal(actingUser(d), args[0]); err != nil {
			return err
		}
		fmt.Println("Goal deleted.")
		return nil
	},
}
