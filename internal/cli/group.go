package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	groupCmd.AddCommand(groupCreateCmd, groupJoinCmd, groupShowCmd, groupTierCmd)
	rootCmd.AddCommand(groupCmd)
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage accountability groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group with you as admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		g, err := d.Groups.Create(args[0], actingUser(d), timezone(d))
		if err != nil {
			return err
		}
		fmt.Printf("Created group %q (%s)\n", g.Name, g.ID)
		return nil
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Groups.Join(args[0], actingUser(d), timezone(d)); err != nil {
			return err
		}
		fmt.Println("Joined.")
		return nil
	},
}

var groupShowCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "Show a group and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		g, err := d.Groups.Get(args[0])
		if err != nil {
			return err
		}
		members, err := d.Groups.Roster(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  [%s]  rank %d  %.1f%% weekly completion\n",
			g.Name, g.CurrentTier, g.Rank, g.WeeklyCompletionRate)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MEMBER\tTIMEZONE\tADMIN\tJOINED")
		for _, m := range members {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n",
				m.UserID, m.Timezone, m.IsAdmin, m.JoinedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var groupTierCmd = &cobra.Command{
	Use:   "tier <group-id>",
	Short: "Recompute the group's tier from this week's completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		status, err := d.Groups.RefreshTier(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Tier: %s (%.1f%% completion)\n", status.Tier.Name, status.CompletionRate)
		if status.Upgraded {
			fmt.Println("Tier up!")
		}
		return nil
	},
}
