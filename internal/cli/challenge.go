package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steady-app/steady/internal/app/challenge"
	"github.com/steady-app/steady/internal/domain"
)

func init() {
	challengeCreateCmd.Flags().StringVar(&challengeMode, "mode", "", "STANDARD, TEAM_VS_TEAM or DUO_COMPETITION")
	challengeCreateCmd.Flags().IntVar(&challengeThreshold, "threshold", challenge.DefaultThreshold, "Completion percent every member must reach")
	challengeCreateCmd.Flags().IntVar(&challengeDays, "days", challenge.DefaultDurationDays, "Challenge length in days")

	challengeCmd.AddCommand(challengeCreateCmd, challengeApproveCmd, challengeEvalCmd)
	rootCmd.AddCommand(challengeCmd)
}

var (
	challengeMode      string
	challengeThreshold int
	challengeDays      int
)

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Propose, approve and evaluate group challenges",
}

var challengeCreateCmd = &cobra.Command{
	Use:   "create <group-id>",
	Short: "Propose a challenge for next week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		user, tz := actingUser(d), timezone(d)

		// Bare create proposes a standard challenge. Any flag switches to
		// the configured (admin-only) path.
		var c *domain.GroupChallenge
		if challengeMode == "" &&
			challengeThreshold == challenge.DefaultThreshold &&
			challengeDays == challenge.DefaultDurationDays {
			c, err = d.Challenges.CreateSimple(args[0], user, tz)
		} else {
			mode := domain.ModeStandard
			if challengeMode != "" {
				mode = domain.ChallengeMode(challengeMode)
			}
			c, err = d.Challenges.CreateConfigured(args[0], user, tz, challenge.Config{
				Mode:         mode,
				Threshold:    challengeThreshold,
				DurationDays: challengeDays,
			})
		}
		if err != nil {
			return err
		}

		fmt.Printf("Proposed %s challenge %s for week %s (threshold %d%%)\n",
			c.Mode, c.ID, c.WeekKey, c.Threshold)
		fmt.Println("Waiting for every member to approve.")
		return nil
	},
}

var challengeApproveCmd = &cobra.Command{
	Use:   "approve <challenge-id>",
	Short: "Approve a pending challenge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		c, err := d.Challenges.Approve(args[0], actingUser(d))
		if err != nil {
			return err
		}
		if c.Status == domain.ChallengeScheduled {
			fmt.Printf("Approved. Quorum reached: challenge is scheduled for %s.\n", c.WeekKey)
		} else {
			n, err := d.Challenges.Approvals(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Approved (%d so far).\n", n)
		}
		return nil
	},
}

var challengeEvalCmd = &cobra.Command{
	Use:   "eval <group-id>",
	Short: "Advance the group's challenges (activate/score)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon()
		if err != nil {
			return err
		}
		defer d.Close()

		changed, err := d.Challenges.EvaluateGroup(args[0], timezone(d))
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			fmt.Println("Nothing to advance.")
			return nil
		}
		for _, c := range changed {
			fmt.Printf("Challenge %s (%s): now %s\n", c.ID, c.WeekKey, c.Status)
		}
		return nil
	},
}
