package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/pipeline"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show your streak and reward tier",
	Args:  cobra.NoArgs,
	RunE:  runStreakShow,
}

var streakCheckinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Check in for today",
	Args:  cobra.NoArgs,
	RunE:  runStreakCheckin,
}

func init() {
	streakCmd.AddCommand(streakCheckinCmd)
	rootCmd.AddCommand(streakCmd)
}

func runStreakShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	s, err := client.Streak(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Println("\n  No streak yet. Start one with `famfin streak checkin`.")
		return nil
	}

	tier := pipeline.TierFor(s.Count)
	rows := [][]string{
		{"Streak", cli.FormatDays(s.Count)},
		{"Started", cli.FormatDate(pipeline.StreakStartDate(s.Count, s.LastUpdated.Time))},
		{"Last Check-in", cli.FormatDate(s.LastUpdated.Time)},
		{"---"},
		{"Tier", tier.Name},
		{"Reward", cli.FormatDiscount(tier.Discount)},
	}
	if next, ok := pipeline.NextTier(s.Count); ok {
		rows = append(rows, []string{"Next Tier", fmt.Sprintf("%s in %s", next.Name, cli.FormatDays(pipeline.DaysToNextTier(s.Count)))})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("STREAK"))
	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{Rows: rows}))
	if !pipeline.UpdatedToday(*s, time.Now()) {
		fmt.Println("  " + cli.Warn("Not checked in today. Run `famfin streak checkin` to keep it going."))
	}
	return nil
}

func runStreakCheckin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	s, err := client.EnsureStreak(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("  Streak: %s (%s)\n", cli.FormatDays(s.Count), pipeline.TierFor(s.Count).Name)
	if pipeline.IsMilestone(s.Count) {
		fmt.Printf("  Milestone reached: %s!\n", cli.FormatDays(s.Count))
	}
	return nil
}
