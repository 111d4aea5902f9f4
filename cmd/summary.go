package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"overview"},
	Short:   "Income, budgets, goals and streak at a glance",
	Args:    cobra.NoArgs,
	RunE:    runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}

	progressf("  Loading overview...\n")
	ov, err := pipeline.LoadOverview(ctx, client)
	if err != nil {
		return err
	}

	title := "FAMILY FINANCE"
	if ov.Profile.Username != "" {
		title += "  " + ov.Profile.Username
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	now := time.Now()
	weekSpend := pipeline.SpendingTotal(pipeline.FilterExpensesByTime(ov.RecentExpenses, now.AddDate(0, 0, -7), now))

	rows := [][]string{
		{"Monthly Income", cli.FormatCurrency(ov.MonthlyIncome)},
		{"Spent (7d)", cli.FormatCurrency(weekSpend)},
		{"---"},
		{"Budgets", cli.FormatNumber(int64(ov.BudgetTotals.Count))},
		{"Budgeted", cli.FormatCurrency(ov.BudgetTotals.Total)},
		{"Used", fmt.Sprintf("%s  (%s)", cli.FormatCurrency(ov.BudgetTotals.Spent), levelPercent(ov.BudgetTotals.Percentage()))},
		{"Remaining", cli.FormatCurrency(ov.BudgetTotals.Remaining)},
		{"---"},
		{"Saving Goals", typeProgressCell(ov.Saving)},
		{"Spending Goals", typeProgressCell(ov.Spending)},
	}
	if ov.Family != nil {
		rows = append(rows, []string{"Family", fmt.Sprintf("%s (%d members)", ov.Family.Name, len(ov.Family.Members))})
	}
	if ov.Streak != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"Streak", cli.FormatDays(ov.Streak.Count)},
			[]string{"Tier", fmt.Sprintf("%s  (%s)", ov.Tier.Name, cli.FormatDiscount(ov.Tier.Discount))},
		)
		if next, ok := pipeline.NextTier(ov.Streak.Count); ok {
			rows = append(rows, []string{"Next Tier", fmt.Sprintf("%s in %s", next.Name, cli.FormatDays(ov.DaysToNextTier))})
		}
	}
	fmt.Println(cli.RenderTable(cli.Table{Rows: rows}))

	if len(ov.RecentExpenses) > 0 {
		fmt.Println(renderExpenseTable("Recent Expenses", ov.RecentExpenses, 5))
	}

	for _, w := range ov.Warnings {
		fmt.Println("  " + cli.Warn("partial data: "+w))
	}
	return nil
}

func typeProgressCell(tp pipeline.TypeProgress) string {
	if tp.Goals == 0 {
		return cli.Muted("none")
	}
	return fmt.Sprintf("%s / %s  (%s)",
		cli.FormatCurrency(tp.Current), cli.FormatCurrency(tp.Total), cli.FormatPercent(tp.Percentage))
}

func levelPercent(pct float64) string {
	return cli.LevelStyle(pipeline.BudgetLevel(pct)).Render(cli.FormatPercent(pct))
}

func renderExpenseTable(title string, expenses []model.Expense, limit int) string {
	rows := make([][]string, 0, len(expenses))
	for i, e := range expenses {
		if limit > 0 && i >= limit {
			break
		}
		rows = append(rows, []string{
			fmt.Sprintf("#%d", e.ID),
			cli.FormatDate(e.Date.Time),
			cli.Truncate(e.Description, 40),
			cli.FormatCurrency(e.Amount.Float64()),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:    title,
		Headers:  []string{"ID", "Date", "Description", "Amount"},
		Rows:     rows,
		LeftCols: 3,
	})
}
