package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagExpenseBudget string
	flagExpenseGoal   string
	flagExpenseDesc   string
	flagExpenseAmount string
	flagExpenseDays   int
	flagExpenseAll    bool
)

var expensesCmd = &cobra.Command{
	Use:     "expenses",
	Aliases: []string{"expense", "ex"},
	Short:   "List and record expenses",
	Args:    cobra.NoArgs,
	RunE:    runExpensesList,
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses",
	Args:  cobra.NoArgs,
	RunE:  runExpensesList,
}

var expensesRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent expenses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagExpenseAll = false
		return runExpensesList(cmd, args)
	},
}

var expensesDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Spending per day for recent expenses",
	Args:  cobra.NoArgs,
	RunE:  runExpensesDaily,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add <description> <amount>",
	Short: "Record an expense",
	Args:  cobra.ExactArgs(2),
	RunE:  runExpensesAdd,
}

var expensesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an expense's description or amount",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesEdit,
}

var expensesRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpensesRm,
}

func init() {
	expensesListCmd.Flags().BoolVarP(&flagExpenseAll, "all", "a", false, "List every expense instead of the recent ones")
	expensesDailyCmd.Flags().IntVarP(&flagExpenseDays, "days", "n", 14, "Number of days to show")
	expensesAddCmd.Flags().StringVar(&flagExpenseBudget, "budget", "", "Budget id to charge")
	expensesAddCmd.Flags().StringVar(&flagExpenseGoal, "goal", "", "Spending goal id to charge")
	expensesEditCmd.Flags().StringVar(&flagExpenseDesc, "description", "", "New description")
	expensesEditCmd.Flags().StringVar(&flagExpenseAmount, "amount", "", "New amount")

	expensesCmd.AddCommand(expensesListCmd, expensesRecentCmd, expensesDailyCmd, expensesAddCmd, expensesEditCmd, expensesRmCmd)
	rootCmd.AddCommand(expensesCmd)
}

func runExpensesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}

	var expenses []model.Expense
	title := "Recent Expenses"
	if flagExpenseAll {
		expenses, err = client.Expenses(ctx)
		title = "Expenses"
	} else {
		expenses, err = client.RecentExpenses(ctx)
	}
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses recorded yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(renderExpenseTable(title, expenses, 0))
	fmt.Printf("  Total: %s across %d expenses\n", cli.FormatCurrency(pipeline.SpendingTotal(expenses)), len(expenses))
	return nil
}

func runExpensesDaily(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if flagExpenseDays < 1 {
		return errors.New("--days must be at least 1")
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	expenses, err := client.Expenses(ctx)
	if err != nil {
		return err
	}

	until := today().AddDate(0, 0, 1)
	since := until.AddDate(0, 0, -flagExpenseDays)
	days := pipeline.AggregateDays(expenses, since, until)

	var peak float64
	for _, d := range days {
		peak = max(peak, d.Total)
	}
	values := make([]float64, len(days))
	rows := make([][]string, 0, len(days))
	for i, d := range days {
		values[len(days)-1-i] = d.Total
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Count)),
			cli.FormatCurrency(d.Total),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPENDING  Last %dd", flagExpenseDays)))
	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Day", "Count", "Spent"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Printf("  %s  peak %s\n", cli.RenderSparkline(values), cli.FormatCurrency(peak))
	return nil
}

func runExpensesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, err := parseAmountArg(args[1])
	if err != nil {
		return err
	}
	in := model.ExpenseInput{Description: args[0], Amount: amount}
	if in.Budget, err = optionalID(flagExpenseBudget); err != nil {
		return err
	}
	if in.Goal, err = optionalID(flagExpenseGoal); err != nil {
		return err
	}

	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	e, err := client.AddExpense(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("  Recorded #%d %s  %s\n", e.ID, e.Description, cli.FormatCurrency(e.Amount.Float64()))
	return nil
}

func runExpensesEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var upd model.ExpenseUpdate
	if cmd.Flags().Changed("description") {
		upd.Description = &flagExpenseDesc
	}
	if cmd.Flags().Changed("amount") {
		amount, err := parseAmountArg(flagExpenseAmount)
		if err != nil {
			return err
		}
		upd.Amount = &amount
	}
	if upd.Description == nil && upd.Amount == nil {
		return errors.New("nothing to change; pass --description or --amount")
	}

	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	e, err := client.UpdateExpense(ctx, id, upd)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated #%d %s  %s\n", e.ID, e.Description, cli.FormatCurrency(e.Amount.Float64()))
	return nil
}

func runExpensesRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	msg, err := client.DeleteExpense(ctx, id)
	if err != nil {
		return err
	}
	printMessage(msg, fmt.Sprintf("Deleted expense #%d", id))
	return nil
}
