package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/famfin/internal/api"
	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagBudgetFamily   bool
	flagBudgetCategory string
	flagBudgetName     string
	flagBudgetAmount   string
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget"},
	Short:   "List and manage budgets",
	Args:    cobra.NoArgs,
	RunE:    runBudgetsList,
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets grouped by category",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsList,
}

var budgetsAddCmd = &cobra.Command{
	Use:   "add <name> <amount>",
	Short: "Create a budget",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetsAdd,
}

var budgetsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a budget's name, category or amount",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsEdit,
}

var budgetsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a budget",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetsRm,
}

func init() {
	for _, c := range []*cobra.Command{budgetsCmd, budgetsListCmd, budgetsAddCmd} {
		c.Flags().BoolVar(&flagBudgetFamily, "family", false, "Use the family's shared budgets")
	}
	budgetsAddCmd.Flags().StringVarP(&flagBudgetCategory, "category", "c", "", "Budget category (defaults to the name)")
	budgetsEditCmd.Flags().StringVarP(&flagBudgetCategory, "category", "c", "", "New category")
	budgetsEditCmd.Flags().StringVar(&flagBudgetName, "name", "", "New name")
	budgetsEditCmd.Flags().StringVar(&flagBudgetAmount, "amount", "", "New amount")

	budgetsCmd.AddCommand(budgetsListCmd, budgetsAddCmd, budgetsEditCmd, budgetsRmCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgetsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}

	var budgets []model.Budget
	title := "BUDGETS"
	if flagBudgetFamily {
		budgets, err = client.FamilyBudgets(ctx)
		title = "FAMILY BUDGETS"
	} else {
		budgets, err = client.Budgets(ctx)
	}
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Println("\n  No budgets yet. Create one with `famfin budgets add <name> <amount>`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	for _, group := range pipeline.GroupBudgetsByCategory(budgets) {
		rows := make([][]string, 0, len(group.Budgets))
		for _, v := range group.Budgets {
			rows = append(rows, []string{
				fmt.Sprintf("#%d", v.Budget.ID),
				v.Budget.Name,
				cli.FormatCurrency(v.Amount),
				cli.FormatCurrency(v.Used),
				cli.FormatCurrency(v.Remaining),
				levelPercent(v.Percentage),
				cli.RenderPercentBar(v.Percentage, 12, cli.LevelStyle(pipeline.BudgetLevel(v.Percentage))),
			})
		}
		fmt.Println(cli.RenderTable(cli.Table{
			Title:    group.Category,
			Headers:  []string{"ID", "Name", "Budget", "Used", "Left", "Usage", ""},
			Rows:     rows,
			LeftCols: 2,
		}))
	}

	totals := pipeline.AggregateBudgets(budgets)
	fmt.Printf("  Total: %s of %s used (%s), %s left\n",
		cli.FormatCurrency(totals.Spent), cli.FormatCurrency(totals.Total),
		levelPercent(totals.Percentage()), cli.FormatCurrency(totals.Remaining))
	return nil
}

func runBudgetsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, err := parseAmountArg(args[1])
	if err != nil {
		return err
	}
	in := model.BudgetInput{
		Name:     strings.TrimSpace(args[0]),
		Category: strings.TrimSpace(flagBudgetCategory),
		Amount:   amount,
	}
	if in.Category == "" {
		in.Category = in.Name
	}

	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	var b *model.Budget
	if flagBudgetFamily {
		b, err = client.CreateFamilyBudget(ctx, in)
	} else {
		b, err = client.CreateBudget(ctx, in)
	}
	if err != nil {
		return err
	}
	fmt.Printf("  Created budget #%d %s (%s)  %s\n", b.ID, b.Name, b.Category, cli.FormatCurrency(b.Amount.Float64()))
	return nil
}

func runBudgetsEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("category") && !flags.Changed("amount") {
		return errors.New("nothing to change; pass --name, --category or --amount")
	}

	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}

	// Budget updates replace the whole record, so start from the current one.
	current, err := findBudget(ctx, client, id)
	if err != nil {
		return err
	}
	in := model.BudgetInput{
		Name:     current.Name,
		Category: current.Category,
		Amount:   current.Amount.Float64(),
	}
	if flags.Changed("name") {
		in.Name = strings.TrimSpace(flagBudgetName)
	}
	if flags.Changed("category") {
		in.Category = strings.TrimSpace(flagBudgetCategory)
	}
	if flags.Changed("amount") {
		if in.Amount, err = parseAmountArg(flagBudgetAmount); err != nil {
			return err
		}
	}

	b, err := client.UpdateBudget(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated budget #%d %s (%s)  %s\n", b.ID, b.Name, b.Category, cli.FormatCurrency(b.Amount.Float64()))
	return nil
}

func runBudgetsRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	if err := client.DeleteBudget(ctx, id); err != nil {
		return err
	}
	fmt.Printf("  Deleted budget #%d\n", id)
	return nil
}

// findBudget looks id up among personal budgets, then family budgets.
func findBudget(ctx context.Context, client *api.Client, id int64) (*model.Budget, error) {
	budgets, err := client.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		if budgets[i].ID == id {
			return &budgets[i], nil
		}
	}
	family, err := client.FamilyBudgets(ctx)
	if err == nil {
		for i := range family {
			if family[i].ID == id {
				return &family[i], nil
			}
		}
	}
	return nil, fmt.Errorf("budget #%d not found", id)
}
