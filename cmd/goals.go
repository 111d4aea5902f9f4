package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagGoalType     string
	flagGoalAddType  string
	flagGoalPersonal bool
	flagGoalFamily   bool
	flagGoalName     string
	flagGoalAmount   string
	flagContribGoal  string
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "List and manage saving and spending goals",
	Args:    cobra.NoArgs,
	RunE:    runGoalsList,
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals, pinned first",
	Args:  cobra.NoArgs,
	RunE:  runGoalsList,
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <name> <amount>",
	Short: "Create a goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalsAdd,
}

var goalsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalsEdit,
}

var goalsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a goal",
	Args:    cobra.ExactArgs(1),
	RunE:    runGoalsRm,
}

var goalsPinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin a goal to the top",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runGoalsPin(cmd, args[0], true) },
}

var goalsUnpinCmd = &cobra.Command{
	Use:   "unpin <id>",
	Short: "Unpin a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runGoalsPin(cmd, args[0], false) },
}

var contributeCmd = &cobra.Command{
	Use:   "contribute <goal-id> <amount>",
	Short: "Put money toward a goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runContribute,
}

var contributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "List goal contributions",
	Args:  cobra.NoArgs,
	RunE:  runContributions,
}

func init() {
	for _, c := range []*cobra.Command{goalsCmd, goalsListCmd} {
		c.Flags().StringVarP(&flagGoalType, "type", "t", "", "Only goals of this type (saving or spending)")
		c.Flags().BoolVar(&flagGoalPersonal, "personal", false, "Only personal goals")
		c.Flags().BoolVar(&flagGoalFamily, "family", false, "Only the family's shared goals")
	}
	goalsAddCmd.Flags().StringVarP(&flagGoalAddType, "type", "t", model.GoalSaving, "Goal type (saving or spending)")
	goalsAddCmd.Flags().BoolVar(&flagGoalFamily, "family", false, "Share the goal with your family")
	goalsEditCmd.Flags().StringVar(&flagGoalName, "name", "", "New name")
	goalsEditCmd.Flags().StringVar(&flagGoalAmount, "amount", "", "New target amount")
	goalsEditCmd.Flags().StringVarP(&flagGoalType, "type", "t", "", "New type (saving or spending)")
	goalsEditCmd.Flags().BoolVar(&flagGoalPersonal, "personal", false, "Make the goal personal (--personal=false to share it)")
	contributionsCmd.Flags().StringVar(&flagContribGoal, "goal", "", "Only contributions to this goal id")

	goalsCmd.AddCommand(goalsListCmd, goalsAddCmd, goalsEditCmd, goalsRmCmd, goalsPinCmd, goalsUnpinCmd)
	rootCmd.AddCommand(goalsCmd, contributeCmd, contributionsCmd)
}

func validGoalType(t string) error {
	switch t {
	case model.GoalSaving, model.GoalSpending:
		return nil
	}
	return fmt.Errorf("invalid goal type %q (want %s or %s)", t, model.GoalSaving, model.GoalSpending)
}

func runGoalsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if flagGoalPersonal && flagGoalFamily {
		return errors.New("--personal and --family are mutually exclusive")
	}
	if flagGoalType != "" {
		if err := validGoalType(flagGoalType); err != nil {
			return err
		}
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	goals, err := client.Goals(ctx)
	if err != nil {
		return err
	}

	switch {
	case flagGoalPersonal:
		goals = pipeline.PersonalGoals(goals)
	case flagGoalFamily:
		fam, err := client.CurrentFamily(ctx)
		if err != nil {
			return err
		}
		if fam == nil {
			fmt.Println("\n  You are not in a family.")
			return nil
		}
		goals = pipeline.FamilyGoals(goals, fam.ID)
	}
	if flagGoalType != "" {
		goals = pipeline.FilterGoalsByType(goals, flagGoalType)
	}
	if len(goals) == 0 {
		fmt.Println("\n  No goals found.")
		return nil
	}
	pipeline.SortGoals(goals)

	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		name := g.Name
		if g.Pinned {
			name = "* " + name
		}
		scope := "personal"
		if !g.IsPersonal {
			scope = "family"
		}
		pct := pipeline.GoalDisplayPercentage(g)
		rows = append(rows, []string{
			fmt.Sprintf("#%d", g.ID),
			cli.Truncate(name, 32),
			g.GoalType,
			scope,
			cli.FormatCurrency(pipeline.GoalCurrentAmount(g)),
			cli.FormatCurrency(g.Amount.Float64()),
			cli.FormatPercent(pct),
			cli.RenderPercentBar(pipeline.ProgressBarWidth(pct), 12, cli.LevelStyle("ok")),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{
		Title:    "Goals",
		Headers:  []string{"ID", "Name", "Type", "Scope", "Progress", "Target", "Done", ""},
		Rows:     rows,
		LeftCols: 4,
	}))
	saving := pipeline.GoalTypeProgress(goals, model.GoalSaving)
	spending := pipeline.GoalTypeProgress(goals, model.GoalSpending)
	fmt.Printf("  Saving: %s   Spending: %s\n", typeProgressCell(saving), typeProgressCell(spending))
	return nil
}

func runGoalsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, err := parseAmountArg(args[1])
	if err != nil {
		return err
	}
	if err := validGoalType(flagGoalAddType); err != nil {
		return err
	}
	in := model.GoalInput{
		Name:       strings.TrimSpace(args[0]),
		Amount:     amount,
		GoalType:   flagGoalAddType,
		IsPersonal: !flagGoalFamily,
	}

	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	if flagGoalFamily {
		fam, err := client.CurrentFamily(ctx)
		if err != nil {
			return err
		}
		if fam == nil {
			return errors.New("you are not in a family; create one with `famfin family create <name>`")
		}
		in.Family = &fam.ID
	}

	g, err := client.CreateGoal(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("  Created %s goal #%d %s  %s\n", g.GoalType, g.ID, g.Name, cli.FormatCurrency(g.Amount.Float64()))
	return nil
}

func runGoalsEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var upd model.GoalUpdate
	if flags.Changed("name") {
		name := strings.TrimSpace(flagGoalName)
		upd.Name = &name
	}
	if flags.Changed("amount") {
		amount, err := parseAmountArg(flagGoalAmount)
		if err != nil {
			return err
		}
		upd.Amount = &amount
	}
	if flags.Changed("type") {
		if err := validGoalType(flagGoalType); err != nil {
			return err
		}
		upd.GoalType = &flagGoalType
	}
	if flags.Changed("personal") {
		upd.IsPersonal = &flagGoalPersonal
	}
	if upd == (model.GoalUpdate{}) {
		return errors.New("nothing to change; pass --name, --amount, --type or --personal")
	}

	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	if upd.IsPersonal != nil && !*upd.IsPersonal {
		fam, err := client.CurrentFamily(ctx)
		if err != nil {
			return err
		}
		if fam == nil {
			return errors.New("you are not in a family; create one with `famfin family create <name>`")
		}
		upd.Family = &fam.ID
	}
	g, err := client.UpdateGoal(ctx, id, upd)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated goal #%d %s  %s\n", g.ID, g.Name, cli.FormatCurrency(g.Amount.Float64()))
	return nil
}

func runGoalsRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	if err := client.DeleteGoal(ctx, id); err != nil {
		return err
	}
	fmt.Printf("  Deleted goal #%d\n", id)
	return nil
}

func runGoalsPin(cmd *cobra.Command, arg string, pin bool) error {
	ctx := cmd.Context()
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	var msg *model.Message
	if pin {
		msg, err = client.PinGoal(ctx, id)
	} else {
		msg, err = client.UnpinGoal(ctx, id)
	}
	if err != nil {
		return err
	}
	verb := "Pinned"
	if !pin {
		verb = "Unpinned"
	}
	printMessage(msg, fmt.Sprintf("%s goal #%d", verb, id))
	return nil
}

func runContribute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmountArg(args[1])
	if err != nil {
		return err
	}
	if amount == 0 {
		return errors.New("contribution must be greater than zero")
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	c, err := client.CreateContribution(ctx, model.ContributionInput{Goal: id, Amount: amount})
	if err != nil {
		return err
	}
	fmt.Printf("  Contributed %s to goal #%d\n", cli.FormatCurrency(c.Amount.Float64()), id)
	return nil
}

func runContributions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	goalID, err := optionalID(flagContribGoal)
	if err != nil {
		return err
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	contributions, err := client.Contributions(ctx)
	if err != nil {
		return err
	}

	var rows [][]string
	var total float64
	for _, c := range contributions {
		if goalID != nil && !c.Goal.Is(*goalID) {
			continue
		}
		total += c.Amount.Float64()
		rows = append(rows, []string{
			fmt.Sprintf("#%d", c.ID),
			cli.FormatDate(c.Date.Time),
			"goal " + c.Goal.String(),
			cli.FormatCurrency(c.Amount.Float64()),
		})
	}
	if len(rows) == 0 {
		fmt.Println("\n  No contributions found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{
		Title:    "Contributions",
		Headers:  []string{"ID", "Date", "Goal", "Amount"},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Printf("  Total: %s\n", cli.FormatCurrency(total))
	return nil
}
