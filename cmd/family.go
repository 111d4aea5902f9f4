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

var familyCmd = &cobra.Command{
	Use:   "family",
	Short: "Show and manage your family",
	Args:  cobra.NoArgs,
	RunE:  runFamilyShow,
}

var familyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your family, its members and shared goals",
	Args:  cobra.NoArgs,
	RunE:  runFamilyShow,
}

var familyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a family",
	Args:  cobra.ExactArgs(1),
	RunE:  runFamilyCreate,
}

var familyRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename your family",
	Args:  cobra.ExactArgs(1),
	RunE:  runFamilyRename,
}

var familyAddMemberCmd = &cobra.Command{
	Use:   "add-member <username>",
	Short: "Add a user to your family",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runFamilyMember(cmd, args[0], true) },
}

var familyRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <username>",
	Short: "Remove a user from your family",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runFamilyMember(cmd, args[0], false) },
}

var familyLeaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave your family",
	Args:  cobra.NoArgs,
	RunE:  runFamilyLeave,
}

func init() {
	familyCmd.AddCommand(familyShowCmd, familyCreateCmd, familyRenameCmd,
		familyAddMemberCmd, familyRemoveMemberCmd, familyLeaveCmd)
	rootCmd.AddCommand(familyCmd)
}

var errNoFamily = errors.New("you are not in a family; create one with `famfin family create <name>`")

func currentFamily(ctx context.Context) (*api.Client, *model.Family, error) {
	client, err := requireLogin(ctx)
	if err != nil {
		return nil, nil, err
	}
	fam, err := client.CurrentFamily(ctx)
	if err != nil {
		return nil, nil, err
	}
	if fam == nil {
		return nil, nil, errNoFamily
	}
	return client, fam, nil
}

func runFamilyShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, fam, err := currentFamily(ctx)
	if errors.Is(err, errNoFamily) {
		fmt.Println("\n  You are not in a family. Create one with `famfin family create <name>`.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FAMILY  %s", fam.Name)))
	fmt.Println()

	rows := make([][]string, 0, len(fam.Members))
	for _, m := range fam.Members {
		rows = append(rows, []string{m.Label()})
	}
	fmt.Println(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Members (%d)", len(fam.Members)),
		Headers: []string{"Member"},
		Rows:    rows,
	}))

	goals, err := client.Goals(ctx)
	if err != nil {
		fmt.Println("  " + cli.Warn("partial data: goals: "+describeError(err)))
		return nil
	}
	shared := pipeline.FamilyGoals(goals, fam.ID)
	if len(shared) == 0 {
		fmt.Println("  No shared goals yet. Add one with `famfin goals add <name> <amount> --family`.")
		return nil
	}
	pipeline.SortGoals(shared)
	goalRows := make([][]string, 0, len(shared))
	for _, g := range shared {
		pct := pipeline.GoalDisplayPercentage(g)
		goalRows = append(goalRows, []string{
			g.Name,
			g.GoalType,
			cli.FormatCurrency(pipeline.GoalCurrentAmount(g)),
			cli.FormatCurrency(g.Amount.Float64()),
			cli.FormatPercent(pct),
		})
	}
	fmt.Println(cli.RenderTable(cli.Table{
		Title:    "Shared Goals",
		Headers:  []string{"Goal", "Type", "Progress", "Target", "Done"},
		Rows:     goalRows,
		LeftCols: 2,
	}))
	return nil
}

func runFamilyCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := strings.TrimSpace(args[0])
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	fam, err := client.CreateFamily(ctx, model.FamilyInput{Name: name})
	if err != nil {
		return err
	}
	fmt.Printf("  Created family %s\n", fam.Name)
	return nil
}

func runFamilyRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, fam, err := currentFamily(ctx)
	if err != nil {
		return err
	}
	renamed, err := client.RenameFamily(ctx, fam.ID, model.FamilyInput{Name: strings.TrimSpace(args[0])})
	if err != nil {
		return err
	}
	fmt.Printf("  Renamed %s to %s\n", fam.Name, renamed.Name)
	return nil
}

func runFamilyMember(cmd *cobra.Command, username string, add bool) error {
	ctx := cmd.Context()
	username = strings.TrimSpace(username)
	client, fam, err := currentFamily(ctx)
	if err != nil {
		return err
	}

	var res *model.MemberResult
	if add {
		res, err = client.AddFamilyMember(ctx, fam.ID, username)
	} else {
		res, err = client.RemoveFamilyMember(ctx, fam.ID, username)
	}
	if err != nil {
		return err
	}
	if res.Error != "" {
		return errors.New(res.Error)
	}
	verb := "Added %s to %s"
	if !add {
		verb = "Removed %s from %s"
	}
	printMessage(&model.Message{Message: res.Message}, fmt.Sprintf(verb, username, fam.Name))
	return nil
}

func runFamilyLeave(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, fam, err := currentFamily(ctx)
	if err != nil {
		return err
	}
	msg, err := client.LeaveFamily(ctx, fam.ID)
	if err != nil {
		return err
	}
	printMessage(msg, "Left "+fam.Name)
	return nil
}
