package cmd

import (
	"fmt"

	"github.com/theirongolddev/famfin/internal/cli"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileIncomeCmd = &cobra.Command{
	Use:   "set-income <amount>",
	Short: "Set your monthly income",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileIncome,
}

func init() {
	profileCmd.AddCommand(profileIncomeCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	p, err := client.Profile(ctx)
	if err != nil {
		return err
	}

	family := "-"
	if p.Family.Valid {
		family = "#" + p.Family.String()
		if fam, err := client.CurrentFamily(ctx); err == nil && fam != nil {
			family = fam.Name
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{
		Title: "Profile",
		Rows: [][]string{
			{"Username", p.Username},
			{"Email", p.Email},
			{"Monthly Income", cli.FormatCurrency(p.MonthlyIncome.Float64())},
			{"Family", family},
		},
		LeftCols: 2,
	}))
	return nil
}

func runProfileIncome(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	income, err := parseAmountArg(args[0])
	if err != nil {
		return err
	}
	client, err := requireLogin(ctx)
	if err != nil {
		return err
	}
	p, err := client.SetMonthlyIncome(ctx, income)
	if err != nil {
		return err
	}
	fmt.Printf("  Monthly income set to %s\n", cli.FormatCurrency(p.MonthlyIncome.Float64()))
	return nil
}
