package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagUsername string
	flagPassword string
	flagEmail    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store tokens",
	Long:  "Log in with a username and password. Missing values are prompted for; FAMFIN_PASSWORD is read when --password is not given.",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget stored tokens",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show login state and backend reachability",
	Args:    cobra.NoArgs,
	RunE:    runStatus,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&flagUsername, "username", "u", "", "Username")
		c.Flags().StringVar(&flagPassword, "password", "", "Password (prefer the prompt or FAMFIN_PASSWORD)")
	}
	registerCmd.Flags().StringVar(&flagEmail, "email", "", "Email address")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, statusCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	creds := model.Credentials{
		Username: strings.TrimSpace(flagUsername),
		Password: flagPassword,
	}
	if creds.Password == "" {
		creds.Password = os.Getenv("FAMFIN_PASSWORD")
	}

	var fields []huh.Field
	if creds.Username == "" {
		fields = append(fields, huh.NewInput().Title("Username").Value(&creds.Username).Validate(notBlank("username")))
	}
	if creds.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password).Validate(notBlank("password")))
	}
	if len(fields) > 0 {
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return err
		}
	}

	client, err := apiClient()
	if err != nil {
		return err
	}
	progressf("  Logging in to %s...\n", client.BaseURL())
	if _, err := client.Login(cmd.Context(), creds); err != nil {
		return err
	}
	fmt.Printf("  Logged in as %s\n", creds.Username)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}
	client.Logout(cmd.Context())
	fmt.Println("  Logged out")
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	in := model.RegisterInput{
		Username: strings.TrimSpace(flagUsername),
		Email:    strings.TrimSpace(flagEmail),
		Password: flagPassword,
	}
	var confirm string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Username").Value(&in.Username).Validate(notBlank("username")),
		huh.NewInput().Title("Email").Value(&in.Email).Validate(notBlank("email")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&in.Password).Validate(notBlank("password")),
		huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm).
			Validate(func(s string) error {
				if s != in.Password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
	))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		if err := form.Run(); err != nil {
			return err
		}
	}

	client, err := apiClient()
	if err != nil {
		return err
	}
	user, err := client.Register(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Printf("  Registered %s", user.Username)
	if user.Email != "" {
		fmt.Printf(" <%s>", user.Email)
	}
	fmt.Println()
	fmt.Println("  Run `famfin login` to sign in.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client, err := apiClient()
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Backend", client.BaseURL()},
		{"Credentials", rt.cfg.Credentials.Backend},
	}

	if !client.IsLoggedIn(ctx) {
		rows = append(rows, []string{"Logged in", "no"})
		fmt.Println()
		fmt.Println(cli.RenderTable(cli.Table{Title: "Status", Rows: rows, LeftCols: 2}))
		fmt.Println("  Run `famfin login` to sign in.")
		return nil
	}
	rows = append(rows, []string{"Logged in", "yes"})
	if keys, err := client.Credentials().StoredKeys(ctx); err == nil {
		rows = append(rows, []string{"Stored keys", strings.Join(keys, ", ")})
	}

	if claims, ok := client.Credentials().Claims(ctx); ok {
		if claims.UserID != "" {
			rows = append(rows, []string{"User ID", claims.UserID})
		}
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt.Local().Format(time.RFC1123)
			if claims.Expired(time.Now()) {
				exp += " (expired, will refresh)"
			}
			rows = append(rows, []string{"Access expires", exp})
		}
	}

	profile, err := client.Profile(ctx)
	switch {
	case err == nil:
		rows = append(rows,
			[]string{"Username", profile.Username},
			[]string{"Email", profile.Email},
			[]string{"Backend status", cli.Muted("reachable")},
		)
	default:
		rows = append(rows, []string{"Backend status", cli.Warn(describeError(err))})
	}
	rows = append(rows, []string{"Token refresh", client.RefreshState().String()})

	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{Title: "Status", Rows: rows, LeftCols: 2}))
	return nil
}

func notBlank(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}
