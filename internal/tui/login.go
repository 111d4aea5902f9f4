package tui

import (
	"errors"
	"strings"

	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// loginValues is bound to the login form fields.
type loginValues struct {
	username string
	password string
}

func (v *loginValues) credentials() model.Credentials {
	return model.Credentials{
		Username: strings.TrimSpace(v.username),
		Password: v.password,
	}
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

func newLoginForm(vals *loginValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&vals.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&vals.password).
				Validate(required("password")),
		),
	).WithShowHelp(true).WithWidth(50)
}

func (a App) viewLogin() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	errStyle := lipgloss.NewStyle().Foreground(t.Red)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ famfin"))
	b.WriteString(mutedStyle.Render(" · sign in to " + a.backendID))
	b.WriteString("\n\n")
	if a.loginErr != nil {
		b.WriteString(errStyle.Render(a.loginErr.Error()))
		b.WriteString("\n\n")
	}
	if a.loggingIn {
		b.WriteString(a.spinner.View())
		b.WriteString(mutedStyle.Render(" Signing in…"))
	} else {
		b.WriteString(a.loginForm.View())
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}
