package cmd

import (
	"fmt"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/cobra"
)

type themeView struct {
	Theme domain.Theme `json:"theme"`
}

func newThemeCmd(app *app) *cobra.Command {
	show := func(cmd *cobra.Command, _ []string) error {
		theme, err := app.themes.Current(cmd.Context())
		if err != nil {
			return fmt.Errorf("load theme: %w", err)
		}
		return writeTheme(cmd, app, theme)
	}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color theme",
		Args:  cobra.NoArgs,
		RunE:  show,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the active theme",
			Args:  cobra.NoArgs,
			RunE:  show,
		},
		&cobra.Command{
			Use:       "set <light|dark>",
			Short:     "Choose a theme",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark)},
			RunE: func(cmd *cobra.Command, args []string) error {
				theme, err := domain.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := app.themes.Set(cmd.Context(), theme); err != nil {
					return err
				}
				return writeTheme(cmd, app, theme)
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				theme, err := app.themes.Toggle(cmd.Context())
				if err != nil {
					return err
				}
				return writeTheme(cmd, app, theme)
			},
		},
	)

	return cmd
}

func writeTheme(cmd *cobra.Command, app *app, theme domain.Theme) error {
	app.notifier.SetTheme(theme)
	return writeOutput(cmd, themeView{Theme: theme}, func() string {
		return fmt.Sprintf("theme: %s", theme)
	})
}
