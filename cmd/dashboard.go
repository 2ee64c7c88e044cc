package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/skilllink-cli/internal/adapters/render/dashboard"
	"github.com/bnema/skilllink-cli/internal/application"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"home"},
		Short:   "Show the dashboard for your role",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			user, err := app.currentUser(ctx)
			if err != nil {
				return err
			}

			var board application.Dashboard
			load := func(ctx context.Context) error {
				var err error
				board, err = app.dashboard.Load(ctx, user)
				return err
			}

			if outputFormat(cmd) == formatText {
				err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Loading dashboard...", load)
			} else {
				err = load(ctx)
			}
			if err != nil {
				return fmt.Errorf("load dashboard: %w", err)
			}

			if outputFormat(cmd) != formatText {
				return writeOutput(cmd, board, nil)
			}

			rendered, err := app.dashboardRenderer(board, dashboard.RenderOptions{Theme: app.theme(ctx), Now: app.now()})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}
}
