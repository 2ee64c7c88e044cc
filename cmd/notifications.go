package cmd

import (
	"fmt"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *app) *cobra.Command {
	cmd := newNotificationsListCmd(app, "notifications")
	cmd.Aliases = []string{"notif"}
	cmd.Short = "Show and acknowledge notifications"

	cmd.AddCommand(
		newNotificationsListCmd(app, "list"),
		&cobra.Command{
			Use:   "read <notification-id>",
			Short: "Mark one notification as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.client.Notifications.MarkRead(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("mark notification %s read: %w", args[0], err)
				}
				app.notifier.Success("Notification marked as read")
				return nil
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every notification as read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := app.client.Notifications.MarkAllRead(cmd.Context()); err != nil {
					return fmt.Errorf("mark all notifications read: %w", err)
				}
				app.notifier.Success("All notifications marked as read")
				return nil
			},
		},
	)

	return cmd
}

func newNotificationsListCmd(app *app, use string) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   use,
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			result, err := app.client.Notifications.List(ctx, page, limit)
			if err != nil {
				return fmt.Errorf("fetch notifications: %w", err)
			}
			return writeOutput(cmd, result, func() string {
				return listing.Notifications(result, app.styles(ctx))
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Notifications per page")

	return cmd
}
