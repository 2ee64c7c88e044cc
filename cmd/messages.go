package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newMessagesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Read and post task messages",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <task-id>",
			Short: "Show the message history of a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				messages, err := app.client.Messages.History(ctx, args[0])
				if err != nil {
					return fmt.Errorf("fetch messages for task %s: %w", args[0], err)
				}
				return writeOutput(cmd, messages, func() string {
					return listing.Messages(messages, app.selfID(ctx), app.styles(ctx))
				})
			},
		},
		&cobra.Command{
			Use:   "send <task-id> <message>...",
			Short: "Post a message to a task",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				content := strings.TrimSpace(strings.Join(args[1:], " "))
				if content == "" {
					return fmt.Errorf("message is empty")
				}

				message, err := app.client.Messages.Send(ctx, args[0], content)
				if err != nil {
					return fmt.Errorf("send message: %w", err)
				}
				return writeOutput(cmd, message, func() string {
					return listing.ChatLine(message, app.selfID(ctx), app.styles(ctx))
				})
			},
		},
		&cobra.Command{
			Use:   "read <message-id>",
			Short: "Mark a message as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.client.Messages.MarkRead(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("mark message %s read: %w", args[0], err)
				}
				app.notifier.Success("Message marked as read")
				return nil
			},
		},
	)

	return cmd
}

// selfID tells own messages apart. A JWT subject avoids a round trip;
// opaque tokens fall back to asking the server.
func (a *app) selfID(ctx context.Context) string {
	if user, ok := a.sessions.CurrentUser(); ok {
		return user.ID
	}

	token, err := a.session.AccessToken(ctx)
	if err != nil || token == "" {
		return ""
	}
	if claims, err := domain.ParseTokenClaims(token); err == nil && claims.Subject != "" {
		return claims.Subject
	}

	user, err := a.sessions.Rehydrate(ctx)
	if err != nil {
		a.logger.WithError(err).Debug("resolve current user")
		return ""
	}
	return user.ID
}
