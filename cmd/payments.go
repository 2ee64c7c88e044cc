package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/spf13/cobra"
)

func newPaymentsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"pay"},
		Short:   "Start payments and review payment history",
	}

	var milestoneID string
	intent := &cobra.Command{
		Use:   "intent <task-id>",
		Short: "Create a payment intent for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result, err := app.client.Payments.CreateIntent(ctx, args[0], milestoneID)
			if err != nil {
				return fmt.Errorf("create payment intent: %w", err)
			}
			return writeOutput(cmd, result, func() string {
				s := app.styles(ctx)
				lines := []string{s.Success.Render("Payment intent created")}
				if result.PaymentID != "" {
					lines = append(lines, s.Label.Render("payment ")+s.Value.Render(result.PaymentID))
				}
				if result.Amount > 0 {
					lines = append(lines, s.Label.Render("amount ")+s.Value.Render(fmt.Sprintf("$%.2f", result.Amount)))
				}
				lines = append(lines, s.Label.Render("client secret ")+s.Detail.Render(result.ClientSecret))
				return strings.Join(lines, "\n")
			})
		},
	}
	intent.Flags().StringVar(&milestoneID, "milestone", "", "Milestone ID to pay")

	cmd.AddCommand(
		intent,
		&cobra.Command{
			Use:   "history",
			Short: "List your payments",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				payments, err := app.client.Payments.History(ctx)
				if err != nil {
					return fmt.Errorf("fetch payment history: %w", err)
				}
				return writeOutput(cmd, payments, func() string {
					return listing.Payments(payments, app.styles(ctx))
				})
			},
		},
	)

	return cmd
}
