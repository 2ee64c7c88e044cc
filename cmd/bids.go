package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newBidsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bids",
		Aliases: []string{"bid"},
		Short:   "Submit, review and accept bids",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <task-id>",
			Short: "List the bids on a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				bids, err := app.client.Bids.ForTask(ctx, args[0])
				if err != nil {
					return fmt.Errorf("list bids for task %s: %w", args[0], err)
				}
				return writeOutput(cmd, bids, func() string {
					return listing.Bids(bids, app.styles(ctx))
				})
			},
		},
		newBidsSubmitCmd(app),
		&cobra.Command{
			Use:   "accept <bid-id>",
			Short: "Accept a bid on one of your tasks",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				bid, err := app.client.Bids.Accept(ctx, args[0])
				if err != nil {
					return fmt.Errorf("accept bid %s: %w", args[0], err)
				}
				app.notifier.Success("Bid accepted")
				return writeOutput(cmd, bid, func() string {
					return listing.Bids([]domain.Bid{bid}, app.styles(ctx))
				})
			},
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List the bids you submitted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				bids, err := app.client.Bids.Mine(ctx)
				if err != nil {
					return fmt.Errorf("fetch my bids: %w", err)
				}
				return writeOutput(cmd, bids, func() string {
					return listing.Bids(bids, app.styles(ctx))
				})
			},
		},
	)

	return cmd
}

func newBidsSubmitCmd(app *app) *cobra.Command {
	var input domain.BidInput

	cmd := &cobra.Command{
		Use:   "submit <task-id>",
		Short: "Bid on an open task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if input.Amount <= 0 {
				return errors.New("--amount must be positive")
			}

			bid, err := app.client.Bids.Submit(ctx, args[0], input)
			if err != nil {
				return fmt.Errorf("submit bid: %w", err)
			}
			app.notifier.Success("Bid submitted")
			return writeOutput(cmd, bid, func() string {
				return listing.Bids([]domain.Bid{bid}, app.styles(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&input.Proposal, "proposal", "", "Proposal text")
	cmd.Flags().Float64Var(&input.Amount, "amount", 0, "Bid amount in dollars")
	cmd.Flags().StringVar(&input.Timeline, "timeline", "", "Delivery timeline, e.g. \"2 weeks\"")
	_ = cmd.MarkFlagRequired("proposal")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
