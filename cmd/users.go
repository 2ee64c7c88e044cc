package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newUsersCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Show and edit profiles",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "profile",
			Short: "Show your profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				user, err := app.client.Users.Profile(ctx)
				if err != nil {
					return fmt.Errorf("fetch profile: %w", err)
				}
				return writeOutput(cmd, user, func() string {
					return listing.Profile(user, app.styles(ctx))
				})
			},
		},
		newUsersUpdateCmd(app),
		&cobra.Command{
			Use:   "list",
			Short: "List every user (admin only)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				users, err := app.client.Users.List(ctx)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				return writeOutput(cmd, users, func() string {
					return listing.Users(users, app.styles(ctx))
				})
			},
		},
	)

	return cmd
}

func newUsersUpdateCmd(app *app) *cobra.Command {
	var update domain.ProfileUpdate
	var skills, links string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			update.Skills = domain.SplitList(skills)
			update.PortfolioLinks = domain.SplitList(links)

			if update.Name == "" && update.Bio == "" && update.ProfileVisibility == "" && len(update.Skills) == 0 && len(update.PortfolioLinks) == 0 {
				return errors.New("nothing to update, pass at least one flag")
			}

			user, err := app.client.Users.UpdateProfile(ctx, update)
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			app.notifier.Success("Profile updated")
			return writeOutput(cmd, user, func() string {
				return listing.Profile(user, app.styles(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&update.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&update.Bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&skills, "skills", "", "Comma separated skills")
	cmd.Flags().StringVar(&links, "portfolio", "", "Comma separated portfolio links")
	cmd.Flags().StringVar(&update.ProfileVisibility, "visibility", "", "Profile visibility: public or private")

	return cmd
}
