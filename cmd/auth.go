package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/skilllink-cli/internal/adapters/render/listing"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			prompt := newPrompter(cmd)

			var err error
			if strings.TrimSpace(email) == "" {
				if email, err = prompt.Line("Email", app.sessions.LastEmail(ctx)); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt.Secret("Password"); err != nil {
					return err
				}
			}

			user, err := app.sessions.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			return writeOutput(cmd, user, func() string {
				s := app.styles(ctx)
				return s.Success.Render(fmt.Sprintf("Logged in as %s (%s)", user.Name, user.Role.Label()))
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var input domain.RegisterInput
	var role, skills string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a SkillLink account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			parsed, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			input.Role = parsed
			input.Skills = domain.SplitList(skills)

			if input.Password == "" {
				if input.Password, err = newPrompter(cmd).Secret("Password"); err != nil {
					return err
				}
			}

			user, err := app.sessions.Register(ctx, input)
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}

			return writeOutput(cmd, user, func() string {
				s := app.styles(ctx)
				if user.IsVerified {
					return s.Success.Render(fmt.Sprintf("Registered %s as %s", user.Email, user.Role.Label()))
				}
				return strings.Join([]string{
					s.Success.Render(fmt.Sprintf("Registered %s as %s", user.Email, user.Role.Label())),
					s.Detail.Render(fmt.Sprintf("Check your inbox, then run `sl verify --user %s --code <code>`", user.ID)),
				}, "\n")
			})
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&input.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "Account password (prompted when empty)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleFreelancer), "Role: client or freelancer")
	cmd.Flags().StringVar(&input.Bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&skills, "skills", "", "Comma separated skills")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newVerifyCmd(app *app) *cobra.Command {
	var userID, code string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Confirm an account email with the code that was sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			user, err := app.sessions.VerifyEmail(ctx, userID, code)
			if err != nil {
				return fmt.Errorf("verify email: %w", err)
			}

			return writeOutput(cmd, user, func() string {
				return app.styles(ctx).Success.Render(fmt.Sprintf("Email verified, logged in as %s", user.Name))
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID returned by register")
	cmd.Flags().StringVar(&code, "code", "", "Verification code")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("code")

	resend := &cobra.Command{
		Use:   "resend",
		Short: "Send a new verification code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.sessions.ResendVerification(cmd.Context(), userID); err != nil {
				return fmt.Errorf("resend verification: %w", err)
			}
			app.notifier.Success("Verification code sent")
			return nil
		},
	}
	resend.Flags().StringVar(&userID, "user", "", "User ID returned by register")
	_ = resend.MarkFlagRequired("user")
	cmd.AddCommand(resend)

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			app.notifier.Success("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			user, err := app.currentUser(ctx)
			if err != nil {
				return err
			}

			return writeOutput(cmd, user, func() string {
				return listing.Profile(user, app.styles(ctx))
			})
		},
	}
}

type sessionView struct {
	Authenticated   bool       `json:"authenticated"`
	HasRefreshToken bool       `json:"hasRefreshToken"`
	Subject         string     `json:"subject,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

func newSessionCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Describe the stored session without printing tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			current, err := app.session.Load(ctx)
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}

			view := sessionView{
				Authenticated:   current.Authenticated(),
				HasRefreshToken: current.CanRefresh(),
			}

			var claims *domain.TokenClaims
			if current.Authenticated() {
				if parsed, err := domain.ParseTokenClaims(current.AccessToken); err == nil {
					claims = &parsed
					view.Subject = parsed.Subject
					if !parsed.ExpiresAt.IsZero() {
						expires := parsed.ExpiresAt
						view.ExpiresAt = &expires
					}
				} else {
					app.logger.WithError(err).Debug("access token is not a readable JWT")
				}
			}

			return writeOutput(cmd, view, func() string {
				return listing.Session(current, claims, app.now(), app.styles(ctx))
			})
		},
	}
}
