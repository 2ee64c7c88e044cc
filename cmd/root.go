package cmd

import (
	"fmt"

	"github.com/bnema/skilllink-cli/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(newApp())
}

func newRootCmdFor(app *app) *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "sl",
		Short:         "SkillLink CLI (sl): tasks, bids, chat and payments from the terminal",
		Long:          "sl talks to a SkillLink server: it keeps your session fresh, lists and manages tasks and bids, follows task chat rooms in real time and shows your dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.wire(v, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return validateOutputFormat(outputFormat(cmd))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("output", "o", formatText, "Output format: text, json or yaml")
	flags.String("api-url", "", "SkillLink server base URL")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	for key, name := range map[string]string{
		config.KeyAPIURL:    "api-url",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			rootCmd.RunE = func(*cobra.Command, []string) error {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
			return rootCmd
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newRegisterCmd(app),
		newVerifyCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newSessionCmd(app),
		newUsersCmd(app),
		newTasksCmd(app),
		newBidsCmd(app),
		newMessagesCmd(app),
		newChatCmd(app),
		newPaymentsCmd(app),
		newNotificationsCmd(app),
		newDashboardCmd(app),
		newThemeCmd(app),
	)

	return rootCmd
}
