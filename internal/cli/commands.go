// Package cli assembles the relcm command tree. Each subcommand builds a
// release.Driver from the resolved settings and flags, runs one workflow
// operation and exits.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relcm/relcm/internal/version"
	"github.com/relcm/relcm/pkg/config"
	"github.com/relcm/relcm/pkg/display"
	"github.com/relcm/relcm/pkg/jira"
	"github.com/relcm/relcm/pkg/logging"
	"github.com/relcm/relcm/pkg/release"
	"github.com/relcm/relcm/pkg/settings"
	"github.com/relcm/relcm/pkg/slack"
	"github.com/relcm/relcm/pkg/template"
)

// globalFlags holds the persistent flag values shared by every subcommand
type globalFlags struct {
	verbosity int
	dryRun    bool
	pretty    bool
	document  string
	user      string
	token     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "relcm",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			logging.LogCommand(cmd.Name(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&flags.pretty, "pretty", false, MsgFlagPretty)
	rootCmd.PersistentFlags().StringVar(&flags.document, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&flags.user, "user", "", MsgFlagUser)
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", "", MsgFlagToken)

	rootCmd.AddCommand(newCreateCmd(flags))
	rootCmd.AddCommand(newUpdateCmd(flags))
	rootCmd.AddCommand(newNoteCmd(flags))
	rootCmd.AddCommand(newDeleteCmd(flags))
	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newCreateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <version> [exclude-branch]",
		Short: MsgCreateShort,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd, flags)
			if err != nil {
				return err
			}
			excludeBranch := ""
			if len(args) > 1 {
				excludeBranch = args[1]
			}
			return d.Create(args[0], excludeBranch)
		},
	}
}

func newUpdateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update <version> [transition]",
		Short: MsgUpdateShort,
		Long:  MsgUpdateLong,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd, flags)
			if err != nil {
				return err
			}
			token := ""
			if len(args) > 1 {
				token = args[1]
			}
			return d.Update(args[0], token)
		},
	}
}

func newNoteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "note <version> <message>",
		Short: MsgNoteShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd, flags)
			if err != nil {
				return err
			}
			return d.Note(args[0], args[1])
		},
	}
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <version>",
		Short: MsgDeleteShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd, flags)
			if err != nil {
				return err
			}
			return d.Delete(args[0])
		},
	}
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd, flags)
			if err != nil {
				return err
			}
			return d.List()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("relcm version %s\n", version.Version)
			cmd.Printf("  commit: %s\n", version.Commit)
			cmd.Printf("  built:  %s\n", version.Date)
		},
	}
}

// newDriver resolves settings, loads the workflow document and wires the
// collaborators for one command invocation.
func newDriver(cmd *cobra.Command, flags *globalFlags) (*release.Driver, error) {
	st, err := settings.Load()
	if err != nil {
		return nil, err
	}

	document := st.Document
	if flags.document != "" {
		document = flags.document
	}
	cfg, err := config.NewResolver(document)
	if err != nil {
		return nil, err
	}

	tickets := jira.New(st.Jira.URL)
	tickets.Username = st.Jira.Username
	tickets.Token = st.Jira.Token
	if flags.user != "" {
		tickets.Username = flags.user
	}
	if flags.token != "" {
		tickets.Token = flags.token
	}
	tickets.DryRun = flags.dryRun

	notify := slack.New(st.Slack.Token)
	if st.Slack.API != "" {
		notify.APIURL = st.Slack.API
	}
	notify.DryRun = flags.dryRun

	pretty := flags.pretty || (cfg.GetBool("pretty", false) && display.IsTerminal())
	out := display.New(cmd.OutOrStdout(), pretty)

	return release.NewDriver(cfg, template.New(), tickets, notify, out), nil
}
