package cli

import (
	"github.com/dmitrijs2005/fieldsync/internal/buildinfo"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the cobra command tree. Without a subcommand the
// interactive REPL starts.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "fieldsync",
		Short:         "Offline-first field inspection client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Run(cmd.Context())
			return nil
		},
	}

	root.AddCommand(
		newReplCommand(a),
		newSyncCommand(a),
		newOutboxCommand(a),
		newStatusCommand(a),
		newVersionCommand(),
	)
	return root
}

func newReplCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.Run(cmd.Context())
			return nil
		},
	}
}

func newSyncCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send pending outbox items to the server once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.Sync(cmd.Context())
		},
	}
}

func newOutboxCommand(a *App) *cobra.Command {
	outbox := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and manage the outbox",
	}

	sub := func(use, short string, run func(a *App) func(cmd *cobra.Command) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a.out = cmd.OutOrStdout()
				return run(a)(cmd)
			},
		}
	}

	outbox.AddCommand(
		sub("list", "Show every outbox item", func(a *App) func(*cobra.Command) error {
			return func(cmd *cobra.Command) error { return a.ShowOutbox(cmd.Context()) }
		}),
		sub("pending", "Show the number of pending items", func(a *App) func(*cobra.Command) error {
			return func(cmd *cobra.Command) error { return a.Pending(cmd.Context()) }
		}),
		sub("retry", "Move failed items back to pending", func(a *App) func(*cobra.Command) error {
			return func(cmd *cobra.Command) error { return a.Retry(cmd.Context()) }
		}),
		sub("clear", "Remove sent items", func(a *App) func(*cobra.Command) error {
			return func(cmd *cobra.Command) error { return a.Clear(cmd.Context()) }
		}),
	)
	return outbox
}

func newStatusCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and queue summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.Status(cmd.Context())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
