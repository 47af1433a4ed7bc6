package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsh-project/vsh/core"
	"github.com/vsh-project/vsh/core/interp"
)

var (
	execUser      string
	execEphemeral bool
)

// execCmd runs a single command line against the honeypot filesystem.
var execCmd = &cobra.Command{
	Use:   "exec -- COMMAND...",
	Short: "Run one command line in the honeypot and exit.",
	Long: `Run one command line in the honeypot and exit with its code.

The line goes through the full shell: pipes, redirects, and variable
expansion all work. Quote the line to keep your own shell out of it:

	vsh exec -- 'echo pwned > /root/note.txt; cat /root/note.txt'
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		local, err := core.NewLocal(configuration, core.LocalOptions{
			User:      execUser,
			Ephemeral: execEphemeral,
			PTY:       interp.PTY{Width: 80, Height: 24},
		})
		if err != nil {
			return err
		}

		code := local.RunLine(strings.Join(args, " "), os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())

		// Close before exiting so the journal and logs are flushed.
		if err := local.Close(); err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringVar(&execUser, "user", "", "Account to run as; defaults to the configured default user.")
	execCmd.Flags().BoolVar(&execEphemeral, "ephemeral", false, "Run on an in-memory filesystem and discard changes on exit.")
}
