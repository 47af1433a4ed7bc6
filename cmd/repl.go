package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsh-project/vsh/core"
	"github.com/vsh-project/vsh/core/interp"
)

var (
	replUser      string
	replEphemeral bool
)

// replCmd runs the honeypot shell on the local terminal.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run the honeypot shell on the local terminal.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		term := os.Getenv("TERM")
		if term == "" {
			term = "xterm"
		}

		local, err := core.NewLocal(configuration, core.LocalOptions{
			User:      replUser,
			Ephemeral: replEphemeral,
			// TODO: pick up the real terminal size
			PTY: interp.PTY{Width: 80, Height: 40, Term: term, IsPTY: true},
		})
		if err != nil {
			return err
		}
		defer local.Close()

		code, err := local.RunShell(os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exit code: %d\n", code)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replUser, "user", "", "Account to log in as; defaults to the configured default user.")
	replCmd.Flags().BoolVar(&replEphemeral, "ephemeral", false, "Run on an in-memory filesystem and discard changes on exit.")
}
