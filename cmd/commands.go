package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vsh-project/vsh/commands"
	"github.com/vsh-project/vsh/core/interp"
)

// commandsCmd lists everything the honeypot shell understands.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Show the commands the honeypot shell understands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		names = append(names, commands.Names()...)
		for _, builtin := range interp.BuiltinNames() {
			names = append(names, "shell:"+builtin)
		}

		sort.Strings(names)

		for _, v := range names {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
