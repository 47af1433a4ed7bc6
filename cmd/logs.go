package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/vsh-project/vsh/core/logger"
	"github.com/vsh-project/vsh/core/ttylog"
)

var (
	idleTimeLimit   time.Duration
	reportBySession bool
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the honeypot interaction logs.",
}

// playCommand replays a session recording with its original timing.
var playCommand = &cobra.Command{
	Use:   "play RECORDING.cast",
	Short: "Replay a recorded interactive session in the terminal.",
	Long:  `Plays a recorded interactive session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		source := ttylog.NewAsciicastLogSource(fd)
		sink := ttylog.NewTerminalOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)

		return ttylog.Replay(source, sink)
	},
}

// catCommand dumps a recording without pacing.
var catCommand = &cobra.Command{
	Use:   "cat RECORDING.cast",
	Short: "Print the full output of a recorded session to the terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		source := ttylog.NewAsciicastLogSource(fd)
		sink := ttylog.NewTerminalOutput(cmd.OutOrStdout())

		return ttylog.Replay(source, sink)
	},
}

// convertCommand rewrites a legacy Kippo/UML recording as asciicast.
var convertCommand = &cobra.Command{
	Use:   "convert RECORDING.ttylog OUTPUT." + ttylog.AsciicastFileExt,
	Short: "Convert a Kippo ttylog recording to an asciicast file.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}

		source := ttylog.NewUMLLogSource(in)
		sink := ttylog.NewKippoQuirksAdapter(ttylog.NewAsciicastLogSink(out, 0, 0))

		if err := ttylog.Replay(source, sink); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	},
}

// reportCommand summarizes the event log.
var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of logged events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := configuration.ReadEventLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var update func(*logger.LogEntry)
		var report interface{}
		if reportBySession {
			interactions := &logger.InteractionReport{}
			update = interactions.Update
			report = interactions
		} else {
			aggregate := &logger.Report{}
			update = aggregate.Update
			report = aggregate
		}

		if err := logger.ReadJSONLinesLog(fd, update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)
	logsCmd.AddCommand(convertCommand)
	logsCmd.AddCommand(reportCommand)

	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
	reportCommand.Flags().BoolVar(&reportBySession, "by-session", false, "Group the report by session instead of aggregating.")
}
