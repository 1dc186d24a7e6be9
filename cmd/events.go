package cmd

import (
	"fmt"

	"github.com/josephlewis42/myshell/core/logger"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"sigs.k8s.io/yaml"
)

var sessionFilter string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the shell event log.",
}

// readEvents calls handler with every entry in the configured event log.
func readEvents(handler func(le *logger.LogEntry)) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	fd, err := config.ReadEventLog()
	if err != nil {
		return err
	}
	defer fd.Close()

	return logger.ReadJSONLinesLog(fd, handler)
}

func printYAML(cmd *cobra.Command, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		report := logger.NewReport()
		if err := readEvents(report.Update); err != nil {
			return err
		}

		return printYAML(cmd, report)
	},
}

var sessionsCommand = &cobra.Command{
	Use:   "sessions",
	Short: "Summarize the commands run in each session.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var report logger.SessionReport
		if err := readEvents(report.Update); err != nil {
			return err
		}

		return printYAML(cmd, &report)
	},
}

var listCommand = &cobra.Command{
	Use:   "list",
	Short: "Print the raw events, one per line.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var printErr error
		err := readEvents(func(le *logger.LogEntry) {
			if printErr != nil || (sessionFilter != "" && le.SessionID != sessionFilter) {
				return
			}

			s, err := le.Struct()
			if err != nil {
				printErr = err
				return
			}
			line, err := protojson.Marshal(s)
			if err != nil {
				printErr = err
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(line))
		})
		if err != nil {
			return err
		}
		return printErr
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(sessionsCommand)
	eventsCmd.AddCommand(listCommand)

	listCommand.Flags().StringVarP(&sessionFilter, "session", "s", "", "only show events from this session")
}
