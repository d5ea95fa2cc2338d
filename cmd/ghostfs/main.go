// Command ghostfs is a small CLI over a GhostFS volume, the Go analogue
// of ghost.c's argv[2][0]-dispatched main.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool
var logFormat string

var rootCmd = &cobra.Command{
	Use:   "ghostfs",
	Short: "Inspect and manipulate a GhostFS volume hidden inside a cover file",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if logFormat == "json" {
			logrus.SetFormatter(&logrus.JSONFormatter{})
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", `log output format: "text" or "json"`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("ghostfs: command failed")
		os.Exit(1)
	}
}
