// Package main is the mdr CLI entry point: refactor, reconstruct, and batch
// subcommands over cobra, mirroring the root/subcommand split inference-sim
// uses for its own simulator CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "mdr",
	Short: "Progressive, error-bounded refactor/reconstruct engine for scientific arrays",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(refactorCmd)
	rootCmd.AddCommand(reconstructCmd)
	rootCmd.AddCommand(batchCmd)
}
