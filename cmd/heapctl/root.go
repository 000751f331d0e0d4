package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect the heapkit allocator",
	Long: `heapctl is a tool for exercising the heapkit dynamic storage
allocator. It replays allocation traces against a fresh heap, validates the
heap invariants along the way when asked to (replay --check), and reports
throughput and utilization.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
