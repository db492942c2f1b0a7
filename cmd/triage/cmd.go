package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/curalab/triage/internal"
)

var (
	log *logrus.Logger

	cfgFile     string
	showVersion bool
	dumpConfig  bool
)

var cmd = &cobra.Command{
	Use:   "triage",
	Short: "triage trains and serves the hybrid symptom decision engine",
	Run:   func(cmd *cobra.Command, args []string) { run() },
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Rebuild the model artifacts from the corpus directory",
	Run:   func(cmd *cobra.Command, args []string) { runTrain() },
}

func init() {
	cmd.AddCommand(trainCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")
	cmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version number")
	cmd.PersistentFlags().BoolVarP(&dumpConfig, "dump-config", "d", false, "dump config")
}

// Execute executes the root cobra command.
func Execute() {
	log = internal.GetLogger()
	log.SetLevel(logrus.InfoLevel)

	err := cmd.Execute()

	if err != nil {
		os.Exit(1)
	}
}
