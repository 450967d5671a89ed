package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:          "btt",
	Short:        "btt — BTT dataset loading, validation and export tooling",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `btt works with BTT object-detection datasets: COCO-format annotation
files extended with per-image context metadata (scene, lighting, blur,
occlusion), laid out as BTT_Data/<dataset-id>/coco.json plus an images/
directory.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the logger handed to library code: a development
// logger with --verbose, a nop logger otherwise so normal runs stay
// limited to the CLI's own output.
func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
