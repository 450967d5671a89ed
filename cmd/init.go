package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bttctl/internal/config"
)

var flagInitForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.bttctl/ with a default configuration",
	Long: `Write the default bttctl.yaml (the two challenge datasets with their
documented image counts) and an .env template to ~/.bttctl/.

An existing configuration is left untouched unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	printSection("btt init")

	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !flagInitForce {
		printSkip("", fmt.Sprintf("config already exists: %s (use --force to overwrite)", path))
		return nil
	}

	cfg, err := config.DefaultConfig()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("wrote %s", path))

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	dotenv, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("dotenv template ready: %s", dotenv))

	printInfo("", fmt.Sprintf("expecting datasets under %s — set BTT_DATA_ROOT to override", cfg.DataRoot))
	return nil
}

// loadConfig wraps config.Load with the standard first-run hint.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'btt init' first.", err)
	}
	return cfg, nil
}

// resolveDatasetID maps a CLI argument that may be a configured short
// name (e.g. "synthetic-train") or a raw dataset ID to the ID used on
// disk.
func resolveDatasetID(cfg *config.Config, arg string) string {
	if ref, ok := cfg.Find(arg); ok {
		return ref.ID
	}
	return arg
}
