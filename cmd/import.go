package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bttctl/internal/dataset"
	"bttctl/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <dataset> <corrected.json>",
	Short: "Install a corrected annotation file into a dataset",
	Long: `Take an annotation file produced by the external correction workflow
and install it as the dataset's coco.json.

The incoming file is parsed and schema-checked first; a broken export is
rejected without touching the dataset. If the file is identical to the
current annotations nothing is written. Otherwise the current coco.json
is kept as coco.json.bak.

Example:
  btt import real-eval ~/Downloads/cvat-export/coco.json`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id := resolveDatasetID(cfg, args[0])

	printSection("btt import")

	res, err := importer.Install(cfg.DataRoot, id, args[1], newLogger())
	if err != nil {
		return err
	}
	if res.Identical {
		printSkip("", "corrected annotations are identical to the current coco.json — nothing to do")
		return nil
	}

	ds, err := dataset.Open(cfg.DataRoot, id)
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("installed: %d images, %d annotations", len(ds.Doc.Images), len(ds.Doc.Annotations)))
	printInfo("", fmt.Sprintf("previous annotations kept at %s", res.BackupPath))
	return nil
}
