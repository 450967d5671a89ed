package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bttctl/internal/annot"
	"bttctl/internal/dataset"
)

var flagValidateOut string

var validateCmd = &cobra.Command{
	Use:   "validate <dataset>",
	Short: "Drop unusable annotations and write cleaned outputs",
	Long: `Check every annotation against its image record, the image file on
disk and its bounding box, then write:

  <output-dir>/clean_coco.json          annotations that passed
  <output-dir>/dropped_annotations.csv  rejects with a drop reason

A previous clean_coco.json is backed up before being replaced. The
output directory defaults to output_dir from bttctl.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&flagValidateOut, "out", "o", "", "Output directory (default: output_dir from config)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ds, err := dataset.Open(cfg.DataRoot, resolveDatasetID(cfg, args[0]))
	if err != nil {
		return err
	}

	outDir := flagValidateOut
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	printSection("btt validate")
	printInfo("", fmt.Sprintf("dataset %s: %d annotations over %d images", ds.ID, len(ds.Doc.Annotations), len(ds.Doc.Images)))

	res := annot.NewCleaner(newLogger()).Clean(ds.Doc, ds.ImagesDir)
	if err := annot.WriteOutputs(outDir, ds.Doc, res); err != nil {
		return err
	}

	printOK("", fmt.Sprintf("kept %d annotation(s): %s", len(res.Kept), filepath.Join(outDir, annot.CleanFileName)))
	if len(res.Dropped) == 0 {
		printOK("", "nothing dropped")
		return nil
	}
	byReason := make(map[string]int)
	for _, d := range res.Dropped {
		byReason[d.Reason]++
	}
	printWarn("", fmt.Sprintf("dropped %d annotation(s): %s", len(res.Dropped), filepath.Join(outDir, annot.DroppedFileName)))
	for _, reason := range []string{annot.ReasonMissingImage, annot.ReasonMissingBBox, annot.ReasonBadSize, annot.ReasonBadOrigin} {
		if n := byReason[reason]; n > 0 {
			printMiss("", fmt.Sprintf("%-30s %d", reason, n))
		}
	}
	return nil
}
