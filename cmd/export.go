package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bttctl/internal/dataset"
	"bttctl/internal/export"
)

var (
	flagExportOut      string
	flagExportContexts []string
)

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "Write training samples for the detection framework",
	Long: `Emit samples.jsonl — one line per annotated object with a resolved
image path, category name and bounding box — plus manifest.json
describing the export. This is the hand-off format consumed by the
external trainer.

--context restricts the export to images matching the given
dimension=value filters, which is how per-context slices for the
synthetic-to-real comparison are produced.

Example:
  btt export synthetic-train -o exports/train
  btt export real-eval -o exports/eval-dim --context "lighting conditions=dim lighting"`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output directory (default: <output-dir>/export/<dataset-id>)")
	exportCmd.Flags().StringArrayVar(&flagExportContexts, "context", nil, "Context filter as dimension=value (repeatable)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	filters, err := parseContextFilters(flagExportContexts)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ds, err := dataset.Open(cfg.DataRoot, resolveDatasetID(cfg, args[0]))
	if err != nil {
		return err
	}

	outDir := flagExportOut
	if outDir == "" {
		outDir = filepath.Join(cfg.OutputDir, "export", ds.ID)
	}

	m, err := export.WriteManifest(outDir, ds, export.Options{
		ContextFilters: filters,
		Log:            newLogger(),
	})
	if err != nil {
		return err
	}

	printSection("btt export")
	printOK("", fmt.Sprintf("%d sample(s) over %d image(s): %s", m.NumSamples, m.NumImages, filepath.Join(outDir, export.SamplesFileName)))
	printOK("", fmt.Sprintf("manifest: %s", filepath.Join(outDir, export.ManifestFileName)))
	return nil
}
