package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bttctl/internal/dataset"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets found under the data root",
	Long: `Scan the configured data root for dataset directories (coco.json plus
an images/ directory) and show each one with its image count and, where
the config knows the dataset, its short name and expected count.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ids, err := dataset.Discover(cfg.DataRoot)
	if err != nil {
		return err
	}
	fmt.Printf("\nDatasets under %s (%d found):\n\n", cfg.DataRoot, len(ids))
	if len(ids) == 0 {
		printMiss("", "no datasets found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tIMAGES\tEXPECTED")
	for _, id := range ids {
		ds, err := dataset.Open(cfg.DataRoot, id)
		if err != nil {
			fmt.Fprintf(w, "  %s\t-\t(unreadable: %v)\t-\n", id, err)
			continue
		}
		name, expected := "-", "-"
		if ref, ok := cfg.Find(id); ok {
			if ref.Name != "" {
				name = ref.Name
			}
			if ref.ExpectedImages > 0 {
				expected = fmt.Sprintf("%d", ref.ExpectedImages)
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%d\t%s\n", id, name, len(ds.Doc.Images), expected)
	}
	return w.Flush()
}
