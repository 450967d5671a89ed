package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bttctl/internal/dataset"
)

var flagInspectFull bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <dataset>",
	Short: "Show a summary of one dataset",
	Long: `Display image and annotation counts, the category table, the context
dimensions with their unique values, and the label distribution.

The argument can be either a dataset ID or a short name from bttctl.yaml.

Example:
  btt inspect synthetic-train
  btt inspect 852a64c6-4bd3-495f-8ff7-f5cc85e34316`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&flagInspectFull, "full", false, "List every context value instead of counts")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id := resolveDatasetID(cfg, args[0])

	ds, err := dataset.Open(cfg.DataRoot, id)
	if err != nil {
		return err
	}
	stats := ds.Stats()

	fmt.Printf("📦 Dataset: %s\n", ds.ID)
	if ref, ok := cfg.Find(id); ok && ref.Name != "" {
		fmt.Printf("Name:     %s\n", ref.Name)
	}
	fmt.Printf("Images:   %d\n", stats.NumImages)
	fmt.Printf("Objects:  %d annotations\n", stats.NumAnnotations)

	if len(stats.Categories) > 0 {
		fmt.Println("\nCategories:")
		for _, c := range stats.Categories {
			fmt.Printf("  %2d  %s\n", c.ID, c.Name)
		}
	}

	// Free-text dimension names ("lighting conditions") become headings
	// ("Lighting Conditions").
	title := cases.Title(language.English)
	fmt.Println("\nContexts:")
	for _, dim := range stats.Dimensions() {
		vals := stats.ContextValues[dim]
		if flagInspectFull {
			fmt.Printf("  %s:\n", title.String(dim))
			for _, v := range vals {
				fmt.Printf("    - %s\n", v)
			}
		} else {
			fmt.Printf("  %-20s %d unique values\n", title.String(dim)+":", len(vals))
		}
	}

	if len(stats.LabelCounts) > 0 {
		fmt.Println("\nLabel distribution:")
		labels := make([]string, 0, len(stats.LabelCounts))
		for l := range stats.LabelCounts {
			labels = append(labels, l)
		}
		sort.Slice(labels, func(i, j int) bool {
			if stats.LabelCounts[labels[i]] == stats.LabelCounts[labels[j]] {
				return labels[i] < labels[j]
			}
			return stats.LabelCounts[labels[i]] > stats.LabelCounts[labels[j]]
		})
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, l := range labels {
			n := stats.LabelCounts[l]
			fmt.Fprintf(w, "  %s\t%d\t%s\n", l, n, strings.Repeat("█", barLen(n, stats.NumImages)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Printf("\nPath: %s\n", ds.ImagesDir)
	return nil
}

// barLen scales a count to a 0–20 char bar relative to the image count.
func barLen(n, total int) int {
	if total == 0 {
		return 0
	}
	l := n * 20 / total
	if l > 20 {
		l = 20
	}
	return l
}
