package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bttctl/internal/dataset"
)

var (
	flagFilterContexts []string
	flagFilterLabels   []string
)

var filterCmd = &cobra.Command{
	Use:   "filter <dataset>",
	Short: "List images matching context and label criteria",
	Long: `Select image records by context metadata and object labels.

--context takes dimension=value pairs; repeating a dimension ORs its
values, different dimensions are ANDed. --label requires every named
label to be present on the image.

Example:
  btt filter synthetic-train --context "scene=indoor living room" --label chair
  btt filter real-eval --context "lighting conditions=dim lighting" \
      --context "lighting conditions=bright lighting"`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringArrayVar(&flagFilterContexts, "context", nil, "Context filter as dimension=value (repeatable)")
	filterCmd.Flags().StringArrayVar(&flagFilterLabels, "label", nil, "Required object label (repeatable)")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	if len(flagFilterContexts) == 0 && len(flagFilterLabels) == 0 {
		return cmd.Help()
	}

	filters, err := parseContextFilters(flagFilterContexts)
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

	matches := ds.Doc.Images
	if len(filters) > 0 {
		matches = dataset.FilterByContext(&dataset.Document{Images: matches}, filters)
	}
	if len(flagFilterLabels) > 0 {
		matches = dataset.FilterByLabels(&dataset.Document{Images: matches}, flagFilterLabels)
	}

	fmt.Printf("\n%d of %d images match\n\n", len(matches), len(ds.Doc.Images))
	if len(matches) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tFILE\tLABELS")
	for _, im := range matches {
		fmt.Fprintf(w, "  %d\t%s\t%s\n", im.ID, im.FileName, strings.Join(im.Labels, ", "))
	}
	return w.Flush()
}

// parseContextFilters turns repeated dimension=value flags into the map
// dataset.FilterByContext expects.
func parseContextFilters(raw []string) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]string)
	for _, r := range raw {
		i := strings.Index(r, "=")
		if i <= 0 || i == len(r)-1 {
			return nil, fmt.Errorf("invalid --context %q: want dimension=value", r)
		}
		dim := strings.TrimSpace(r[:i])
		val := strings.TrimSpace(r[i+1:])
		out[dim] = append(out[dim], val)
	}
	return out, nil
}
