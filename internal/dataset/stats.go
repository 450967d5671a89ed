package dataset

import "sort"

// Stats summarizes one dataset for display.
type Stats struct {
	NumImages      int
	NumAnnotations int
	Categories     []Category
	// ContextValues holds the unique values seen per context dimension,
	// sorted. Dimensions not present in any record are absent.
	ContextValues map[string][]string
	// LabelCounts is how many images carry each label.
	LabelCounts map[string]int
}

// Stats walks the document once and aggregates counts, context values and
// the label distribution.
func (ds *Dataset) Stats() *Stats {
	s := &Stats{
		NumImages:      len(ds.Doc.Images),
		NumAnnotations: len(ds.Doc.Annotations),
		Categories:     append([]Category(nil), ds.Doc.Categories...),
		ContextValues:  make(map[string][]string),
		LabelCounts:    make(map[string]int),
	}
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i].ID < s.Categories[j].ID })

	seen := make(map[string]map[string]bool)
	for _, im := range ds.Doc.Images {
		for _, l := range im.Labels {
			s.LabelCounts[l]++
		}
		for dim, vals := range im.Contexts {
			if seen[dim] == nil {
				seen[dim] = make(map[string]bool)
			}
			for _, v := range vals {
				seen[dim][v] = true
			}
		}
	}
	for dim, vals := range seen {
		out := make([]string, 0, len(vals))
		for v := range vals {
			out = append(out, v)
		}
		sort.Strings(out)
		s.ContextValues[dim] = out
	}
	return s
}

// Dimensions returns the context dimension names present in the stats,
// sorted.
func (s *Stats) Dimensions() []string {
	out := make([]string, 0, len(s.ContextValues))
	for dim := range s.ContextValues {
		out = append(out, dim)
	}
	sort.Strings(out)
	return out
}
