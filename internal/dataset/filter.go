package dataset

import "fmt"

// FilterByContext returns the image records matching every filter
// dimension. Within one dimension any of the wanted values may match
// (OR); across dimensions all filters must match (AND). Context values
// are free text, so matching is exact-string.
func FilterByContext(doc *Document, filters map[string][]string) []ImageRecord {
	var out []ImageRecord
	for _, im := range doc.Images {
		if matchesContexts(im, filters) {
			out = append(out, im)
		}
	}
	return out
}

func matchesContexts(im ImageRecord, filters map[string][]string) bool {
	for dim, wanted := range filters {
		have := im.Contexts[dim]
		ok := false
		for _, w := range wanted {
			for _, h := range have {
				if w == h {
					ok = true
					break
				}
			}
			if ok {
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// FilterByLabels returns the image records whose label set contains every
// requested label.
func FilterByLabels(doc *Document, labels []string) []ImageRecord {
	var out []ImageRecord
	for _, im := range doc.Images {
		have := make(map[string]bool, len(im.Labels))
		for _, l := range im.Labels {
			have[l] = true
		}
		ok := true
		for _, want := range labels {
			if !have[want] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, im)
		}
	}
	return out
}

// CheckLabelConsistency reports every image whose labels are not all
// listed under its "object classes" context. The README treats that
// agreement as a data-quality expectation rather than a hard invariant,
// so findings are returned for display, not raised as errors.
func CheckLabelConsistency(doc *Document) []string {
	var findings []string
	for _, im := range doc.Images {
		classes := make(map[string]bool)
		for _, v := range im.Contexts[ContextObjectClasses] {
			classes[v] = true
		}
		for _, l := range im.Labels {
			if !classes[l] {
				findings = append(findings,
					fmt.Sprintf("image %d (%s): label %q not listed under %q context", im.ID, im.FileName, l, ContextObjectClasses))
			}
		}
	}
	return findings
}
