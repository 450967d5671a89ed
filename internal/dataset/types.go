// Package dataset loads BTT datasets: COCO-format annotation files
// extended with free-text context metadata, stored one dataset per
// directory under a common data root.
package dataset

// Known context dimensions. The set is open-ended — annotation files may
// carry dimensions not listed here — but these are the ones the shipped
// datasets use and the ones commands know how to summarize.
const (
	ContextScene         = "scene"
	ContextLighting      = "lighting conditions"
	ContextBlur          = "blur effect"
	ContextOcclusion     = "occlusion"
	ContextObjectClasses = "object classes"
)

// Document is the parsed content of one coco.json file.
type Document struct {
	Images      []ImageRecord
	Categories  []Category
	Annotations []Annotation
}

// ImageRecord is one entry of the top-level "images" sequence.
// ID is unique within a dataset only; FileName is relative to the
// dataset's images directory.
type ImageRecord struct {
	ID       int
	FileName string
	Labels   []string
	Contexts map[string][]string
}

// Category maps a numeric class id to its name. Each dataset carries ten
// categories; only a subset is used for the detection task itself.
type Category struct {
	ID   int
	Name string
}

// Annotation is one object instance: a bounding box on an image.
// BBox is COCO [x, y, width, height] when well-formed; the cleaner in
// internal/annot rejects anything else, so this stays a plain slice.
type Annotation struct {
	ID         int
	ImageID    int
	CategoryID int
	BBox       []float64
}

// Dataset is an opened dataset: its parsed document plus the resolved
// images directory. It is read-only after Open.
type Dataset struct {
	ID        string
	Doc       *Document
	ImagesDir string
}

// CategoryByID returns the category table keyed by id.
func (d *Document) CategoryByID() map[int]Category {
	out := make(map[int]Category, len(d.Categories))
	for _, c := range d.Categories {
		out[c.ID] = c
	}
	return out
}

// ImageByID returns the image table keyed by id.
func (d *Document) ImageByID() map[int]ImageRecord {
	out := make(map[int]ImageRecord, len(d.Images))
	for _, im := range d.Images {
		out[im.ID] = im
	}
	return out
}
