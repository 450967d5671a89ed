package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// rawDocument mirrors coco.json for decoding. Required fields are
// pointers so that "absent" is distinguishable from zero values; the
// conversion below turns absence into an ErrMalformed failure instead of
// letting a half-empty record leak into a training loop.
type rawDocument struct {
	Images      *[]rawImage     `json:"images"`
	Categories  []rawCategory   `json:"categories"`
	Annotations []rawAnnotation `json:"annotations"`
}

type rawImage struct {
	ID       *int                `json:"id"`
	FileName *string             `json:"file_name"`
	Labels   []string            `json:"labels"`
	Contexts map[string][]string `json:"contexts"`
}

type rawCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type rawAnnotation struct {
	ID         int       `json:"id"`
	ImageID    int       `json:"image_id"`
	CategoryID int       `json:"category_id"`
	BBox       []float64 `json:"bbox"`
}

// Open resolves a dataset identifier against root and parses its
// annotation file. The returned images directory exists at call time;
// individual image files are not checked (use VerifyFiles for that).
// Open never caches: calling it twice reads the file twice and yields
// structurally equal results.
func Open(root, id string) (*Dataset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q is not a dataset identifier", ErrNotFound, id)
	}

	dir := filepath.Join(root, id)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("cannot stat dataset dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	annPath := filepath.Join(dir, "coco.json")
	b, err := os.ReadFile(annPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, annPath)
		}
		return nil, fmt.Errorf("cannot read annotations %s: %w", annPath, err)
	}

	doc, err := parseDocument(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", annPath, err)
	}

	imagesDir := filepath.Join(dir, "images")
	if info, err := os.Stat(imagesDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: images directory %s", ErrNotFound, imagesDir)
	}

	return &Dataset{ID: id, Doc: doc, ImagesDir: imagesDir}, nil
}

// Parse decodes an annotation document from raw JSON bytes, enforcing
// the same required keys as Open. Used to vet corrected annotation files
// before they are installed over a dataset's coco.json.
func Parse(b []byte) (*Document, error) {
	return parseDocument(b)
}

func parseDocument(b []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformed, err)
	}
	if raw.Images == nil {
		return nil, fmt.Errorf("%w: missing required key \"images\"", ErrMalformed)
	}

	doc := &Document{
		Images:      make([]ImageRecord, 0, len(*raw.Images)),
		Categories:  make([]Category, 0, len(raw.Categories)),
		Annotations: make([]Annotation, 0, len(raw.Annotations)),
	}
	for i, im := range *raw.Images {
		if im.ID == nil {
			return nil, fmt.Errorf("%w: images[%d]: missing required key \"id\"", ErrMalformed, i)
		}
		if im.FileName == nil || *im.FileName == "" {
			return nil, fmt.Errorf("%w: images[%d]: missing required key \"file_name\"", ErrMalformed, i)
		}
		doc.Images = append(doc.Images, ImageRecord{
			ID:       *im.ID,
			FileName: *im.FileName,
			Labels:   im.Labels,
			Contexts: im.Contexts,
		})
	}
	for _, c := range raw.Categories {
		doc.Categories = append(doc.Categories, Category{ID: c.ID, Name: c.Name})
	}
	for _, a := range raw.Annotations {
		doc.Annotations = append(doc.Annotations, Annotation{
			ID:         a.ID,
			ImageID:    a.ImageID,
			CategoryID: a.CategoryID,
			BBox:       a.BBox,
		})
	}
	return doc, nil
}

// Discover scans root and returns the identifiers of every subdirectory
// that looks like a dataset (has coco.json and images/). The result is
// sorted for stable output.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: data root %s", ErrNotFound, root)
		}
		return nil, fmt.Errorf("cannot read data root %s: %w", root, err)
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, "coco.json")); err != nil {
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, "images")); err != nil || !info.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// ImagePath returns the full path of an image file inside the dataset.
// The file itself is not checked for existence.
func (ds *Dataset) ImagePath(fileName string) string {
	return filepath.Join(ds.ImagesDir, fileName)
}

// VerifyFiles checks that every image record resolves to an existing file
// and returns the file names that do not. Missing files are reported to
// the caller, never swallowed.
func (ds *Dataset) VerifyFiles() ([]string, error) {
	var missing []string
	for _, im := range ds.Doc.Images {
		if _, err := os.Stat(ds.ImagePath(im.FileName)); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, im.FileName)
				continue
			}
			return nil, fmt.Errorf("cannot stat image %s: %w", im.FileName, err)
		}
	}
	return missing, nil
}
