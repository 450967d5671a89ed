package annot

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"bttctl/internal/dataset"
)

const (
	CleanFileName   = "clean_coco.json"
	DroppedFileName = "dropped_annotations.csv"

	lockTimeout = 5 * time.Second
)

// jsonImage, jsonCategory and jsonAnnotation mirror the on-disk coco.json
// shape for re-serialization.
type jsonImage struct {
	ID       int                 `json:"id"`
	FileName string              `json:"file_name"`
	Labels   []string            `json:"labels,omitempty"`
	Contexts map[string][]string `json:"contexts,omitempty"`
}

type jsonCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type jsonAnnotation struct {
	ID         int       `json:"id"`
	ImageID    int       `json:"image_id"`
	CategoryID int       `json:"category_id"`
	BBox       []float64 `json:"bbox,omitempty"`
}

type jsonDocument struct {
	Images      []jsonImage      `json:"images"`
	Categories  []jsonCategory   `json:"categories,omitempty"`
	Annotations []jsonAnnotation `json:"annotations"`
}

// WriteOutputs writes clean_coco.json (doc with only the kept
// annotations) and dropped_annotations.csv into dir, creating it if
// needed. Both validate and import write into the same output directory,
// so writers serialize on a flock; a pre-existing clean file is backed up
// to clean_coco.json.bak first.
func WriteOutputs(dir string, doc *dataset.Document, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output dir %s: %w", dir, err)
	}

	unlock, err := acquireOutputLock(dir)
	if err != nil {
		return err
	}
	defer unlock()

	cleanPath := filepath.Join(dir, CleanFileName)
	if _, err := os.Stat(cleanPath); err == nil {
		bak := cleanPath + ".bak"
		if err := os.Rename(cleanPath, bak); err != nil {
			return fmt.Errorf("cannot back up %s: %w", cleanPath, err)
		}
		if err := hideBackup(bak); err != nil {
			return fmt.Errorf("cannot hide backup %s: %w", bak, err)
		}
	}

	if err := writeCleanJSON(cleanPath, doc, res.Kept); err != nil {
		return err
	}
	return writeDroppedCSV(filepath.Join(dir, DroppedFileName), res.Dropped)
}

// acquireOutputLock takes the per-directory writer lock, retrying until
// lockTimeout before giving up.
func acquireOutputLock(dir string) (func(), error) {
	lockPath := filepath.Join(dir, ".clean.lock")
	l := flock.New(lockPath)
	deadline := time.Now().Add(lockTimeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire output lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another clean run is in progress (lock: %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func writeCleanJSON(path string, doc *dataset.Document, kept []dataset.Annotation) error {
	out := jsonDocument{
		Images:      make([]jsonImage, 0, len(doc.Images)),
		Categories:  make([]jsonCategory, 0, len(doc.Categories)),
		Annotations: make([]jsonAnnotation, 0, len(kept)),
	}
	for _, im := range doc.Images {
		out.Images = append(out.Images, jsonImage{
			ID: im.ID, FileName: im.FileName, Labels: im.Labels, Contexts: im.Contexts,
		})
	}
	for _, c := range doc.Categories {
		out.Categories = append(out.Categories, jsonCategory{ID: c.ID, Name: c.Name})
	}
	for _, a := range kept {
		out.Annotations = append(out.Annotations, jsonAnnotation{
			ID: a.ID, ImageID: a.ImageID, CategoryID: a.CategoryID, BBox: a.BBox,
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal clean annotations: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func writeDroppedCSV(path string, dropped []Dropped) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	w := csv.NewWriter(f)

	if err := w.Write([]string{"id", "image_id", "category_id", "bbox", "drop_reason"}); err != nil {
		_ = f.Close()
		return err
	}
	for _, d := range dropped {
		bbox, err := json.Marshal(d.Annotation.BBox)
		if err != nil {
			_ = f.Close()
			return err
		}
		row := []string{
			strconv.Itoa(d.Annotation.ID),
			strconv.Itoa(d.Annotation.ImageID),
			strconv.Itoa(d.Annotation.CategoryID),
			string(bbox),
			d.Reason,
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}
