// Package export emits the files the external detection framework
// consumes for training and evaluation: one sample per annotated object,
// with a resolved image path, category name and bounding box.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"bttctl/internal/dataset"
)

const (
	SamplesFileName  = "samples.jsonl"
	ManifestFileName = "manifest.json"
)

// Sample is one line of samples.jsonl.
type Sample struct {
	ImagePath string    `json:"image_path"`
	ImageID   int       `json:"image_id"`
	Category  string    `json:"category"`
	BBox      []float64 `json:"bbox"`
}

// Manifest describes an export and how it was produced.
type Manifest struct {
	DatasetID      string              `json:"dataset_id"`
	CreatedAt      string              `json:"created_at"`
	NumImages      int                 `json:"num_images"`
	NumSamples     int                 `json:"num_samples"`
	Categories     map[string]int      `json:"categories"`
	ContextFilters map[string][]string `json:"context_filters,omitempty"`
	SamplesFile    string              `json:"samples_file"`
}

// Options controls an export run.
type Options struct {
	// ContextFilters restricts exported images to those matching the
	// filters (same semantics as dataset.FilterByContext). Empty means
	// export everything.
	ContextFilters map[string][]string
	Log            *zap.Logger
}

// WriteManifest writes samples.jsonl and manifest.json into dir.
// Annotations referencing an unknown image or category make the whole
// export fail with a malformed-data error; no partial export is written
// for a broken document.
func WriteManifest(dir string, ds *dataset.Dataset, opts Options) (*Manifest, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	all := ds.Doc.ImageByID()
	images := all
	if len(opts.ContextFilters) > 0 {
		images = make(map[int]dataset.ImageRecord)
		for _, im := range dataset.FilterByContext(ds.Doc, opts.ContextFilters) {
			images[im.ID] = im
		}
	}
	categories := ds.Doc.CategoryByID()

	var samples []Sample
	for _, a := range ds.Doc.Annotations {
		im, ok := images[a.ImageID]
		if !ok {
			if _, exists := all[a.ImageID]; exists {
				// Image filtered out, not missing.
				continue
			}
			return nil, fmt.Errorf("%w: annotation %d references unknown image %d", dataset.ErrMalformed, a.ID, a.ImageID)
		}
		cat, ok := categories[a.CategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: annotation %d references unknown category %d", dataset.ErrMalformed, a.ID, a.CategoryID)
		}
		samples = append(samples, Sample{
			ImagePath: ds.ImagePath(im.FileName),
			ImageID:   im.ID,
			Category:  cat.Name,
			BBox:      a.BBox,
		})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create export dir %s: %w", dir, err)
	}
	if err := writeSamples(filepath.Join(dir, SamplesFileName), samples); err != nil {
		return nil, err
	}

	catTable := make(map[string]int, len(ds.Doc.Categories))
	for _, c := range ds.Doc.Categories {
		catTable[c.Name] = c.ID
	}
	m := &Manifest{
		DatasetID:      ds.ID,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		NumImages:      len(images),
		NumSamples:     len(samples),
		Categories:     catTable,
		ContextFilters: opts.ContextFilters,
		SamplesFile:    SamplesFileName,
	}
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(manifestPath, append(mb, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("cannot write manifest %s: %w", manifestPath, err)
	}

	log.Info("export written",
		zap.String("dataset", ds.ID),
		zap.Int("images", m.NumImages),
		zap.Int("samples", m.NumSamples),
		zap.String("dir", dir))
	return m, nil
}

func writeSamples(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create samples file %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	for _, s := range samples {
		line, err := json.Marshal(s)
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
