package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bttctl/internal/dataset"
)

func exportFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	return &dataset.Dataset{
		ID:        "852a64c6-4bd3-495f-8ff7-f5cc85e34316",
		ImagesDir: filepath.Join(t.TempDir(), "images"),
		Doc: &dataset.Document{
			Images: []dataset.ImageRecord{
				{ID: 1, FileName: "a.png", Contexts: map[string][]string{
					dataset.ContextScene: {"indoor living room"},
				}},
				{ID: 2, FileName: "b.png", Contexts: map[string][]string{
					dataset.ContextScene: {"indoor kitchen"},
				}},
			},
			Categories: []dataset.Category{
				{ID: 1, Name: "chair"},
				{ID: 2, Name: "cup"},
			},
			Annotations: []dataset.Annotation{
				{ID: 10, ImageID: 1, CategoryID: 1, BBox: []float64{1, 2, 3, 4}},
				{ID: 11, ImageID: 1, CategoryID: 2, BBox: []float64{5, 6, 7, 8}},
				{ID: 12, ImageID: 2, CategoryID: 1, BBox: []float64{9, 9, 9, 9}},
			},
		},
	}
}

func readSamples(t *testing.T, dir string) []Sample {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, SamplesFileName))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var out []Sample
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var s Sample
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			t.Fatalf("invalid sample line: %v", err)
		}
		out = append(out, s)
	}
	return out
}

func TestWriteManifest_AllSamples(t *testing.T) {
	ds := exportFixture(t)
	dir := t.TempDir()

	m, err := WriteManifest(dir, ds, Options{})
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if m.NumSamples != 3 || m.NumImages != 2 {
		t.Fatalf("manifest = %+v", m)
	}

	samples := readSamples(t, dir)
	if len(samples) != 3 {
		t.Fatalf("samples = %d", len(samples))
	}
	if samples[0].Category != "chair" || samples[0].ImagePath != ds.ImagePath("a.png") {
		t.Fatalf("first sample = %+v", samples[0])
	}

	b, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		t.Fatal(err)
	}
	var onDisk Manifest
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("manifest.json: %v", err)
	}
	if onDisk.DatasetID != ds.ID || onDisk.Categories["cup"] != 2 {
		t.Fatalf("on-disk manifest = %+v", onDisk)
	}
}

func TestWriteManifest_ContextFilter(t *testing.T) {
	ds := exportFixture(t)
	dir := t.TempDir()

	m, err := WriteManifest(dir, ds, Options{
		ContextFilters: map[string][]string{dataset.ContextScene: {"indoor kitchen"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.NumImages != 1 || m.NumSamples != 1 {
		t.Fatalf("manifest = %+v", m)
	}
	samples := readSamples(t, dir)
	if len(samples) != 1 || samples[0].ImageID != 2 {
		t.Fatalf("samples = %+v", samples)
	}
}

func TestWriteManifest_UnknownImage_Malformed(t *testing.T) {
	ds := exportFixture(t)
	ds.Doc.Annotations = append(ds.Doc.Annotations, dataset.Annotation{ID: 99, ImageID: 42, CategoryID: 1})

	_, err := WriteManifest(t.TempDir(), ds, Options{})
	if !errors.Is(err, dataset.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestWriteManifest_UnknownCategory_Malformed(t *testing.T) {
	ds := exportFixture(t)
	ds.Doc.Annotations = append(ds.Doc.Annotations, dataset.Annotation{ID: 99, ImageID: 1, CategoryID: 42})

	_, err := WriteManifest(t.TempDir(), ds, Options{})
	if !errors.Is(err, dataset.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}
