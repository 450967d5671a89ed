package annot

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bttctl/internal/dataset"
)

func cleanFixture(t *testing.T) (*dataset.Document, string) {
	t.Helper()
	imagesDir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(imagesDir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	doc := &dataset.Document{
		Images: []dataset.ImageRecord{
			{ID: 1, FileName: "a.png"},
			{ID: 2, FileName: "b.png"},
			{ID: 3, FileName: "gone.png"}, // record exists, file does not
		},
		Categories: []dataset.Category{{ID: 1, Name: "chair"}},
		Annotations: []dataset.Annotation{
			{ID: 10, ImageID: 1, CategoryID: 1, BBox: []float64{10, 20, 30, 40}}, // valid
			{ID: 11, ImageID: 9, CategoryID: 1, BBox: []float64{0, 0, 5, 5}},     // unknown image id
			{ID: 12, ImageID: 3, CategoryID: 1, BBox: []float64{0, 0, 5, 5}},     // image file absent
			{ID: 13, ImageID: 1, CategoryID: 1, BBox: nil},                       // missing bbox
			{ID: 14, ImageID: 1, CategoryID: 1, BBox: []float64{1, 2, 3}},        // wrong arity
			{ID: 15, ImageID: 2, CategoryID: 1, BBox: []float64{1, 2, 0, 10}},    // zero width
			{ID: 16, ImageID: 2, CategoryID: 1, BBox: []float64{1, 2, 10, -4}},   // negative height
			{ID: 17, ImageID: 2, CategoryID: 1, BBox: []float64{-1, 2, 10, 10}},  // negative x
		},
	}
	return doc, imagesDir
}

func TestClean_DropReasons(t *testing.T) {
	doc, imagesDir := cleanFixture(t)

	res := NewCleaner(nil).Clean(doc, imagesDir)

	if len(res.Kept) != 1 || res.Kept[0].ID != 10 {
		t.Fatalf("kept = %+v", res.Kept)
	}
	want := map[int]string{
		11: ReasonMissingImage,
		12: ReasonMissingImage,
		13: ReasonMissingBBox,
		14: ReasonMissingBBox,
		15: ReasonBadSize,
		16: ReasonBadSize,
		17: ReasonBadOrigin,
	}
	if len(res.Dropped) != len(want) {
		t.Fatalf("dropped %d annotations, want %d", len(res.Dropped), len(want))
	}
	for _, d := range res.Dropped {
		if want[d.Annotation.ID] != d.Reason {
			t.Errorf("annotation %d: reason %q, want %q", d.Annotation.ID, d.Reason, want[d.Annotation.ID])
		}
	}
}

func TestClean_InputNotMutated(t *testing.T) {
	doc, imagesDir := cleanFixture(t)
	before := len(doc.Annotations)

	_ = NewCleaner(nil).Clean(doc, imagesDir)

	if len(doc.Annotations) != before {
		t.Fatalf("input document was mutated: %d annotations, had %d", len(doc.Annotations), before)
	}
}

func TestWriteOutputs_RoundTrip(t *testing.T) {
	doc, imagesDir := cleanFixture(t)
	res := NewCleaner(nil).Clean(doc, imagesDir)

	outDir := filepath.Join(t.TempDir(), "clean")
	if err := WriteOutputs(outDir, doc, res); err != nil {
		t.Fatalf("WriteOutputs: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(outDir, CleanFileName))
	if err != nil {
		t.Fatal(err)
	}
	var clean struct {
		Images      []json.RawMessage `json:"images"`
		Annotations []struct {
			ID int `json:"id"`
		} `json:"annotations"`
	}
	if err := json.Unmarshal(b, &clean); err != nil {
		t.Fatalf("clean output is not valid JSON: %v", err)
	}
	if len(clean.Images) != 3 {
		t.Fatalf("clean output has %d images, want 3", len(clean.Images))
	}
	if len(clean.Annotations) != 1 || clean.Annotations[0].ID != 10 {
		t.Fatalf("clean output annotations = %+v", clean.Annotations)
	}

	f, err := os.Open(filepath.Join(outDir, DroppedFileName))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("dropped CSV: %v", err)
	}
	if len(rows) != 8 { // header + 7 dropped
		t.Fatalf("dropped CSV has %d rows", len(rows))
	}
	if rows[0][4] != "drop_reason" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
}

func TestWriteOutputs_BacksUpPreviousClean(t *testing.T) {
	doc, imagesDir := cleanFixture(t)
	res := NewCleaner(nil).Clean(doc, imagesDir)

	outDir := filepath.Join(t.TempDir(), "clean")
	if err := WriteOutputs(outDir, doc, res); err != nil {
		t.Fatal(err)
	}
	if err := WriteOutputs(outDir, doc, res); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(outDir, CleanFileName+".bak")); err != nil {
		t.Fatalf("expected backup of previous clean file: %v", err)
	}
}
