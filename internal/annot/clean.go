// Package annot cleans BTT annotation files: bounding boxes that cannot
// be used for training are dropped with a recorded reason, and the
// cleaned document plus the drop list are written next to the datasets.
package annot

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"bttctl/internal/dataset"
)

// Drop reasons, recorded verbatim in dropped_annotations.csv.
const (
	ReasonMissingImage = "missing image"
	ReasonMissingBBox  = "missing bbox"
	ReasonBadSize      = "zero/negative width or height"
	ReasonBadOrigin    = "negative x or y"
)

// Dropped is one rejected annotation together with why it was rejected.
type Dropped struct {
	Annotation dataset.Annotation
	Reason     string
}

// Result holds the outcome of one Clean run.
type Result struct {
	Kept    []dataset.Annotation
	Dropped []Dropped
}

// Cleaner validates annotations against their dataset.
type Cleaner struct {
	log *zap.Logger
}

// NewCleaner returns a Cleaner. A nil logger disables audit logging.
func NewCleaner(log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{log: log}
}

// Clean partitions the document's annotations into kept and dropped.
// An annotation is dropped when its image record is unknown, the image
// file is absent on disk, the bbox is missing or not [x, y, w, h], the
// size is non-positive, or the origin is negative. The input document is
// not modified.
func (c *Cleaner) Clean(doc *dataset.Document, imagesDir string) *Result {
	images := doc.ImageByID()
	res := &Result{}

	drop := func(a dataset.Annotation, reason string) {
		res.Dropped = append(res.Dropped, Dropped{Annotation: a, Reason: reason})
		c.log.Debug("dropped annotation",
			zap.Int("id", a.ID),
			zap.Int("image_id", a.ImageID),
			zap.String("reason", reason))
	}

	for _, a := range doc.Annotations {
		im, ok := images[a.ImageID]
		if !ok {
			drop(a, ReasonMissingImage)
			continue
		}
		if _, err := os.Stat(filepath.Join(imagesDir, im.FileName)); err != nil {
			drop(a, ReasonMissingImage)
			continue
		}
		if len(a.BBox) != 4 {
			drop(a, ReasonMissingBBox)
			continue
		}
		x, y, w, h := a.BBox[0], a.BBox[1], a.BBox[2], a.BBox[3]
		if w <= 0 || h <= 0 {
			drop(a, ReasonBadSize)
			continue
		}
		if x < 0 || y < 0 {
			drop(a, ReasonBadOrigin)
			continue
		}
		res.Kept = append(res.Kept, a)
	}
	return res
}
