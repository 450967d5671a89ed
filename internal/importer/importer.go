// Package importer installs corrected annotation files — the output of
// the external annotation-correction workflow — back into a dataset,
// with MD5-based duplicate detection and a backup of the replaced file.
package importer

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"bttctl/internal/dataset"
)

// Result is returned by Install.
type Result struct {
	Installed  bool   // the corrected file replaced coco.json
	Identical  bool   // MD5 matched, nothing to do
	BackupPath string // where the previous coco.json went, if Installed
}

// Install validates the corrected annotation file at src and installs it
// as root/<id>/coco.json. The incoming file must parse under the same
// schema rules as Open, so a broken correction export is rejected before
// it can shadow a working dataset. When the incoming file is
// byte-identical (by MD5) to the current one, nothing is written.
func Install(root, id, src string, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("cannot read corrected annotations %s: %w", src, err)
	}
	doc, err := dataset.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("corrected annotations %s: %w", src, err)
	}

	// The target dataset must already exist and be loadable; Install
	// replaces annotations, it never creates datasets.
	if _, err := dataset.Open(root, id); err != nil {
		return nil, err
	}
	dst := filepath.Join(root, id, "coco.json")

	srcSum, err := fileMD5(src)
	if err != nil {
		return nil, err
	}
	dstSum, err := fileMD5(dst)
	if err != nil {
		return nil, err
	}
	if srcSum == dstSum {
		log.Debug("corrected annotations identical to current", zap.String("dataset", id))
		return &Result{Identical: true}, nil
	}

	bak := dst + ".bak"
	if err := os.Rename(dst, bak); err != nil {
		return nil, fmt.Errorf("cannot back up %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		// Best effort: put the original back so the dataset stays loadable.
		_ = os.Rename(bak, dst)
		return nil, fmt.Errorf("cannot install corrected annotations: %w", err)
	}

	log.Info("installed corrected annotations",
		zap.String("dataset", id),
		zap.Int("images", len(doc.Images)),
		zap.Int("annotations", len(doc.Annotations)),
		zap.String("backup", bak))
	return &Result{Installed: true, BackupPath: bak}, nil
}

// fileMD5 returns the hex MD5 fingerprint of a file.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("md5 %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
