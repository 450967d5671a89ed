package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bttctl/internal/dataset"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run pre-flight checks over the data root",
	Long: `Check that the data root is in working order: every configured dataset
is present, parses, has its documented image count, and its image files
resolve on disk. Label/context consistency is reported as warnings.

Run this after downloading the datasets, or before filing a data bug.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	allOK := true
	fail := func(name, format string, args ...any) {
		printErr(name, fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("btt verify")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// ── Check 1: data root ────────────────────────────────────────────────
	fmt.Println("\n[ data root ]")
	if info, err := os.Stat(cfg.DataRoot); err != nil || !info.IsDir() {
		fail("", "data root not found: %s", cfg.DataRoot)
		fmt.Println()
		return errors.New("verify failed")
	}
	printOK("", cfg.DataRoot)

	// ── Check 2: configured datasets load and match expectations ─────────
	fmt.Println("\n[ datasets ]")
	var opened []*dataset.Dataset
	for _, ref := range cfg.Datasets {
		label := ref.Name
		if label == "" {
			label = ref.ID
		}
		ds, err := dataset.Open(cfg.DataRoot, ref.ID)
		if err != nil {
			switch {
			case errors.Is(err, dataset.ErrNotFound):
				fail(label, "not found: %v", err)
			case errors.Is(err, dataset.ErrMalformed):
				fail(label, "malformed: %v", err)
			default:
				fail(label, "%v", err)
			}
			continue
		}
		if ref.ExpectedImages > 0 && len(ds.Doc.Images) != ref.ExpectedImages {
			fail(label, "has %d images, expected %d", len(ds.Doc.Images), ref.ExpectedImages)
			continue
		}
		printOK(label, fmt.Sprintf("%d images, %d annotations", len(ds.Doc.Images), len(ds.Doc.Annotations)))
		opened = append(opened, ds)
	}
	if discovered, err := dataset.Discover(cfg.DataRoot); err == nil {
		for _, id := range discovered {
			if _, known := cfg.Find(id); !known {
				printInfo("", fmt.Sprintf("unconfigured dataset on disk: %s", id))
			}
		}
	}

	// ── Check 3: image files resolve ──────────────────────────────────────
	fmt.Println("\n[ image files ]")
	for _, ds := range opened {
		missing, err := ds.VerifyFiles()
		if err != nil {
			fail(ds.ID, "%v", err)
			continue
		}
		if len(missing) > 0 {
			fail(ds.ID, "%d image file(s) missing, first: %s", len(missing), missing[0])
			continue
		}
		printOK(ds.ID, "all image files present")
	}

	// ── Check 4: labels agree with "object classes" contexts ──────────────
	fmt.Println("\n[ label consistency ]")
	const maxFindings = 5
	for _, ds := range opened {
		findings := dataset.CheckLabelConsistency(ds.Doc)
		if len(findings) == 0 {
			printOK(ds.ID, "labels consistent with contexts")
			continue
		}
		printWarn(ds.ID, fmt.Sprintf("%d inconsistency finding(s)", len(findings)))
		for i, f := range findings {
			if i == maxFindings {
				printWarn("", fmt.Sprintf("... and %d more", len(findings)-maxFindings))
				break
			}
			printWarn("", f)
		}
	}

	fmt.Println()
	if !allOK {
		return errors.New("verify found problems")
	}
	fmt.Println("  ✓  all checks passed")
	return nil
}
