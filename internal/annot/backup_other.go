//go:build !windows

package annot

// hideBackup is a no-op outside Windows.
func hideBackup(string) error { return nil }
