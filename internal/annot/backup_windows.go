//go:build windows

package annot

import "golang.org/x/sys/windows"

// hideBackup marks the backup file hidden so indexers and casual
// directory listings don't surface stale annotation copies.
func hideBackup(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	return windows.SetFileAttributes(p, attrs|windows.FILE_ATTRIBUTE_HIDDEN)
}
