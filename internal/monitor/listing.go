package monitor

import (
	"os"
	"sort"
)

// ListFiles returns the names of regular files directly inside dir, sorted.
// Subdirectories and special files are ignored. An unreadable or missing
// directory yields an empty, non-nil slice.
func ListFiles(dir string) []string {
	names := []string{}
	if dir == "" {
		return names
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
