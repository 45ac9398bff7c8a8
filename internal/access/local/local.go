// SPDX-License-Identifier: MIT

// Package local reads instrument files from the local disk, the entry
// point for data that has not yet been ingested into blob storage.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rinman24/arcobs/internal/ncdf"
)

// ListFiles returns the sorted names of the regular files in directory
// carrying the given extension. The extension must include the leading
// period.
func ListFiles(directory, extension string) ([]string, error) {
	if !strings.HasPrefix(extension, ".") {
		return nil, fmt.Errorf("extension missing leading period: %q", extension)
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", directory, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == extension {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RenameFiles renames current[i] to renamed[i] within directory. The
// two slices must have equal length. Renames happen in order; on error
// the earlier renames stay in place.
func RenameFiles(directory string, current, renamed []string) error {
	if len(current) != len(renamed) {
		return fmt.Errorf("rename: %d sources for %d targets", len(current), len(renamed))
	}
	for i := range current {
		src := filepath.Join(directory, current[i])
		dst := filepath.Join(directory, renamed[i])
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("rename %q: %w", current[i], err)
		}
	}
	return nil
}

// OpenDataset opens the named container file in directory.
func OpenDataset(directory, name string) (*ncdf.File, error) {
	return ncdf.Open(filepath.Join(directory, name))
}
