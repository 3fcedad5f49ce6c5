// Package scan discovers the regular files of a recovery dump.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/maruel/natural"
)

// File is one discovered source file.
type File struct {
	Path string
	Name string
	Size int64
}

// Skipped records an entry the walk could not read.
type Skipped struct {
	Path string
	Err  error
}

// Files walks root and returns every regular file in a stable order:
// directories in natural order ("recup_dir.2" before "recup_dir.10") and,
// within a directory, files in natural name order. Unreadable
// sub-directories are reported in skipped and the walk continues.
func Files(root string) (files []File, skipped []Skipped, err error) {
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			skipped = append(skipped, Skipped{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			skipped = append(skipped, Skipped{Path: path, Err: infoErr})
			return nil
		}
		files = append(files, File{Path: path, Name: d.Name(), Size: info.Size()})
		return nil
	})
	if walkErr != nil {
		return nil, skipped, fmt.Errorf("scan %s: %w", root, walkErr)
	}

	slices.SortStableFunc(files, func(a, b File) int {
		ad, bd := filepath.Dir(a.Path), filepath.Dir(b.Path)
		if ad != bd {
			return compareNatural(ad, bd)
		}
		return compareNatural(a.Name, b.Name)
	})
	return files, skipped, nil
}

func compareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}
