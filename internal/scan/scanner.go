package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

type FileInfo struct {
	Path  string
	Root  string
	Mtime int64
	Size  int64
}

// ScanRoots expands every include pattern beneath every root and returns the
// matching files sorted by path. Missing roots are skipped.
func ScanRoots(roots, include []string) ([]FileInfo, error) {
	seen := make(map[string]struct{})
	var files []FileInfo

	for _, root := range roots {
		if root == "" {
			continue
		}
		st, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if !st.IsDir() {
			continue
		}

		fsys := os.DirFS(root)
		for _, pattern := range include {
			matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				path := filepath.Join(root, filepath.FromSlash(m))
				if _, dup := seen[path]; dup {
					continue
				}
				info, err := os.Stat(path)
				if err != nil {
					continue // vanished between glob and stat
				}
				seen[path] = struct{}{}
				files = append(files, FileInfo{
					Path:  path,
					Root:  root,
					Mtime: info.ModTime().Unix(),
					Size:  info.Size(),
				})
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Matches reports whether path lies beneath root and matches one of the
// include patterns.
func Matches(root string, include []string, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
