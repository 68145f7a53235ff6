// Package walk expands command line paths into the files to search.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gramgrep.walk")

// Filter selects files by base name. Include, when non-empty, must match;
// Exclude must not. Directories matching ExcludeDir are not entered.
type Filter struct {
	Recursive  bool
	Include    []string
	Exclude    []string
	ExcludeDir []string
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (f *Filter) wantFile(path string) bool {
	name := filepath.Base(path)
	if len(f.Include) > 0 && !matchAny(f.Include, name) {
		return false
	}
	return !matchAny(f.Exclude, name)
}

// Walk calls visit for every selected file under roots, in lexical order
// within each directory. Paths that cannot be read are passed to skipped.
// Directories are only entered with Recursive set.
func (f *Filter) Walk(roots []string, visit func(path string) error, skipped func(path string, err error)) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			skipped(root, err)
			continue
		}
		if !info.IsDir() {
			// Explicitly named files are searched even when filtered out.
			if err := visit(root); err != nil {
				return err
			}
			continue
		}
		if !f.Recursive {
			log.Warningf("%s: is a directory", root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				skipped(path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && matchAny(f.ExcludeDir, d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !f.wantFile(path) {
				return nil
			}
			return visit(path)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
