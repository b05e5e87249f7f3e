package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
)

const (
	GenomePattern     = "*.fna"
	AnnotationPattern = "*.gff"
)

// matchFiles lists regular files in dir whose names match pattern, sorted by
// name. Hidden entries never match. A missing dir yields no matches.
func matchFiles(fsys billy.Filesystem, dir, pattern string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", pattern, err)
		}
		if ok {
			out = append(out, fsys.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// stem returns the base name of p without its final extension.
func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
