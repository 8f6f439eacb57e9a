package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// FindByExt returns the regular file in dir whose extension matches ext
// (case-insensitive). When stem is non-empty only <stem><ext> is accepted;
// otherwise the lexically first match wins.
func FindByExt(dir, stem, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		if stem != "" && strings.TrimSuffix(name, filepath.Ext(name)) != stem {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		if stem != "" {
			return "", fmt.Errorf("no %s%s in %s: %w", stem, ext, dir, os.ErrNotExist)
		}
		return "", fmt.Errorf("no *%s in %s: %w", ext, dir, os.ErrNotExist)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}
