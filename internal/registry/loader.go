// Package registry scans a model store directory into model specs.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelreg/internal/common/fsutil"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// archiveExts are the file types treated as a model on their own.
var archiveExts = []string{".tar.gz", ".tgz", ".zip", ".tar", ".gguf"}

// LoadDir scans dir for models. Every sub-directory and every archive or
// weights file becomes one spec with a file:// URL; the id is inferred from
// that URL. Hidden entries are skipped. Results follow directory order.
func LoadDir(dir string) ([]types.ModelSpec, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var specs []types.ModelSpec
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		url := "file://" + filepath.ToSlash(filepath.Join(abs, name))
		if e.IsDir() {
			url += "/"
		} else if !isArchive(name) {
			continue
		}
		id := model.InferModelNameFromURL(url)
		if id == "" {
			continue
		}
		specs = append(specs, types.ModelSpec{ID: id, URL: url})
	}
	return specs, nil
}

func isArchive(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range archiveExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
