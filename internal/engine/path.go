package engine

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"modelreg/internal/common/fsutil"
)

// LocalPath maps a model URL to a local filesystem path. Only file:// URLs
// and bare paths are accepted; remote artifacts must be staged by the caller.
func LocalPath(modelURL string) (string, error) {
	if strings.TrimSpace(modelURL) == "" {
		return "", fmt.Errorf("empty model url")
	}
	p := modelURL
	if i := strings.Index(modelURL, "://"); i > 0 {
		u, err := url.Parse(modelURL)
		if err != nil {
			return "", fmt.Errorf("parse model url: %w", err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("unsupported model url scheme %q", u.Scheme)
		}
		p = u.Path
		if u.Host != "" && u.Host != "localhost" {
			// file://relative/dir keeps the host as the first segment
			p = u.Host + u.Path
		}
	}
	p, err := fsutil.ExpandHome(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}
