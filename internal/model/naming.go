package model

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`(\W+|^_)`)

// InferModelNameFromURL derives a model name from a source URL when no name
// is configured. A trailing slash denotes a directory whose last segment is
// taken verbatim; otherwise the file name loses its extension (".tar.gz"
// counts as one). Runs of non-word characters become a single underscore.
func InferModelNameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		p = u.Path
		if u.Opaque != "" {
			p = u.Opaque
		}
	}
	dir := strings.HasSuffix(p, "/")
	p = strings.TrimSuffix(p, "/")
	name := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		name = p[i+1:]
	}
	if !dir {
		name = trimExt(name)
	}
	return nonWord.ReplaceAllString(name, "_")
}

func trimExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tar.bz2", ".tar.xz"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
