package fsroot

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

var ErrOutsideRoot = errors.New("path outside root")

// Root is the top-level directory boundary. Every request path resolves
// to an absolute path contained in it. Immutable once created.
type Root struct {
	dir string
}

// New creates a Root from an absolute, cleaned directory path.
func New(dir string) (Root, error) {
	if dir == "" {
		return Root{}, errors.New("root cannot be empty")
	}
	if !filepath.IsAbs(dir) {
		return Root{}, errors.New("root must be absolute")
	}
	return Root{dir: filepath.Clean(dir)}, nil
}

func (r Root) Dir() string {
	return r.dir
}

// Resolve maps a request path to an absolute filesystem path under the
// root. Containment is a path-segment check on cleaned paths, so a sibling
// like "/data-evil" can never pass for root "/data". Pure path logic, no
// filesystem access.
func (r Root) Resolve(requestPath string) (string, error) {
	if strings.ContainsRune(requestPath, '\x00') {
		return "", ErrOutsideRoot
	}

	rel := cleanRequestPath(requestPath)
	if rel == "" {
		return r.dir, nil
	}
	// a cleaned path that still begins with ".." escapes the root; deny
	// instead of clamping it back inside
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ErrOutsideRoot
	}

	abs := filepath.Clean(filepath.Join(r.dir, filepath.FromSlash(rel)))
	if !r.Contains(abs) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// Contains reports whether abs is the root itself or a descendant of it.
func (r Root) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	return abs == r.dir || strings.HasPrefix(abs, r.dir+string(filepath.Separator))
}

// Rel returns the slash-separated path of abs relative to the root, ""
// for the root itself.
func (r Root) Rel(abs string) string {
	rel, err := filepath.Rel(r.dir, filepath.Clean(abs))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// cleanRequestPath turns user input like "", ".", "/a//b/", "a/./b" into
// a clean slash path without a leading slash. "" means the root. ".."
// segments are collapsed but never dropped, so escapes stay visible to
// the caller.
func cleanRequestPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "." || p == "/" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(strings.TrimPrefix(p, "/"))
	if p == "." {
		return ""
	}
	return p
}
