package lister

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openmined/dirbox/internal/server/perms"
)

// Entry is one filesystem node inside a listed directory. Built fresh on
// every listing, never cached.
type Entry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"` // slash path relative to the listed dir's root
	IsDir      bool      `json:"isDir"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mtime"`
	Type       string    `json:"type"`
	IsPublic   bool      `json:"isPublic"`
	IsWritable bool      `json:"isWritable"`
}

// Lister enumerates directories and decorates entries with size, type and
// the public permission flags.
type Lister struct {
	perms *perms.Store
}

func New(perms *perms.Store) *Lister {
	return &Lister{perms: perms}
}

// List reads dir and returns its entries, directories first, then files,
// each group ordered case-insensitively by name. relBase is the slash path
// of dir relative to the served root and prefixes each entry's Path.
func (l *Lister) List(dir string, relBase string) ([]*Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	entries := make([]*Entry, 0, len(dirents))
	for _, d := range dirents {
		abs := filepath.Join(dir, d.Name())
		info, err := d.Info()
		if err != nil {
			// entry vanished between ReadDir and stat; skip it
			continue
		}

		e := &Entry{
			Name:       d.Name(),
			Path:       joinRel(relBase, d.Name()),
			IsDir:      info.IsDir(),
			ModTime:    info.ModTime(),
			IsPublic:   l.perms.IsPubliclyReadable(abs),
			IsWritable: l.perms.IsPubliclyWritable(abs),
		}
		if e.IsDir {
			e.Type = "directory"
		} else {
			e.Size = info.Size()
			e.Type = classify(d.Name())
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return entries, nil
}

func classify(name string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

func joinRel(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
