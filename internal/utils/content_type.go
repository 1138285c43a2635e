package utils

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType classifies a file by extension, sniffing the content
// only when the extension is unknown.
func DetectContentType(path string) string {
	if isTextLike(path) {
		return "text/plain; charset=utf-8"
	}
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		return mimeType
	}
	if mtype, err := mimetype.DetectFile(path); err == nil {
		return mtype.String()
	}
	return "application/octet-stream"
}

func isTextLike(path string) bool {
	return strings.HasSuffix(path, ".yaml") ||
		strings.HasSuffix(path, ".yml") ||
		strings.HasSuffix(path, ".toml") ||
		strings.HasSuffix(path, ".md")
}
