package browse

import (
	"path/filepath"
	"strings"

	"github.com/openmined/dirbox/internal/server/lister"
)

var iconByExt = map[string]string{
	// images
	".jpg":  "image",
	".jpeg": "image",
	".png":  "image",
	".gif":  "image",
	".svg":  "image",
	// documents
	".pdf":  "pdf",
	".doc":  "document",
	".docx": "document",
	".txt":  "text",
	".md":   "markdown",
	// code
	".html": "code",
	".css":  "code",
	".js":   "code",
	".ts":   "code",
	".go":   "code",
	".json": "code",
	// archives
	".zip": "archive",
	".rar": "archive",
	".tar": "archive",
	".gz":  "archive",
}

func entryIcon(e *lister.Entry) string {
	if e.IsDir {
		return "folder"
	}
	if icon, ok := iconByExt[strings.ToLower(filepath.Ext(e.Name))]; ok {
		return icon
	}
	return "file"
}
