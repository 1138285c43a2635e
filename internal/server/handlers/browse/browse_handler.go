package browse

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	_ "embed"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/openmined/dirbox/internal/server/access"
	"github.com/openmined/dirbox/internal/server/lister"
	"github.com/openmined/dirbox/internal/server/middlewares"
	"github.com/openmined/dirbox/internal/utils"
)

//go:embed index.html.tpl
var indexTpl string

// BrowseHandler is the catch-all for everything that is not a named
// route: it serves files and renders directory listings according to the
// access decision.
type BrowseHandler struct {
	svc      *access.Service
	tplIndex *template.Template
}

func New(svc *access.Service) *BrowseHandler {
	funcMap := template.FuncMap{
		"humanizeSize": func(size int64) string {
			return humanize.Bytes(uint64(size))
		},
		"icon": entryIcon,
	}
	return &BrowseHandler{
		svc:      svc,
		tplIndex: template.Must(template.New("index").Funcs(funcMap).Parse(indexTpl)),
	}
}

func (h *BrowseHandler) Handler(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead {
		ctx.String(http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	requestPath := ctx.Request.URL.Path
	decision := h.svc.Decide(ctx.Request.Context(), requestPath, middlewares.SessionToken(ctx))

	switch decision.Kind {
	case access.KindServe:
		ctx.Header("Content-Type", utils.DetectContentType(decision.Path))
		ctx.File(decision.Path)

	case access.KindList:
		h.serveDir(ctx, decision)

	case access.KindRedirectToLogin:
		ctx.Redirect(http.StatusFound, "/login?redirect="+url.QueryEscape(requestPath))

	case access.KindDeny:
		h.serveDeny(ctx, decision)
	}
}

func (h *BrowseHandler) serveDeny(ctx *gin.Context, decision *access.Decision) {
	switch {
	case errors.Is(decision.Reason, access.ErrOutsideRoot):
		ctx.String(http.StatusForbidden, "Access denied: path is outside the root directory")
	case errors.Is(decision.Reason, access.ErrNotFound):
		ctx.String(http.StatusNotFound, "not found")
	default:
		ctx.Error(decision.Reason)
		ctx.String(http.StatusInternalServerError, "internal server error")
	}
}

type crumb struct {
	Name string
	Href string
}

type indexData struct {
	Path     string
	Crumbs   []crumb
	Parent   string // href of the parent dir, "" at the root
	Entries  []*lister.Entry
	Identity string
}

func (h *BrowseHandler) serveDir(ctx *gin.Context, decision *access.Decision) {
	rel := h.svc.Root().Rel(decision.Path)

	display := "/" + rel
	if rel == "" {
		display = "/"
	}

	data := indexData{
		Path:     display,
		Crumbs:   breadcrumbs(rel),
		Parent:   parentHref(rel),
		Entries:  decision.Entries,
		Identity: decision.Identity,
	}

	ctx.Status(http.StatusOK)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.tplIndex.Execute(ctx.Writer, data); err != nil {
		ctx.String(http.StatusInternalServerError, "internal server error")
	}
}

func breadcrumbs(rel string) []crumb {
	crumbs := []crumb{{Name: "Home", Href: "/"}}
	if rel == "" {
		return crumbs
	}
	href := ""
	for _, part := range splitPath(rel) {
		href += "/" + part
		crumbs = append(crumbs, crumb{Name: part, Href: href})
	}
	return crumbs
}

func parentHref(rel string) string {
	if rel == "" {
		return ""
	}
	parts := splitPath(rel)
	if len(parts) == 1 {
		return "/"
	}
	href := ""
	for _, part := range parts[:len(parts)-1] {
		href += "/" + part
	}
	return href
}

func splitPath(rel string) []string {
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
