package perms

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmined/dirbox/internal/server/access"
	"github.com/openmined/dirbox/internal/server/handlers/api"
	"github.com/openmined/dirbox/internal/server/middlewares"
)

type PermsHandler struct {
	svc *access.Service
}

func New(svc *access.Service) *PermsHandler {
	return &PermsHandler{svc: svc}
}

// SetRead toggles the public-read flag of a path.
func (h *PermsHandler) SetRead(ctx *gin.Context) {
	var req SetReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("failed to bind json: %w", err))
		return
	}

	err := h.svc.SetReadable(ctx.Request.Context(), req.Path, middlewares.SessionToken(ctx), *req.IsPublic)
	if err != nil {
		abortPermsError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, SetPermissionResponse{Success: true})
}

// SetWrite toggles the public-write flag of a path.
func (h *PermsHandler) SetWrite(ctx *gin.Context) {
	var req SetWriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("failed to bind json: %w", err))
		return
	}

	err := h.svc.SetWritable(ctx.Request.Context(), req.Path, middlewares.SessionToken(ctx), *req.IsWritable)
	if err != nil {
		abortPermsError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, SetPermissionResponse{Success: true})
}

func abortPermsError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrUnauthorized):
		api.AbortWithError(ctx, http.StatusUnauthorized, api.CodeUnauthorized, err)
	case errors.Is(err, access.ErrOutsideRoot):
		api.AbortWithError(ctx, http.StatusForbidden, api.CodeAccessDenied, err)
	case errors.Is(err, access.ErrNotFound):
		api.AbortWithError(ctx, http.StatusNotFound, api.CodeEntryNotFound, err)
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodePermissionSetFailed, err)
	}
}
