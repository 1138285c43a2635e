package perms

// SetReadRequest toggles the public-read flag of a path under the root.
type SetReadRequest struct {
	Path     string `json:"path" binding:"required"`
	IsPublic *bool  `json:"isPublic" binding:"required"`
}

// SetWriteRequest toggles the public-write flag of a path under the root.
type SetWriteRequest struct {
	Path       string `json:"path" binding:"required"`
	IsWritable *bool  `json:"isWritable" binding:"required"`
}

// SetPermissionResponse is returned by both toggle endpoints.
type SetPermissionResponse struct {
	Success bool `json:"success"`
}
