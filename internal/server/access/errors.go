package access

import "errors"

var (
	// ErrOutsideRoot means the request path escapes the served root.
	ErrOutsideRoot = errors.New("path outside root")

	// ErrNotFound means the resolved path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means a mutation was attempted without a valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage wraps a permission-bit read or write that failed at the
	// filesystem level.
	ErrStorage = errors.New("storage failure")
)
