package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrValidation   = errors.New("validation failed")
	ErrMissingToken = errors.New("missing token")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStaleToken marks a structurally valid token whose fencing value no
	// longer matches the stored password version. It is surfaced to clients
	// as a generic unauthorized.
	ErrStaleToken = errors.New("token stale")
)

// PermissionError reports a denied authorization check. Permission names are
// not secrets, so the denial carries the full picture for diagnostics.
type PermissionError struct {
	Role     string
	Required []string
	Granted  []string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("forbidden: role %q requires [%s]", e.Role, strings.Join(e.Required, ", "))
}
