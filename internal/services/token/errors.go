// File: internal/services/token/errors.go
package token

import "errors"

// ErrInvalidToken covers every decode failure: expired, malformed, wrong
// signature. Callers must not be able to tell these apart.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrRefreshRejected is returned when a refresh token decodes but is not
// honorable: wrong type, or absent from the live-token store.
var ErrRefreshRejected = errors.New("refresh token rejected")

// ErrUnauthenticated is returned for a missing or malformed bearer header.
var ErrUnauthenticated = errors.New("could not validate credentials")
