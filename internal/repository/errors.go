// Package repository defines error values that are reused across
// repositories and the layers above them. Sentinel values let handlers
// distinguish failure scenarios without matching on driver error text.
// For example, ErrEmailExists reports that a staff registration
// collided with an already-registered email, which the auth handler
// translates into an HTTP 409 response.
package repository

import "errors"

// ErrEmailExists is returned when a staff account cannot be created
// because its normalized email is already registered. The underlying
// cause is the unique index on the email column in either dialect.
var ErrEmailExists = errors.New("email already exists")
