// Package repository contains the MySQL data access layer. Sentinel
// values defined here are shared across repositories so that handlers
// can distinguish failure scenarios. For example, ErrConflict signals
// that an operation cannot proceed because dependent records exist
// (e.g. deleting a schedule entry that appears in order history).
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as removing a schedule entry that
// is still referenced by order items. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned on registration when the normalized email
// already has a users row.
var ErrEmailExists = errors.New("email already exists")
