// Package repository defines the store contracts shared by the document
// store and MySQL implementations, plus the sentinel errors handlers use to
// choose a status code.
package repository

import "errors"

// ErrNotFound is returned when an id-addressed record does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// record owned by someone else.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidID is returned when an id cannot be parsed by the backing store.
var ErrInvalidID = errors.New("invalid id")

// ErrEmailExists is returned by user inserts racing on the unique email key.
var ErrEmailExists = errors.New("email already exists")
