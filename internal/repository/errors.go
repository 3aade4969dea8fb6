package repository

import "errors"

// ErrVersionConflict is returned by NuevaVersion when the caller's expected
// version is no longer the current one.
var ErrVersionConflict = errors.New("la version actual cambio")
