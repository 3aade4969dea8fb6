package service

import (
	"context"
	"errors"

	"cotizador/internal/pricing"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// noEncontrado maps gorm.ErrRecordNotFound to a NotFoundError and leaves any
// other error untouched.
func noEncontrado(err error, entidad, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &pricing.NotFoundError{Entidad: entidad, ID: id}
	}
	return err
}
