package persistence

import (
	"errors"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds SELECT ... FOR UPDATE on Postgres. Sqlite serialises
// writers on its own and has no row locks.
func forUpdate(db *gorm.DB) *gorm.DB {
	if isPostgres(db) {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// mapNotFound turns gorm.ErrRecordNotFound into a NOT_FOUND domain error
func mapNotFound(err error, entity string, ref any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, ref)
	}
	return err
}

// updateVersioned writes every column of model when the stored row still has
// the version preceding the aggregate's current one
func updateVersioned(db *gorm.DB, model any, id uuid.UUID, version int) error {
	result := db.Model(model).
		Where("id = ? AND version = ?", id, version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
