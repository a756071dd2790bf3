package repositories

import "gorm.io/gorm"

// pick returns tx when the caller runs inside a transaction, otherwise the
// repository's own handle.
func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
