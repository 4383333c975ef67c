package utils

import (
	"fmt"

	"gorm.io/gorm"
)

// DependentCount counts rows of model whose foreign-key column references id.
// Deletion guards use it instead of database-level restrict constraints.
func DependentCount(db *gorm.DB, model interface{}, column string, id uint) (int64, error) {
	var count int64
	err := db.Model(model).Where(fmt.Sprintf("%s = ?", column), id).Count(&count).Error
	return count, err
}

// Dependency names one table/column pair to check before a delete
type Dependency struct {
	Model  interface{}
	Column string
	Label  string // shown to the operator, e.g. "routes"
}

// CheckDependents runs every dependency check and returns a user-facing error
// message naming the first non-empty dependency, or "" when deletion is safe.
func CheckDependents(db *gorm.DB, id uint, deps []Dependency) (string, error) {
	for _, d := range deps {
		count, err := DependentCount(db, d.Model, d.Column, id)
		if err != nil {
			return "", err
		}
		if count > 0 {
			return fmt.Sprintf("cannot delete: %d dependent %s exist", count, d.Label), nil
		}
	}
	return "", nil
}
