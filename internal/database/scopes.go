package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/utils"
)

// Paginate applies offset and limit from params.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OrderByScore sorts users by the given score column, highest first, ties broken by id.
func OrderByScore(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column + " DESC").Order("id ASC")
	}
}
