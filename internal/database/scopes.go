package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-collab-api/internal/utils"
)

// Paginate limits a feed query to one page. A zero-value window is
// normalized first so callers can never issue an unbounded read.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	if params.Limit < 1 || params.Page < 1 {
		params = utils.NewPaginationParams(params.Page, params.Limit)
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders a feed by creation time, newest first, with id as a
// tiebreaker so pages stay stable between requests.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
