package utils

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// check if id exists, return RecordNotFound Error
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, id string) error {
	var model T
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// IdSet is a lookup set of natural ids, compared after trimming.
type IdSet map[string]struct{}

func (s IdSet) Has(id string) bool {
	_, ok := s[strings.TrimSpace(id)]
	return ok
}

func (s IdSet) Add(id string) {
	s[strings.TrimSpace(id)] = struct{}{}
}

// ResourceIdSet loads every id of T currently visible to db (use the tx to see uncommitted rows).
func ResourceIdSet[T any](ctx context.Context, db *gorm.DB) (IdSet, error) {
	var model T
	var ids []string
	if err := db.WithContext(ctx).Model(&model).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(IdSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set, nil
}
