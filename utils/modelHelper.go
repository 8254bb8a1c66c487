package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

/* DB fetching */

// fetch model by its natural id
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var result T
	err := db.WithContext(ctx).Where("id = ?", id).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models from db, ordered by primary key
func FetchAllModels[T any](ctx context.Context, db *gorm.DB, orderBy string) ([]*T, error) {
	if orderBy == "" {
		orderBy = "id"
	}
	results := make([]*T, 0)
	if err := db.WithContext(ctx).Order(orderBy).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// delete model by its natural id
// (returns RecordNotFound when nothing was deleted)
func DeleteModel[T any](ctx context.Context, db *gorm.DB, id string) error {
	var model T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrorRecordNotFound
	}
	return nil
}
