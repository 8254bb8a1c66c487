package models

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting is one key of the flat settings mapping. Value holds the JSON encoding of the setting.
// Stored as text so scalar JSON values keep their encoding on every engine.
type Setting struct {
	Key       string         `gorm:"primaryKey;column:key;size:128" json:"key"`
	Value     datatypes.JSON `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func UpsertSetting(ctx context.Context, tx *gorm.DB, setting *Setting) error {
	if len(setting.Value) == 0 {
		setting.Value = datatypes.JSON("null")
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(setting).Error
}

func GetSetting(ctx context.Context, db *gorm.DB, key string) (*Setting, error) {
	var setting Setting
	err := db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Take(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &setting, nil
}

func ListSettings(ctx context.Context, db *gorm.DB) ([]*Setting, error) {
	settings := make([]*Setting, 0)
	if err := db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
