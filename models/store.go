package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRecordNotFound = utils.ErrorRecordNotFound

func init() {
	// amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Entity is a table row keyed on an externally assigned string id.
type Entity interface {
	GetId() string
}

// Defaulter fills the columns a record may omit.
type Defaulter interface {
	ApplyDefaults()
}

// upsertOnId inserts the row, or overwrites every mutable column (and updated_at) when the id exists.
var upsertOnId = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

// UpsertModel is the single write path of the entity store: insert, on id conflict update.
func UpsertModel[T Entity](ctx context.Context, tx *gorm.DB, row *T) error {
	if (*row).GetId() == "" {
		return errors.New("id is required")
	}
	if d, ok := any(row).(Defaulter); ok {
		d.ApplyDefaults()
	}
	return tx.WithContext(ctx).Omit(clause.Associations).Clauses(upsertOnId).Create(row).Error
}

// CreateModel inserts row and fails on an existing id.
func CreateModel[T Entity](ctx context.Context, tx *gorm.DB, row *T) error {
	if d, ok := any(row).(Defaulter); ok {
		d.ApplyDefaults()
	}
	return tx.WithContext(ctx).Omit(clause.Associations).Create(row).Error
}

func GetModel[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	return utils.FetchModel[T](ctx, db, id)
}

func ListModels[T any](ctx context.Context, db *gorm.DB) ([]*T, error) {
	return utils.FetchAllModels[T](ctx, db, "id")
}

func DeleteModel[T any](ctx context.Context, db *gorm.DB, id string) error {
	return utils.DeleteModel[T](ctx, db, id)
}
