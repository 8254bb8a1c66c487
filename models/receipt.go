package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is money received from a customer, optionally against a project.
// Every receipt write keeps Project.Received equal to the sum of its receipts.
// CustomerId is a weak reference with no constraint; an unknown customer is kept as given.
type Receipt struct {
	ID         string          `gorm:"primaryKey;size:64" json:"id"`
	CustomerId *string         `gorm:"size:64;index" json:"customerId"`
	ProjectId  *string         `gorm:"size:64;index" json:"projectId"`
	Project    *Project        `gorm:"foreignKey:ProjectId;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date       string          `gorm:"size:32" json:"date"`
	Method     string          `gorm:"size:32" json:"method"`
	Reference  string          `gorm:"size:100" json:"reference"`
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (r Receipt) GetId() string { return r.ID }

func (r *Receipt) SetId(id string) { r.ID = id }

func (r *Receipt) ApplyDefaults() {
	if r.Method == "" {
		r.Method = "cash"
	}
	r.CustomerId = utils.NilIfEmpty(utils.DereferencePtr(r.CustomerId))
	r.ProjectId = utils.NilIfEmpty(utils.DereferencePtr(r.ProjectId))
}

var ErrProjectNotFound = errors.New("project not found")

// AdjustProjectReceived adds delta (possibly negative) to the project's received total.
func AdjustProjectReceived(ctx context.Context, tx *gorm.DB, projectId string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	res := tx.WithContext(ctx).Model(&Project{}).
		Where("id = ?", projectId).
		UpdateColumn("received", gorm.Expr("received + CAST(? AS DECIMAL(20,4))", delta.String()))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// RecomputeProjectReceived sets received to the sum of the project's receipts.
func RecomputeProjectReceived(ctx context.Context, tx *gorm.DB, projectId string) error {
	var sum decimal.Decimal
	row := tx.WithContext(ctx).Model(&Receipt{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("project_id = ?", projectId).
		Row()
	if err := row.Scan(&sum); err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&Project{}).
		Where("id = ?", projectId).
		UpdateColumn("received", sum).Error
}

// CreateReceipt stores a new receipt and credits its project.
func CreateReceipt(ctx context.Context, db *gorm.DB, input *Receipt) (*Receipt, error) {
	if input.ID == "" {
		input.ID = utils.NewId()
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := CreateModel(ctx, tx, input); err != nil {
			return err
		}
		if input.ProjectId != nil {
			return AdjustProjectReceived(ctx, tx, *input.ProjectId, input.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return input, nil
}

// UpdateReceipt overwrites receipt id and moves the amount difference onto the project totals.
// When the project changes, the old project loses the old amount and the new one gains the new amount.
func UpdateReceipt(ctx context.Context, db *gorm.DB, id string, input *Receipt) (*Receipt, error) {
	input.ID = id
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := utils.FetchModel[Receipt](ctx, tx, id)
		if err != nil {
			return err
		}
		input.CreatedAt = old.CreatedAt
		if err := UpsertModel(ctx, tx, input); err != nil {
			return err
		}
		oldProject := utils.DereferencePtr(old.ProjectId)
		newProject := utils.DereferencePtr(input.ProjectId)
		if oldProject == newProject {
			if newProject == "" {
				return nil
			}
			return AdjustProjectReceived(ctx, tx, newProject, input.Amount.Sub(old.Amount))
		}
		if oldProject != "" {
			if err := AdjustProjectReceived(ctx, tx, oldProject, old.Amount.Neg()); err != nil {
				return err
			}
		}
		if newProject != "" {
			return AdjustProjectReceived(ctx, tx, newProject, input.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return input, nil
}

// SaveReceipt updates the receipt when it exists and creates it otherwise.
func SaveReceipt(ctx context.Context, db *gorm.DB, input *Receipt) (*Receipt, bool, error) {
	if input.ID != "" {
		err := utils.ValidateResourceId[Receipt](ctx, db, input.ID)
		if err == nil {
			r, err := UpdateReceipt(ctx, db, input.ID, input)
			return r, false, err
		}
		if !errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, false, err
		}
	}
	r, err := CreateReceipt(ctx, db, input)
	return r, true, err
}

// DeleteReceipt removes the receipt and debits its project.
func DeleteReceipt(ctx context.Context, db *gorm.DB, id string) (*Receipt, error) {
	var old *Receipt
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		old, err = utils.FetchModel[Receipt](ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("id = ?", id).Delete(&Receipt{}).Error; err != nil {
			return err
		}
		if old.ProjectId != nil {
			return AdjustProjectReceived(ctx, tx, *old.ProjectId, old.Amount.Neg())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return old, nil
}
