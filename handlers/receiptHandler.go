package handlers

import (
	"context"

	"github.com/mmdatafocus/crm_backend/models"
	"gorm.io/gorm"
)

// receiptRoutes route every receipt write through the operations that keep project totals current.
func receiptRoutes() entityRoutes[models.Receipt] {
	return entityRoutes[models.Receipt]{
		create: func(ctx context.Context, db *gorm.DB, r *models.Receipt) error {
			_, err := models.CreateReceipt(ctx, db, r)
			return err
		},
		save: func(ctx context.Context, db *gorm.DB, r *models.Receipt) error {
			_, _, err := models.SaveReceipt(ctx, db, r)
			return err
		},
		remove: func(ctx context.Context, db *gorm.DB, id string) error {
			_, err := models.DeleteReceipt(ctx, db, id)
			return err
		},
	}
}
