package backup

import (
	"context"

	"github.com/mmdatafocus/crm_backend/models"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

type clearTarget struct {
	table string
	model any
}

// clearOrder deletes dependents before the rows they reference.
var clearOrder = []clearTarget{
	{"commission_payments", &models.CommissionPayment{}},
	{"receipts", &models.Receipt{}},
	{"interactions", &models.Interaction{}},
	{"inventory", &models.InventoryItem{}},
	{"projects", &models.Project{}},
	{"brokers", &models.Broker{}},
	{"customers", &models.Customer{}},
	{"master_projects", &models.MasterProject{}},
	{"settings", &models.Setting{}},
}

// Clear deletes every row of every entity table in one transaction.
func (e *Engine) Clear(ctx context.Context) (ClearResult, error) {
	ctx, span := startSpan(ctx, "backup.Clear")
	defer span.End()

	result := ClearResult{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, target := range clearOrder {
			res := all.Delete(target.model)
			if res.Error != nil {
				return errors.Wrapf(res.Error, "clear %s", target.table)
			}
			result[target.table] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "clear data")
	}
	e.logFields(ctx, "Clear").WithField("deleted", result).Info("all data cleared")
	e.notify(ctx, Event{Action: EventCleared, Deleted: result})
	return result, nil
}
