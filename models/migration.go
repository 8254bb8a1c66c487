package models

import (
	"gorm.io/gorm"
)

// weakReferences are constraints created by earlier schema versions on columns that are
// now free references.
var weakReferences = []struct {
	model any
	name  string
}{
	{&Receipt{}, "fk_receipts_customer"},
	{&CommissionPayment{}, "fk_commission_payments_project"},
}

func MigrateTable(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Customer{}, &Broker{},
		&Project{},
		&Receipt{},
		&Interaction{}, &InventoryItem{},
		&MasterProject{}, &CommissionPayment{},
		&Setting{},
	)
	if err != nil {
		return err
	}
	m := db.Migrator()
	for _, ref := range weakReferences {
		if m.HasConstraint(ref.model, ref.name) {
			if err := m.DropConstraint(ref.model, ref.name); err != nil {
				return err
			}
		}
	}
	return nil
}
