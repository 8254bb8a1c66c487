package backup

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// withSavepoint runs fn under a named savepoint of tx. A failure inside fn is rolled back to the
// savepoint and returned as recordErr; the transaction stays usable. txErr means the transaction
// itself can no longer be trusted.
func withSavepoint(ctx context.Context, tx *gorm.DB, name string, fn func(tx *gorm.DB) error) (recordErr error, txErr error) {
	tx = tx.WithContext(ctx)
	if err := tx.SavePoint(name).Error; err != nil {
		return nil, errors.Wrapf(err, "savepoint %s", name)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.RollbackTo(name).Error; rbErr != nil {
			return nil, errors.Wrapf(rbErr, "rollback to savepoint %s", name)
		}
		return err, nil
	}
	if err := tx.Exec("RELEASE SAVEPOINT " + name).Error; err != nil {
		return nil, errors.Wrapf(err, "release savepoint %s", name)
	}
	return nil, nil
}

func savepointName(entity string, index int) string {
	return fmt.Sprintf("sp_%s_%d", entity, index)
}
