package backup_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/mmdatafocus/crm_backend/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClear_RemovesEverythingDespiteReferences(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	runImport(t, db, fixture, backup.ImportOptions{})

	deleted, err := backup.NewEngine(db).Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted["customers"])
	assert.EqualValues(t, 1, deleted["receipts"])
	assert.EqualValues(t, 2, deleted["settings"])

	snap, err := backup.NewEngine(db).Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Customers)
	assert.Empty(t, snap.Brokers)
	assert.Empty(t, snap.Projects)
	assert.Empty(t, snap.Receipts)
	assert.Empty(t, snap.Interactions)
	assert.Empty(t, snap.Inventory)
	assert.Empty(t, snap.MasterProjects)
	assert.Empty(t, snap.CommissionPayments)
	assert.Empty(t, snap.Settings)
}

func TestClear_EmptyStore(t *testing.T) {
	db := testutil.NewDB(t)

	deleted, err := backup.NewEngine(db).Clear(context.Background())
	require.NoError(t, err)
	for table, n := range deleted {
		assert.Zero(t, n, table)
	}
}
