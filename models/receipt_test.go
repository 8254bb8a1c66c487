package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProjects(t *testing.T, db *gorm.DB, ids ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, models.UpsertModel(ctx, db, &models.Customer{ID: "C1", Name: "Ali"}))
	for _, id := range ids {
		require.NoError(t, models.UpsertModel(ctx, db, &models.Project{ID: id, CustomerId: "C1", Sale: decimal.NewFromInt(1000)}))
	}
}

func received(t *testing.T, db *gorm.DB, projectId string) decimal.Decimal {
	t.Helper()
	p, err := models.GetModel[models.Project](context.Background(), db, projectId)
	require.NoError(t, err)
	return p.Received
}

func ptr(s string) *string { return &s }

func TestReceiptLifecycleAdjustsProjectReceived(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedProjects(t, db, "P1")

	r, err := models.CreateReceipt(ctx, db, &models.Receipt{ProjectId: ptr("P1"), Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "cash", r.Method)
	assert.True(t, decimal.NewFromInt(300).Equal(received(t, db, "P1")))

	_, err = models.UpdateReceipt(ctx, db, r.ID, &models.Receipt{ProjectId: ptr("P1"), Amount: decimal.NewFromInt(450)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(450).Equal(received(t, db, "P1")))

	deleted, err := models.DeleteReceipt(ctx, db, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, deleted.ID)
	assert.True(t, received(t, db, "P1").IsZero())

	_, err = models.DeleteReceipt(ctx, db, r.ID)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestUpdateReceiptMovesAmountBetweenProjects(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedProjects(t, db, "P1", "P2")

	_, err := models.CreateReceipt(ctx, db, &models.Receipt{ID: "R1", ProjectId: ptr("P1"), Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = models.UpdateReceipt(ctx, db, "R1", &models.Receipt{ProjectId: ptr("P2"), Amount: decimal.NewFromInt(120)})
	require.NoError(t, err)
	assert.True(t, received(t, db, "P1").IsZero())
	assert.True(t, decimal.NewFromInt(120).Equal(received(t, db, "P2")))

	// detaching from every project leaves no total behind
	_, err = models.UpdateReceipt(ctx, db, "R1", &models.Receipt{Amount: decimal.NewFromInt(120)})
	require.NoError(t, err)
	assert.True(t, received(t, db, "P2").IsZero())
}

func TestSaveReceiptCreatesOrUpdates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedProjects(t, db, "P1")

	_, created, err := models.SaveReceipt(ctx, db, &models.Receipt{ID: "R1", ProjectId: ptr("P1"), Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = models.SaveReceipt(ctx, db, &models.Receipt{ID: "R1", ProjectId: ptr("P1"), Amount: decimal.NewFromInt(25)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, decimal.NewFromInt(25).Equal(received(t, db, "P1")))
}

func TestCreateReceiptRollsBackOnUnknownProject(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := models.CreateReceipt(ctx, db, &models.Receipt{ID: "R1", ProjectId: ptr("P-missing"), Amount: decimal.NewFromInt(10)})
	require.Error(t, err)

	_, err = models.GetModel[models.Receipt](ctx, db, "R1")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestRecomputeProjectReceived(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedProjects(t, db, "P1")
	for _, id := range []string{"R1", "R2"} {
		_, err := models.CreateReceipt(ctx, db, &models.Receipt{ID: id, ProjectId: ptr("P1"), Amount: decimal.RequireFromString("12.5")})
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", "P1").UpdateColumn("received", 999).Error)

	require.NoError(t, models.RecomputeProjectReceived(ctx, db, "P1"))
	assert.True(t, decimal.NewFromInt(25).Equal(received(t, db, "P1")))
}

func TestAdjustProjectReceivedUnknownProject(t *testing.T) {
	db := testutil.NewDB(t)
	err := models.AdjustProjectReceived(context.Background(), db, "nope", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, models.ErrProjectNotFound)
}

func TestSaveProjectKeepsReceivedFromReceipts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seedProjects(t, db, "P1")
	_, err := models.CreateReceipt(ctx, db, &models.Receipt{CustomerId: ptr("C-gone"), ProjectId: ptr("P1"), Amount: decimal.NewFromInt(250)})
	require.NoError(t, err)

	require.NoError(t, models.SaveProject(ctx, db, &models.Project{ID: "P1", CustomerId: "C1", Name: "renamed"}))
	assert.True(t, decimal.NewFromInt(250).Equal(received(t, db, "P1")))

	require.NoError(t, models.SaveProject(ctx, db, &models.Project{ID: "P1", CustomerId: "C1", Received: decimal.NewFromInt(9)}))
	assert.True(t, decimal.NewFromInt(250).Equal(received(t, db, "P1")))

	p := &models.Project{ID: "P2", CustomerId: "C1", Received: decimal.NewFromInt(40)}
	require.NoError(t, models.CreateProject(ctx, db, p))
	assert.True(t, received(t, db, "P2").IsZero())
}
