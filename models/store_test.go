package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertModelInsertsThenOverwrites(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, models.UpsertModel(ctx, db, &models.Customer{ID: "C1", Name: "First", Notes: "a"}))
	first, err := models.GetModel[models.Customer](ctx, db, "C1")
	require.NoError(t, err)

	require.NoError(t, models.UpsertModel(ctx, db, &models.Customer{ID: "C1", Name: "Second", Status: models.ContactStatusInactive}))
	second, err := models.GetModel[models.Customer](ctx, db, "C1")
	require.NoError(t, err)

	assert.Equal(t, "Second", second.Name)
	assert.Equal(t, "", second.Notes)
	assert.Equal(t, models.ContactStatusInactive, second.Status)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestUpsertModelRequiresId(t *testing.T) {
	db := testutil.NewDB(t)
	assert.Error(t, models.UpsertModel(context.Background(), db, &models.Customer{Name: "x"}))
}

func TestDanglingWeakReferenceIsNotAnError(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	gone := "B-deleted"

	require.NoError(t, models.UpsertModel(ctx, db, &models.Customer{ID: "C1", Name: "Ali", LinkedBrokerId: &gone}))
	c, err := models.GetModel[models.Customer](ctx, db, "C1")
	require.NoError(t, err)
	require.NotNil(t, c.LinkedBrokerId)

	_, err = models.GetModel[models.Broker](ctx, db, *c.LinkedBrokerId)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestSettings(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, models.UpsertSetting(ctx, db, &models.Setting{Key: "b", Value: []byte(`1`)}))
	require.NoError(t, models.UpsertSetting(ctx, db, &models.Setting{Key: "a", Value: []byte(`"x"`)}))
	require.NoError(t, models.UpsertSetting(ctx, db, &models.Setting{Key: "b", Value: []byte(`{"n":2}`)}))

	list, err := models.ListSettings(ctx, db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Key)
	assert.JSONEq(t, `{"n":2}`, string(list[1].Value))

	_, err = models.GetSetting(ctx, db, "zzz")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}
