package config

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/crm_backend/appctx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogErrorFields(t *testing.T) {
	logger, hook := test.NewNullLogger()

	LogError(logger, "backup", "Import", "customers", nil, errors.New("boom"))
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "boom", entry.Message)
	assert.Equal(t, "customers", entry.Data["context"])
	assert.NotContains(t, entry.Data, "data")

	LogError(logger, "backup", "Import", "customers", map[string]string{"id": "C1"}, errors.New("again"))
	assert.Contains(t, hook.LastEntry().Data, "data")
}

func TestLogErrorContextCarriesCorrelation(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx := appctx.Set(context.Background(), appctx.ContextKeyCorrelationId, "cid-1")
	ctx = appctx.Set(ctx, appctx.ContextKeyRequestPath, "/api/backup/import")

	LogErrorContext(ctx, logger, "handlers", "importSnapshot", nil, errors.New("tx failed"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "cid-1", entry.Data["correlation_id"])
	assert.Equal(t, "/api/backup/import", entry.Data["context"])
}
