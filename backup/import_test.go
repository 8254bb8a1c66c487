package backup_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func decodeDoc(t *testing.T, body string) *backup.ImportDocument {
	t.Helper()
	doc, err := backup.DecodeImportDocument([]byte(body))
	require.NoError(t, err)
	return doc
}

func runImport(t *testing.T, db *gorm.DB, body string, opts backup.ImportOptions) *backup.ImportStats {
	t.Helper()
	stats, err := backup.NewEngine(db).Import(context.Background(), decodeDoc(t, body), opts)
	require.NoError(t, err)
	return stats
}

func projectReceived(t *testing.T, db *gorm.DB, id string) decimal.Decimal {
	t.Helper()
	p, err := models.GetModel[models.Project](context.Background(), db, id)
	require.NoError(t, err)
	return p.Received
}

func TestImport_ReferentialFilteringAndReceivedAggregate(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [{"id": "C1", "name": "A"}],
		"projects": [
			{"id": "P1", "customerId": "C1", "sale": 1000, "received": 0},
			{"id": "P2", "customerId": "C-missing", "sale": 500}
		],
		"receipts": [{"id": "R1", "projectId": "P1", "amount": 200}]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Customers)
	assert.Equal(t, backup.EntityStats{Imported: 1, Skipped: 1}, stats.Projects)
	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Receipts)
	assert.True(t, decimal.NewFromInt(200).Equal(projectReceived(t, db, "P1")))

	_, err := models.GetModel[models.Project](context.Background(), db, "P2")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestImport_DanglingWeakReferencesAreStored(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	stats := runImport(t, db, `{
		"customers": [{"id": "C1", "name": "A"}],
		"projects": [{"id": "P1", "customerId": "C1", "sale": 1000, "received": 0}],
		"receipts": [{"id": "R1", "customerId": "C-gone", "projectId": "P1", "amount": 200}],
		"commissionPayments": [{"id": "CP1", "projectId": "P-gone", "recipientId": "B-gone", "amount": 20}]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Receipts)
	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.CommissionPayments)
	assert.True(t, decimal.NewFromInt(200).Equal(projectReceived(t, db, "P1")))

	r, err := models.GetModel[models.Receipt](ctx, db, "R1")
	require.NoError(t, err)
	require.NotNil(t, r.CustomerId)
	assert.Equal(t, "C-gone", *r.CustomerId)
	cp, err := models.GetModel[models.CommissionPayment](ctx, db, "CP1")
	require.NoError(t, err)
	require.NotNil(t, cp.ProjectId)
	assert.Equal(t, "P-gone", *cp.ProjectId)
}

func TestImport_ProjectCustomerPlaceholdersAreSkipped(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [{"id": "C1", "name": "A"}],
		"projects": [
			{"id": "P1"},
			{"id": "P2", "customerId": "null"},
			{"id": "P3", "customerId": "undefined"},
			{"id": "P4", "customerId": "  "},
			{"id": "P5", "customerId": " C1 "}
		]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 1, Skipped: 4}, stats.Projects)
	p, err := models.GetModel[models.Project](context.Background(), db, "P5")
	require.NoError(t, err)
	assert.Equal(t, "C1", p.CustomerId)
}

func TestImport_UnknownBrokerIsCleared(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [{"id": "C1", "name": "A"}],
		"brokers": [{"id": "B1", "name": "Broker"}],
		"projects": [
			{"id": "P1", "customerId": "C1", "brokerId": "B-missing"},
			{"id": "P2", "customerId": "C1", "brokerId": "B1"}
		]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 2}, stats.Projects)
	p1, err := models.GetModel[models.Project](context.Background(), db, "P1")
	require.NoError(t, err)
	assert.Nil(t, p1.BrokerId)
	p2, err := models.GetModel[models.Project](context.Background(), db, "P2")
	require.NoError(t, err)
	require.NotNil(t, p2.BrokerId)
	assert.Equal(t, "B1", *p2.BrokerId)
}

// A store-level failure on one record must not undo its siblings.
func TestImport_FailedRecordIsIsolated(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [
			{"id": "C1", "name": "A"},
			{"id": "C2", "name": "B", "type": "vendor"},
			{"id": "C3", "name": "C"}
		]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 2, Errors: 1}, stats.Customers)
	customers, err := models.ListModels[models.Customer](context.Background(), db)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "C1", customers[0].ID)
	assert.Equal(t, "C3", customers[1].ID)
}

func TestImport_UnreadableAndIdlessRecords(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [42, {"name": "no id"}, {"id": "C1", "name": "A", "createdAt": "not a date"}, {"id": "C2", "name": "B"}]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 1, Skipped: 1, Errors: 2}, stats.Customers)
}

func TestImport_AcceptsSnakeCaseAndPrefersCamel(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [{"id": "C1", "name": "A", "linked_broker_id": "B1"}],
		"projects": [{
			"id": "P1",
			"customer_id": "C1",
			"plot_number": "12-A",
			"plotNumber": "7",
			"start_date": "2024-01-01",
			"sale": "1500.50"
		}]
	}`, backup.ImportOptions{})

	require.Equal(t, backup.EntityStats{Imported: 1}, stats.Projects)
	ctx := context.Background()
	c, err := models.GetModel[models.Customer](ctx, db, "C1")
	require.NoError(t, err)
	require.NotNil(t, c.LinkedBrokerId)
	assert.Equal(t, "B1", *c.LinkedBrokerId)

	p, err := models.GetModel[models.Project](ctx, db, "P1")
	require.NoError(t, err)
	assert.Equal(t, "C1", p.CustomerId)
	assert.Equal(t, "7", p.PlotNumber)
	assert.Equal(t, "2024-01-01", p.StartDate)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(p.Sale))
}

func TestImport_NumericIdsBecomeStrings(t *testing.T) {
	db := testutil.NewDB(t)

	stats := runImport(t, db, `{
		"customers": [{"id": 1700000000001, "name": "A"}],
		"projects": [{"id": 1700000000002, "customerId": 1700000000001}]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Customers)
	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Projects)
}

func TestImport_EmbeddedFields(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	stats := runImport(t, db, `{
		"customers": [{"id": "C1", "name": "A"}],
		"projects": [
			{"id": "P1", "customerId": "C1", "installments": "[{\"number\":1,\"amount\":100}]"},
			{"id": "P2", "customerId": "C1", "installments": [{"number": 1, "amount": 50}]},
			{"id": "P3", "customerId": "C1", "installments": "{broken"}
		],
		"interactions": [
			{"id": "I1", "contactType": "customer", "customerId": "C1", "contacts": "not json"},
			{"id": "I2", "contactType": "customer", "customerId": "C1", "contacts": "[\"0300\"]"}
		],
		"inventory": [{"id": "INV1", "plot_features": ""}]
	}`, backup.ImportOptions{})

	assert.Equal(t, backup.EntityStats{Imported: 2, Errors: 1}, stats.Projects)
	assert.Equal(t, backup.EntityStats{Imported: 2}, stats.Interactions)
	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Inventory)

	p1, err := models.GetModel[models.Project](ctx, db, "P1")
	require.NoError(t, err)
	list, err := p1.InstallmentList()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(list[0].Amount))

	i1, err := models.GetModel[models.Interaction](ctx, db, "I1")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(i1.Contacts))
	i2, err := models.GetModel[models.Interaction](ctx, db, "I2")
	require.NoError(t, err)
	assert.JSONEq(t, `["0300"]`, string(i2.Contacts))

	item, err := models.GetModel[models.InventoryItem](ctx, db, "INV1")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(item.PlotFeatures))
}

func TestImport_SettingsMappingAndList(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	stats := runImport(t, db, `{"settings": {"theme": "dark", "currency": {"code": "PKR"}, "": 1}}`, backup.ImportOptions{})
	assert.Equal(t, backup.EntityStats{Imported: 2, Skipped: 1}, stats.Settings)

	theme, err := models.GetSetting(ctx, db, "theme")
	require.NoError(t, err)
	assert.JSONEq(t, `"dark"`, string(theme.Value))

	stats = runImport(t, db, `{"settings": [{"key": "theme", "value": "light"}]}`, backup.ImportOptions{})
	assert.Equal(t, backup.EntityStats{Imported: 1}, stats.Settings)
	theme, err = models.GetSetting(ctx, db, "theme")
	require.NoError(t, err)
	assert.JSONEq(t, `"light"`, string(theme.Value))
}

// An exported project already carries the sum of its receipts, so importing it together with
// those receipts counts them twice unless the aggregate is recomputed.
func TestImport_ReceivedDoubleCountingAndRecompute(t *testing.T) {
	body := `{
		"customers": [{"id": "C1", "name": "A"}],
		"projects": [{"id": "P1", "customerId": "C1", "received": 500}],
		"receipts": [
			{"id": "R1", "projectId": "P1", "amount": 200},
			{"id": "R2", "projectId": "P1", "amount": 300},
			{"id": "R3", "projectId": "P-missing", "amount": 999}
		]
	}`

	t.Run("incremental", func(t *testing.T) {
		db := testutil.NewDB(t)
		stats := runImport(t, db, body, backup.ImportOptions{})
		assert.Equal(t, backup.EntityStats{Imported: 2, Skipped: 1}, stats.Receipts)
		assert.True(t, decimal.NewFromInt(1000).Equal(projectReceived(t, db, "P1")))
	})

	t.Run("recompute", func(t *testing.T) {
		db := testutil.NewDB(t)
		opts := backup.ImportOptions{RecomputeReceived: true}
		runImport(t, db, body, opts)
		assert.True(t, decimal.NewFromInt(500).Equal(projectReceived(t, db, "P1")))
		runImport(t, db, body, opts)
		assert.True(t, decimal.NewFromInt(500).Equal(projectReceived(t, db, "P1")))
	})
}

func TestImport_UpsertOverwritesExisting(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	runImport(t, db, `{"brokers": [{"id": "B1", "name": "Old", "commissionRate": 2.5}]}`, backup.ImportOptions{})
	runImport(t, db, `{"brokers": [{"id": "B1", "name": "New", "commission_rate": 3}]}`, backup.ImportOptions{})

	b, err := models.GetModel[models.Broker](ctx, db, "B1")
	require.NoError(t, err)
	assert.Equal(t, "New", b.Name)
	assert.True(t, decimal.NewFromInt(3).Equal(b.CommissionRate))

	brokers, err := models.ListModels[models.Broker](ctx, db)
	require.NoError(t, err)
	assert.Len(t, brokers, 1)
}

func TestImport_BrokerCommissionRateDefaults(t *testing.T) {
	db := testutil.NewDB(t)

	runImport(t, db, `{"brokers": [{"id": "B1", "name": "Broker"}]}`, backup.ImportOptions{})
	b, err := models.GetModel[models.Broker](context.Background(), db, "B1")
	require.NoError(t, err)
	assert.True(t, models.DefaultCommissionRate.Equal(b.CommissionRate))
}

func TestDecodeImportDocument(t *testing.T) {
	for _, body := range []string{"", "  ", "null"} {
		_, err := backup.DecodeImportDocument([]byte(body))
		assert.ErrorIs(t, err, backup.ErrEmptySnapshot, "body %q", body)
	}

	_, err := backup.DecodeImportDocument([]byte(`{"customers": {}}`))
	assert.Error(t, err)

	doc, err := backup.DecodeImportDocument([]byte(`{"version": "1.0"}`))
	require.NoError(t, err)
	assert.Equal(t, "1.0", doc.Version)
}

func TestImport_NilDocument(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := backup.NewEngine(db).Import(context.Background(), nil, backup.ImportOptions{})
	assert.ErrorIs(t, err, backup.ErrEmptySnapshot)
}

type recordingPublisher struct {
	events []backup.Event
}

func (p *recordingPublisher) Publish(_ context.Context, payload any, _ map[string]string) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var ev backup.Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return err
	}
	p.events = append(p.events, ev)
	return nil
}

func TestImport_PublishesEvent(t *testing.T) {
	db := testutil.NewDB(t)
	pub := &recordingPublisher{}
	engine := backup.NewEngine(db)
	engine.SetPublisher(pub)

	_, err := engine.Import(context.Background(), decodeDoc(t, `{"customers": [{"id": "C1", "name": "A"}]}`), backup.ImportOptions{})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, backup.EventImported, pub.events[0].Action)
	require.NotNil(t, pub.events[0].Stats)
	assert.Equal(t, 1, pub.events[0].Stats.Customers.Imported)
	assert.NotEmpty(t, pub.events[0].At)
}
