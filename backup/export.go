package backup

import (
	"context"
	"encoding/json"

	"github.com/mmdatafocus/crm_backend/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Export reads every table inside one transaction and returns the snapshot.
// Embedded fields always leave in structured form; any read error aborts the export.
func (e *Engine) Export(ctx context.Context) (*Snapshot, error) {
	ctx, span := startSpan(ctx, "backup.Export")
	defer span.End()

	snap := &Snapshot{
		Version:    SnapshotVersion,
		ExportDate: e.now().UTC().Format(exportDateLayout),
		Settings:   map[string]json.RawMessage{},
	}
	log := e.logFields(ctx, "Export")
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Customers, err = models.ListModels[models.Customer](ctx, tx); err != nil {
			return errors.Wrap(err, "read customers")
		}
		if snap.Brokers, err = models.ListModels[models.Broker](ctx, tx); err != nil {
			return errors.Wrap(err, "read brokers")
		}
		if snap.Projects, err = models.ListModels[models.Project](ctx, tx); err != nil {
			return errors.Wrap(err, "read projects")
		}
		if snap.Receipts, err = models.ListModels[models.Receipt](ctx, tx); err != nil {
			return errors.Wrap(err, "read receipts")
		}
		if snap.Interactions, err = models.ListModels[models.Interaction](ctx, tx); err != nil {
			return errors.Wrap(err, "read interactions")
		}
		if snap.Inventory, err = models.ListModels[models.InventoryItem](ctx, tx); err != nil {
			return errors.Wrap(err, "read inventory")
		}
		if snap.MasterProjects, err = models.ListModels[models.MasterProject](ctx, tx); err != nil {
			return errors.Wrap(err, "read master projects")
		}
		if snap.CommissionPayments, err = models.ListModels[models.CommissionPayment](ctx, tx); err != nil {
			return errors.Wrap(err, "read commission payments")
		}
		settings, err := models.ListSettings(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "read settings")
		}
		for _, s := range settings {
			snap.Settings[s.Key] = settingValue(s.Value)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "export snapshot")
	}

	for _, p := range snap.Projects {
		p.Installments = exportSequence(log, p.ID, "installments", p.Installments)
	}
	for _, i := range snap.Interactions {
		i.Contacts = exportSequence(log, i.ID, "contacts", i.Contacts)
	}
	for _, item := range snap.Inventory {
		item.PlotFeatures = exportSequence(log, item.ID, "plotFeatures", item.PlotFeatures)
	}
	log.WithFields(logrus.Fields{
		"customers": len(snap.Customers),
		"projects":  len(snap.Projects),
		"receipts":  len(snap.Receipts),
	}).Info("snapshot exported")
	return snap, nil
}

// exportSequence decodes a stored embedded field. A value that cannot be decoded is passed
// through unchanged so the export never loses it.
func exportSequence(log *logrus.Entry, id, field string, raw datatypes.JSON) datatypes.JSON {
	seq, err := ParseEmbedded(raw).Sequence()
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"id": id, "field": field}).Warn("embedded field exported as stored")
		if json.Valid(raw) {
			return raw
		}
		b, _ := json.Marshal(string(raw))
		return b
	}
	return seq
}

func settingValue(v datatypes.JSON) json.RawMessage {
	if len(v) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(v) {
		return json.RawMessage(v)
	}
	b, _ := json.Marshal(string(v))
	return b
}
