package backup

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImportOptions struct {
	// RecomputeReceived rebuilds Project.Received from the receipt set for every project the
	// import touched, instead of adding each imported receipt on top of the stored value.
	RecomputeReceived bool
}

// importRun carries the state of one Import call.
type importRun struct {
	ctx     context.Context
	tx      *gorm.DB
	doc     *ImportDocument
	opts    ImportOptions
	stats   *ImportStats
	log     *logrus.Entry
	touched []string
	seen    utils.IdSet
}

// entityImport describes how one entity's records are admitted.
type entityImport[T models.Entity] struct {
	name    string
	records []json.RawMessage
	fields  aliasTable
	stats   *EntityStats
	// check runs on the decoded row before it is written. A non-empty skip reason skips the
	// record; an error counts it as failed.
	check func(row *T) (skip string, err error)
	// after runs inside the record's savepoint once the row is stored.
	after func(tx *gorm.DB, row *T) error
}

// Import merges a snapshot into the store. Records are upserted on id in dependency order;
// each record is isolated by a savepoint so one bad row never aborts the run. Only
// transaction-level failures return an error, and then nothing is committed.
func (e *Engine) Import(ctx context.Context, doc *ImportDocument, opts ImportOptions) (*ImportStats, error) {
	if doc == nil {
		return nil, ErrEmptySnapshot
	}
	ctx, span := startSpan(ctx, "backup.Import")
	defer span.End()

	log := e.logFields(ctx, "Import")
	stats := &ImportStats{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &importRun{
			ctx:   ctx,
			tx:    tx,
			doc:   doc,
			opts:  opts,
			stats: stats,
			log:   log,
			seen:  utils.IdSet{},
		}
		steps := []func() error{
			run.customers,
			run.brokers,
			run.projects,
			run.receipts,
			run.interactions,
			run.inventory,
			run.masterProjects,
			run.commissionPayments,
			run.settings,
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return run.recompute()
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "import snapshot")
	}
	span.SetAttributes(
		attribute.Int("backup.imported", stats.Imported()),
		attribute.Int("backup.errors", stats.Errors()),
	)
	log.WithField("stats", stats).Info("snapshot imported")
	e.notify(ctx, Event{Action: EventImported, Stats: stats})
	return stats, nil
}

func importEntity[T models.Entity](run *importRun, step entityImport[T]) error {
	for i, raw := range step.records {
		log := run.log.WithFields(logrus.Fields{"entity": step.name, "index": i})

		rec, err := parseRecord(raw)
		if err != nil {
			step.stats.Errors++
			log.WithError(err).Warn("unreadable record")
			continue
		}
		rec = step.fields.canonicalize(rec)
		if rec.id() == "" {
			step.stats.Skipped++
			log.Warn("record without id skipped")
			continue
		}
		log = log.WithField("id", rec.id())

		var row T
		if err := rec.decode(&row); err != nil {
			step.stats.Errors++
			log.WithError(err).Warn("record does not match its entity")
			continue
		}
		if step.check != nil {
			skip, err := step.check(&row)
			if err != nil {
				step.stats.Errors++
				log.WithError(err).Warn("record rejected")
				continue
			}
			if skip != "" {
				step.stats.Skipped++
				log.Warn(skip)
				continue
			}
		}

		recordErr, txErr := withSavepoint(run.ctx, run.tx, savepointName(step.name, i), func(tx *gorm.DB) error {
			if err := models.UpsertModel(run.ctx, tx, &row); err != nil {
				return err
			}
			if step.after != nil {
				return step.after(tx, &row)
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		if recordErr != nil {
			step.stats.Errors++
			log.WithError(recordErr).Warn("record not stored")
			continue
		}
		step.stats.Imported++
	}
	return nil
}

func (r *importRun) customers() error {
	return importEntity(r, entityImport[models.Customer]{
		name:    "customers",
		records: r.doc.Customers,
		fields:  customerFields,
		stats:   &r.stats.Customers,
	})
}

func (r *importRun) brokers() error {
	return importEntity(r, entityImport[models.Broker]{
		name:    "brokers",
		records: r.doc.Brokers,
		fields:  brokerFields,
		stats:   &r.stats.Brokers,
	})
}

func (r *importRun) projects() error {
	customerIds, err := utils.ResourceIdSet[models.Customer](r.ctx, r.tx)
	if err != nil {
		return errors.Wrap(err, "load customer ids")
	}
	brokerIds, err := utils.ResourceIdSet[models.Broker](r.ctx, r.tx)
	if err != nil {
		return errors.Wrap(err, "load broker ids")
	}
	return importEntity(r, entityImport[models.Project]{
		name:    "projects",
		records: r.doc.Projects,
		fields:  projectFields,
		stats:   &r.stats.Projects,
		check: func(p *models.Project) (string, error) {
			if isBlankRef(p.CustomerId) {
				return "project without customer skipped", nil
			}
			if !customerIds.Has(p.CustomerId) {
				return "project customer not found", nil
			}
			if p.BrokerId != nil && !brokerIds.Has(*p.BrokerId) {
				r.log.WithFields(logrus.Fields{"id": p.ID, "broker_id": *p.BrokerId}).Warn("unknown project broker cleared")
				p.BrokerId = nil
			}
			seq, err := ParseEmbedded(p.Installments).Sequence()
			if err != nil {
				return "", errors.Wrap(err, "installments")
			}
			p.Installments = seq
			return "", nil
		},
	})
}

func (r *importRun) receipts() error {
	projectIds, err := utils.ResourceIdSet[models.Project](r.ctx, r.tx)
	if err != nil {
		return errors.Wrap(err, "load project ids")
	}
	return importEntity(r, entityImport[models.Receipt]{
		name:    "receipts",
		records: r.doc.Receipts,
		fields:  receiptFields,
		stats:   &r.stats.Receipts,
		check: func(rc *models.Receipt) (string, error) {
			if rc.ProjectId != nil && !projectIds.Has(*rc.ProjectId) {
				return "receipt project not found", nil
			}
			return "", nil
		},
		after: func(tx *gorm.DB, rc *models.Receipt) error {
			if rc.ProjectId == nil {
				return nil
			}
			if r.opts.RecomputeReceived {
				r.touch(*rc.ProjectId)
				return nil
			}
			return models.AdjustProjectReceived(r.ctx, tx, *rc.ProjectId, rc.Amount)
		},
	})
}

func (r *importRun) interactions() error {
	return importEntity(r, entityImport[models.Interaction]{
		name:    "interactions",
		records: r.doc.Interactions,
		fields:  interactionFields,
		stats:   &r.stats.Interactions,
		check: func(i *models.Interaction) (string, error) {
			i.Contacts = r.lenientSequence(i.ID, "contacts", i.Contacts)
			return "", nil
		},
	})
}

func (r *importRun) inventory() error {
	return importEntity(r, entityImport[models.InventoryItem]{
		name:    "inventory",
		records: r.doc.Inventory,
		fields:  inventoryFields,
		stats:   &r.stats.Inventory,
		check: func(item *models.InventoryItem) (string, error) {
			item.PlotFeatures = r.lenientSequence(item.ID, "plotFeatures", item.PlotFeatures)
			return "", nil
		},
	})
}

func (r *importRun) masterProjects() error {
	return importEntity(r, entityImport[models.MasterProject]{
		name:    "masterProjects",
		records: r.doc.MasterProjects,
		fields:  masterProjectFields,
		stats:   &r.stats.MasterProjects,
	})
}

func (r *importRun) commissionPayments() error {
	return importEntity(r, entityImport[models.CommissionPayment]{
		name:    "commissionPayments",
		records: r.doc.CommissionPayments,
		fields:  commissionPaymentFields,
		stats:   &r.stats.CommissionPayments,
	})
}

func (r *importRun) settings() error {
	entries, err := r.doc.settingEntries()
	if err != nil {
		r.stats.Settings.Errors++
		r.log.WithError(err).Warn("settings ignored")
		return nil
	}
	for i, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			r.stats.Settings.Skipped++
			continue
		}
		value := entry.Value
		if isNull(value) {
			value = json.RawMessage("null")
		}
		setting := &models.Setting{Key: key, Value: datatypes.JSON(value)}
		recordErr, txErr := withSavepoint(r.ctx, r.tx, savepointName("settings", i), func(tx *gorm.DB) error {
			return models.UpsertSetting(r.ctx, tx, setting)
		})
		if txErr != nil {
			return txErr
		}
		if recordErr != nil {
			r.stats.Settings.Errors++
			r.log.WithError(recordErr).WithField("key", key).Warn("setting not stored")
			continue
		}
		r.stats.Settings.Imported++
	}
	return nil
}

func (r *importRun) lenientSequence(id, field string, raw datatypes.JSON) datatypes.JSON {
	seq, ok := ParseEmbedded(raw).SequenceOrEmpty()
	if !ok {
		r.log.WithFields(logrus.Fields{"id": id, "field": field}).Warn("malformed embedded field replaced with empty list")
	}
	return seq
}

func (r *importRun) touch(projectId string) {
	if r.seen.Has(projectId) {
		return
	}
	r.seen.Add(projectId)
	r.touched = append(r.touched, projectId)
}

func (r *importRun) recompute() error {
	for _, projectId := range r.touched {
		if err := models.RecomputeProjectReceived(r.ctx, r.tx, projectId); err != nil {
			return errors.Wrapf(err, "recompute received for project %s", projectId)
		}
	}
	return nil
}
