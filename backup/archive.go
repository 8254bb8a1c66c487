package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// ObjectUploader stores one object in a bucket.
type ObjectUploader interface {
	Upload(ctx context.Context, objectName string, contentType string, data []byte) error
}

const archivePrefix = "backups/"

// Archive exports the dataset and uploads the snapshot document. It returns the object name.
func (e *Engine) Archive(ctx context.Context, uploader ObjectUploader) (string, error) {
	ctx, span := startSpan(ctx, "backup.Archive")
	defer span.End()

	snap, err := e.Export(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}
	object := fmt.Sprintf("%scrm-backup-%s.json", archivePrefix, e.now().UTC().Format("20060102T150405Z"))
	if err := uploader.Upload(ctx, object, "application/json", data); err != nil {
		return "", errors.Wrap(err, "upload snapshot")
	}
	e.logFields(ctx, "Archive").WithField("object", object).Info("snapshot archived")
	e.notify(ctx, Event{Action: EventArchived, Object: object})
	return object, nil
}
