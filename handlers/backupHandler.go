package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/crm_backend/backup"
	"github.com/sirupsen/logrus"
)

const (
	backupLockKey     = "lock:backup"
	backupLockTTL     = 5 * time.Minute
	backupLockBackoff = 500 * time.Millisecond
	backupLockRetries = 20 // about 10s
	workbookMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) exportSnapshot(c *gin.Context) {
	snap, err := s.engine().Export(c.Request.Context())
	if err != nil {
		s.failWith(c, err)
		return
	}
	ok(c, http.StatusOK, snap)
}

func (s *Server) exportWorkbook(c *gin.Context) {
	snap, err := s.engine().Export(c.Request.Context())
	if err != nil {
		s.failWith(c, err)
		return
	}
	var buf bytes.Buffer
	if err := backup.WriteWorkbook(&buf, snap); err != nil {
		s.failWith(c, err)
		return
	}
	name := fmt.Sprintf("crm-backup-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, workbookMIME, buf.Bytes())
}

func (s *Server) importSnapshot(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	doc, err := backup.DecodeImportDocument(body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	var opts backup.ImportOptions
	if v := c.Query("recompute_received"); v != "" {
		recompute, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid recompute_received: %q", v))
			return
		}
		opts.RecomputeReceived = recompute
	}

	ctx := c.Request.Context()
	release := s.obtainBackupLock(ctx)
	defer release()

	stats, err := s.engine().Import(ctx, doc, opts)
	if err != nil {
		s.failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Import completed: %d records imported, %d errors", stats.Imported(), stats.Errors()),
		Stats:   stats,
	})
}

func (s *Server) clearData(c *gin.Context) {
	ctx := c.Request.Context()
	release := s.obtainBackupLock(ctx)
	defer release()

	deleted, err := s.engine().Clear(ctx)
	if err != nil {
		s.failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "All data cleared successfully",
		Data:    deleted,
	})
}

func (s *Server) archiveSnapshot(c *gin.Context) {
	d := s.deps.Load()
	if d.Uploader == nil {
		s.fail(c, http.StatusServiceUnavailable, fmt.Errorf("archive storage is not configured"))
		return
	}
	object, err := s.engine().Archive(c.Request.Context(), d.Uploader)
	if err != nil {
		s.failWith(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"bucket": d.Bucket, "object": object})
}

// obtainBackupLock takes the shared backup lock when Redis is configured. The lock only
// serializes well-behaved instances: on any failure the operation goes ahead without it.
func (s *Server) obtainBackupLock(ctx context.Context) (release func()) {
	locker := s.deps.Load().Locker
	if locker == nil {
		return func() {}
	}
	log := s.logger.WithFields(logrus.Fields{"field": "obtainBackupLock", "key": backupLockKey})
	lock, err := locker.Obtain(ctx, backupLockKey, backupLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(backupLockBackoff), backupLockRetries),
	})
	if err == redislock.ErrNotObtained {
		log.Warn("could not obtain redis lock; proceeding without redis lock")
		return func() {}
	} else if err != nil {
		log.Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
		return func() {}
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && err != redislock.ErrLockNotHeld {
			log.Warn("failed to release redis lock: " + err.Error())
		}
	}
}
