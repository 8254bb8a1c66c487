package config

import (
	"context"
	"os"
	"strings"

	"github.com/mmdatafocus/crm_backend/appctx"
	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func GetLogger() *logrus.Logger {
	return logg
}

// LOG_LEVEL accepts any logrus level name; unknown values keep info.
func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	logg.SetOutput(os.Stdout)
	logg.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL"))); err == nil {
		logg.SetLevel(lvl)
	}
}

func errorFields(moduleName string, funcName string, where string, data any) logrus.Fields {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  where,
	}
	if data != nil {
		fields["data"] = data
	}
	return fields
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, where string, data any, err error) {
	logger.WithFields(errorFields(moduleName, funcName, where, data)).Error(err.Error())
}

// LogErrorContext is LogError plus the correlation id and request path carried by ctx.
func LogErrorContext(ctx context.Context, logger *logrus.Logger, moduleName string, funcName string, data any, err error) {
	path, _ := appctx.GetString(ctx, appctx.ContextKeyRequestPath)
	fields := errorFields(moduleName, funcName, path, data)
	if id, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok {
		fields["correlation_id"] = id
	}
	logger.WithFields(fields).Error(err.Error())
}
