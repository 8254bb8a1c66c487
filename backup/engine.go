package backup

import (
	"context"
	"time"

	"github.com/mmdatafocus/crm_backend/config"
	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/mmdatafocus/crm_backend/backup")

// EventPublisher receives a message after each completed backup operation.
type EventPublisher interface {
	Publish(ctx context.Context, payload any, attributes map[string]string) error
}

// Engine moves the whole dataset to and from a snapshot document.
type Engine struct {
	db     *gorm.DB
	logger *logrus.Logger
	events EventPublisher
	now    func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:     db,
		logger: config.GetLogger(),
		now:    time.Now,
	}
}

// SetPublisher turns on event notification. A nil publisher turns it off.
func (e *Engine) SetPublisher(p EventPublisher) {
	e.events = p
}

func (e *Engine) logFields(ctx context.Context, op string) *logrus.Entry {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	return e.logger.WithFields(logrus.Fields{
		"module":         "backup",
		"operation":      op,
		"correlation_id": correlationId,
	})
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("correlation_id", correlationId)),
	)
}
