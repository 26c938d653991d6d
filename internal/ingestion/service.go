// Package ingestion consumes published usages and persists them.
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	v1 "github.com/tollgate-lab/tollgate/internal/api/v1"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
	"github.com/tollgate-lab/tollgate/internal/queue"
	"github.com/tollgate-lab/tollgate/internal/telemetry"
)

// OpSaveUsage names the store step in IngestionError.
const OpSaveUsage = "save_usage"

// IngestionError reports a store failure while persisting a usage.
// Unwrap yields the store error unmodified.
type IngestionError struct {
	Op  string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion %s: %v", e.Op, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Publisher hands a usage payload to the message channel.
// *queue.Topic satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) (queue.Message, error)
}

type Service struct {
	store            storage.UsageStore
	publisher        Publisher
	hook             telemetry.Hook
	maxBodySizeBytes int
}

// NewService wires the consumer to store. publisher is only needed by the
// HTTP producer route and may be nil when the service only consumes.
func NewService(store storage.UsageStore, publisher Publisher, hook telemetry.Hook, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if hook == nil {
		hook = telemetry.Nop
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		publisher:        publisher,
		hook:             hook,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the producer route.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/usages", s.PublishHandler)
}

// Handle validates usage and persists it with exactly one store write.
// A usage that fails validation is returned as *v1.ValidationError and the
// store is not touched. The caller's usage is not modified.
func (s *Service) Handle(ctx context.Context, usage *v1.Usage) (id int64, err error) {
	ctx, span := s.hook.Start(ctx, "ingestion.handle")
	defer func() {
		if err != nil {
			span.Fail(err)
		}
		span.End()
	}()

	if usage == nil {
		return 0, v1.NewMalformedError(errors.New("usage is nil"))
	}

	span.SetAttr("occurred_at", usage.OccurredAt)
	span.SetAttr("plaza", usage.Plaza)
	span.SetAttr("city", usage.City)

	if err := usage.Validate(); err != nil {
		return 0, err
	}

	record := *usage
	record.ID = 0
	record.OccurredAt = record.OccurredAt.UTC()

	id, err = s.store.SaveUsage(ctx, &record)
	if err != nil {
		return 0, &IngestionError{Op: OpSaveUsage, Err: err}
	}

	span.SetAttr("usage_id", id)
	return id, nil
}

// HandleMessage is the queue.Handler for the usages topic.
// Undecodable or invalid payloads are marked permanent so they are
// dead-lettered instead of redelivered; store failures are returned as-is.
func (s *Service) HandleMessage(ctx context.Context, msg queue.Message) error {
	var usage v1.Usage
	if err := json.Unmarshal(msg.Body, &usage); err != nil {
		return queue.Permanent(v1.NewMalformedError(err))
	}

	id, err := s.Handle(ctx, &usage)
	if err != nil {
		var verr *v1.ValidationError
		if errors.As(err, &verr) {
			return queue.Permanent(err)
		}
		return err
	}

	slog.Debug("Usage persisted",
		"usage_id", id,
		"message_id", msg.ID,
		"attempt", msg.Attempt,
		"plaza", usage.Plaza)
	return nil
}
