// Package queue is the in-process message channel between usage producers and
// the ingestion consumer.
//
// Delivery is at-least-once and unordered across partitions: a handler error
// that is not Permanent is redelivered up to Options.MaxDeliveries times.
// Messages are routed to a partition by key so one key is always handled by
// the same worker. When the consumer's context is cancelled, messages still
// buffered in a partition are dead-lettered with the context error rather
// than dropped; the topic keeps no state across restarts.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tollgate-lab/tollgate/internal/core/partition"
	"github.com/tollgate-lab/tollgate/internal/telemetry"
)

const (
	defaultPartitions      = 4
	defaultBufferSize      = 1024
	defaultMaxDeliveries   = 5
	defaultRedeliveryDelay = 500 * time.Millisecond
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("topic closed")

// Message is one delivery of a published payload.
type Message struct {
	ID          uuid.UUID
	Topic       string
	Key         string
	Body        json.RawMessage
	PublishedAt time.Time
	Attempt     int // 1-based delivery attempt
}

// Handler processes one message. Returning nil acknowledges it.
type Handler func(ctx context.Context, msg Message) error

// DeadLetterFunc observes messages that will not be delivered again.
type DeadLetterFunc func(msg Message, err error)

// Options tunes a Topic. Zero values fall back to defaults.
type Options struct {
	Partitions      int
	BufferSize      int // per partition
	MaxDeliveries   int
	RedeliveryDelay time.Duration
	OnDeadLetter    DeadLetterFunc
}

func (o Options) normalized() Options {
	n := o
	if n.Partitions <= 0 {
		n.Partitions = defaultPartitions
	}
	if n.BufferSize <= 0 {
		n.BufferSize = defaultBufferSize
	}
	if n.MaxDeliveries <= 0 {
		n.MaxDeliveries = defaultMaxDeliveries
	}
	if n.RedeliveryDelay <= 0 {
		n.RedeliveryDelay = defaultRedeliveryDelay
	}
	return n
}

// Topic is a named, partitioned, buffered channel.
type Topic struct {
	name       string
	opts       Options
	partitions []chan Message

	mu     sync.RWMutex
	closed bool

	nowFn func() time.Time
}

// NewTopic creates a topic. Consumers attach with Run.
func NewTopic(name string, opts Options) *Topic {
	opts = opts.normalized()

	parts := make([]chan Message, opts.Partitions)
	for i := range parts {
		parts[i] = make(chan Message, opts.BufferSize)
	}

	return &Topic{
		name:       name,
		opts:       opts,
		partitions: parts,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Name returns the topic name.
func (t *Topic) Name() string {
	return t.name
}

// Publish enqueues body under key and returns the assigned message.
// It blocks while the target partition is full, until ctx is done.
func (t *Topic) Publish(ctx context.Context, key string, body []byte) (Message, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return Message{}, ErrClosed
	}

	msg := Message{
		ID:          uuid.New(),
		Topic:       t.name,
		Key:         key,
		Body:        append(json.RawMessage(nil), body...),
		PublishedAt: t.nowFn(),
	}

	select {
	case t.partitions[partition.For(key, len(t.partitions))] <- msg:
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}

	telemetry.MessagesPublished.WithLabelValues(t.name).Inc()
	telemetry.QueueDepth.WithLabelValues(t.name).Set(float64(t.Len()))
	return msg, nil
}

// Len returns the number of buffered messages across all partitions.
func (t *Topic) Len() int {
	n := 0
	for _, p := range t.partitions {
		n += len(p)
	}
	return n
}

// Close stops accepting messages. Run returns once buffered messages are handled.
// Close is idempotent.
func (t *Topic) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for _, p := range t.partitions {
		close(p)
	}
}

// Run attaches handler with one worker per partition and blocks until the
// topic is closed and drained, or ctx is done. On ctx cancellation the
// remaining buffered messages go to OnDeadLetter.
func (t *Topic) Run(ctx context.Context, handler Handler) error {
	slog.Info("[Queue] Consumer attached",
		"topic", t.name,
		"partitions", len(t.partitions),
		"max_deliveries", t.opts.MaxDeliveries)

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range t.partitions {
		i, p := i, p
		g.Go(func() error {
			return t.consume(gctx, i, p, handler)
		})
	}

	err := g.Wait()
	slog.Info("[Queue] Consumer detached", "topic", t.name)
	return err
}

func (t *Topic) consume(ctx context.Context, idx int, in <-chan Message, handler Handler) error {
	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			t.deliver(ctx, msg, handler)
			telemetry.QueueDepth.WithLabelValues(t.name).Set(float64(t.Len()))
		case <-ctx.Done():
			slog.Info("[Queue] Worker stopping (context cancelled)",
				"topic", t.name,
				"partition", idx,
				"pending", len(in))
			t.discard(ctx, in)
			return nil
		}
	}
}

// discard dead-letters whatever is still buffered in the partition without
// waiting for further publishes.
func (t *Topic) discard(ctx context.Context, in <-chan Message) {
	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return
			}
			t.deadLetter(msg, ctx.Err())
		default:
			telemetry.QueueDepth.WithLabelValues(t.name).Set(float64(t.Len()))
			return
		}
	}
}

// deliver hands msg to handler, redelivering on transient failures.
func (t *Topic) deliver(ctx context.Context, msg Message, handler Handler) {
	for attempt := 1; ; attempt++ {
		msg.Attempt = attempt

		err := handler(ctx, msg)
		if err == nil {
			telemetry.MessagesHandled.WithLabelValues(t.name, "ok").Inc()
			return
		}

		if IsPermanent(err) || attempt >= t.opts.MaxDeliveries {
			t.deadLetter(msg, err)
			return
		}

		telemetry.MessagesHandled.WithLabelValues(t.name, "retry").Inc()
		slog.Warn("[Queue] Handler failed, redelivering",
			"topic", t.name,
			"message_id", msg.ID,
			"attempt", attempt,
			"error", err)

		timer := time.NewTimer(t.opts.RedeliveryDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			t.deadLetter(msg, errors.Join(err, ctx.Err()))
			return
		}
	}
}

func (t *Topic) deadLetter(msg Message, err error) {
	telemetry.MessagesHandled.WithLabelValues(t.name, "dead_letter").Inc()
	slog.Error("[Queue] Message dead-lettered",
		"topic", t.name,
		"message_id", msg.ID,
		"key", msg.Key,
		"attempt", msg.Attempt,
		"permanent", IsPermanent(err),
		"error", err)

	if t.opts.OnDeadLetter != nil {
		t.opts.OnDeadLetter(msg, err)
	}
}
