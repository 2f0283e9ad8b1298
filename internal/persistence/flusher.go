package persistence

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/smartapp-edu/records-service/internal/models"
)

const flushTopic = "store.flush"

const saveTimeout = 15 * time.Second

// Flusher persists snapshots asynchronously. Services publish the
// post-mutation snapshot and move on; a detached subscriber applies the save
// and logs failures. A mutation therefore succeeds for the client before
// durability is confirmed, and a durability failure is never retried or
// surfaced.
type Flusher struct {
	adapter Adapter
	pubSub  *gochannel.GoChannel
	logger  *slog.Logger
	done    chan struct{}
}

func NewFlusher(adapter Adapter, logger *slog.Logger) *Flusher {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &Flusher{
		adapter: adapter,
		pubSub:  pubSub,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Run starts the subscriber. The returned error only covers subscription
// setup; save failures are logged, never returned.
func (f *Flusher) Run(ctx context.Context) error {
	msgs, err := f.pubSub.Subscribe(ctx, flushTopic)
	if err != nil {
		return err
	}
	go func() {
		defer close(f.done)
		for msg := range msgs {
			f.handle(msg)
		}
	}()
	return nil
}

func (f *Flusher) handle(msg *message.Message) {
	defer msg.Ack()

	var snap models.StoreSnapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		f.logger.Error("flusher received malformed snapshot", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := f.adapter.Save(ctx, snap); err != nil {
		f.logger.Error("snapshot save failed", "error", err)
	}
}

// Trigger queues a snapshot for persistence and returns immediately.
func (f *Flusher) Trigger(snap models.StoreSnapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		f.logger.Error("snapshot encode failed", "error", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.pubSub.Publish(flushTopic, msg); err != nil {
		f.logger.Error("snapshot flush publish failed", "error", err)
	}
}

// Close stops accepting snapshots, waits for in-flight saves to drain, then
// writes one final snapshot synchronously.
func (f *Flusher) Close(ctx context.Context, final models.StoreSnapshot) error {
	if err := f.pubSub.Close(); err != nil {
		f.logger.Warn("flusher pubsub close failed", "error", err)
	}
	select {
	case <-f.done:
	case <-ctx.Done():
		f.logger.Warn("flusher drain interrupted", "error", ctx.Err())
	}
	return f.adapter.Save(ctx, final)
}
