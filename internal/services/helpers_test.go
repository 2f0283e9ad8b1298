package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/validator"
)

// nopFlusher satisfies persistence.FlushTrigger without any async machinery.
type nopFlusher struct {
	mu       sync.Mutex
	triggers int
}

func (f *nopFlusher) Trigger(models.StoreSnapshot) {
	f.mu.Lock()
	f.triggers++
	f.mu.Unlock()
}

// fakeSender records delivered message bodies, or fails when err is set.
type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, phone, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func num(v float64) *validator.Number {
	n := validator.Number(v)
	return &n
}
