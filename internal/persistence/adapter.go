package persistence

import (
	"context"
	"errors"

	"github.com/smartapp-edu/records-service/internal/models"
)

// ErrNoSnapshot means the backend holds no prior state. Callers fail open to
// an empty store.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Adapter loads store state at startup and writes it after mutations.
type Adapter interface {
	Load(ctx context.Context) (models.StoreSnapshot, error)
	Save(ctx context.Context, snap models.StoreSnapshot) error
}

// FlushTrigger is the write side handed to the services: fire-and-forget, a
// failed save is only observable through the log.
type FlushTrigger interface {
	Trigger(snap models.StoreSnapshot)
}
