package persistence

import (
	"context"
	"errors"

	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/utils"
)

// FallbackAdapter composes a remote backend with the local snapshot file.
//
// Load tries the remote location first. When nothing is stored there yet, it
// seeds the remote from the local file. When the remote connection fails
// outright, it logs the failure and falls back to the local file; the error
// is never fatal.
//
// Save writes both locations. A remote write failure is logged only, so a
// mutation can succeed for the client even when remote durability failed.
type FallbackAdapter struct {
	remote Adapter
	local  Adapter
	logger utils.Logger
}

func NewFallbackAdapter(remote, local Adapter, logger utils.Logger) *FallbackAdapter {
	return &FallbackAdapter{remote: remote, local: local, logger: logger}
}

func (f *FallbackAdapter) Load(ctx context.Context) (models.StoreSnapshot, error) {
	snap, err := f.remote.Load(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrNoSnapshot) {
		f.logger.Warn("remote snapshot load failed, falling back to local file", "error", err)
		return f.local.Load(ctx)
	}

	// Remote is empty: seed it from the local file when one exists.
	snap, err = f.local.Load(ctx)
	if err != nil {
		return models.StoreSnapshot{}, err
	}
	if serr := f.remote.Save(ctx, snap); serr != nil {
		f.logger.Warn("seeding remote snapshot failed", "error", serr)
	}
	return snap, nil
}

func (f *FallbackAdapter) Save(ctx context.Context, snap models.StoreSnapshot) error {
	if err := f.remote.Save(ctx, snap); err != nil {
		f.logger.Error("remote snapshot save failed", "error", err)
	}
	return f.local.Save(ctx, snap)
}
