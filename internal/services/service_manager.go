package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/persistence"
	"github.com/smartapp-edu/records-service/internal/sms"
	"github.com/smartapp-edu/records-service/internal/store"
	"github.com/smartapp-edu/records-service/internal/validator"
)

// serviceManager wires the services over one shared store and flusher.
type serviceManager struct {
	store     *store.Store
	adapter   persistence.Adapter
	flusher   *persistence.Flusher
	logger    *slog.Logger
	validator *validator.Validator

	accountService      AccountService
	markService         MarkService
	importExportService ImportExportService

	initialized bool
	mu          sync.Mutex
}

func NewServiceManager(
	st *store.Store,
	adapter persistence.Adapter,
	flusher *persistence.Flusher,
	policy auth.Policy,
	sender sms.Sender,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	return &serviceManager{
		store:               st,
		adapter:             adapter,
		flusher:             flusher,
		logger:              logger,
		validator:           v,
		accountService:      NewAccountService(st, flusher, sender, logger, v),
		markService:         NewMarkService(st, flusher, policy, logger, v),
		importExportService: NewImportExportService(st, flusher, logger),
	}
}

func (m *serviceManager) Account() AccountService           { return m.accountService }
func (m *serviceManager) Mark() MarkService                 { return m.markService }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExportService }

// Initialize restores the store from the persistence adapter and starts the
// background flusher. An empty backend is not an error; the store starts
// fresh.
func (m *serviceManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}

	snap, err := m.adapter.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrNoSnapshot):
		m.logger.Info("no prior snapshot, starting with empty store")
	case err != nil:
		return fmt.Errorf("load snapshot: %w", err)
	default:
		m.store.Restore(snap)
		m.logger.Info("snapshot restored", "users", len(snap.Users), "marks", len(snap.Marks))
	}

	if err := m.flusher.Run(ctx); err != nil {
		return fmt.Errorf("start flusher: %w", err)
	}
	m.initialized = true
	return nil
}

// Shutdown drains pending flushes and writes one final snapshot.
func (m *serviceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return nil
	}
	m.initialized = false
	return m.flusher.Close(ctx, m.store.Snapshot())
}
