package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartapp-edu/records-service/internal/models"
)

// snapshotRecord is one named snapshot document in the SQL store. The whole
// store state lives in a single JSON column; the database is used as a keyed
// document store, not a relational schema.
type snapshotRecord struct {
	Name      string         `gorm:"primaryKey;size:64"`
	Document  datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (snapshotRecord) TableName() string {
	return "snapshots"
}

// SQLAdapter stores the snapshot in a SQL-compatible database reachable over
// a connection string.
type SQLAdapter struct {
	db   *gorm.DB
	name string
}

func NewSQLAdapter(db *gorm.DB, name string) (*SQLAdapter, error) {
	if name == "" {
		name = DefaultSnapshotKey
	}
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots table: %w", err)
	}
	return &SQLAdapter{db: db, name: name}, nil
}

func (a *SQLAdapter) Load(ctx context.Context) (models.StoreSnapshot, error) {
	var rec snapshotRecord
	err := a.db.WithContext(ctx).First(&rec, "name = ?", a.name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StoreSnapshot{}, ErrNoSnapshot
		}
		return models.StoreSnapshot{}, fmt.Errorf("load snapshot row: %w", err)
	}
	var snap models.StoreSnapshot
	if err := json.Unmarshal(rec.Document, &snap); err != nil {
		return models.StoreSnapshot{}, fmt.Errorf("decode snapshot row: %w", err)
	}
	return snap, nil
}

func (a *SQLAdapter) Save(ctx context.Context, snap models.StoreSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rec := snapshotRecord{Name: a.name, Document: data, UpdatedAt: time.Now().UTC()}
	err = a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save snapshot row: %w", err)
	}
	return nil
}

func (a *SQLAdapter) String() string { return "sql:" + a.name }
