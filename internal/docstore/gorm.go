package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one stored collection. Version increases on every write.
type Document struct {
	Key       string         `gorm:"column:collection_key;primaryKey;size:191"`
	Body      datatypes.JSON `gorm:"not null"`
	Version   int64          `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the database table name for Document.
func (Document) TableName() string {
	return "documents"
}

// GormStore persists documents in a SQL table and serializes updates with an optimistic version check.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns a store over db. Call Migrate before first use.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the documents table.
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return nil
}

func (s *GormStore) load(ctx context.Context, key string) (*Document, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("collection_key = ?", key).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return &doc, nil
}

// Get returns the document body stored under key.
func (s *GormStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	doc, err := s.load(ctx, key)
	if err != nil || doc == nil {
		return nil, false, err
	}
	return json.RawMessage(doc.Body), true, nil
}

// Set writes value unconditionally, bumping the version.
func (s *GormStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	doc := Document{Key: key, Body: datatypes.JSON(value), Version: 1, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"body":       doc.Body,
			"version":    gorm.Expr("documents.version + 1"),
			"updated_at": doc.UpdatedAt,
		}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("set document %q: %w", key, err)
	}
	return nil
}

// Update retries fn until its write lands on the version it read.
func (s *GormStore) Update(ctx context.Context, key string, fn Mutator) error {
	return retryConflicts(ctx, "sql", func() error {
		return s.tryUpdate(ctx, key, fn)
	})
}

func (s *GormStore) tryUpdate(ctx context.Context, key string, fn Mutator) error {
	doc, err := s.load(ctx, key)
	if err != nil {
		return err
	}

	var current json.RawMessage
	if doc != nil {
		current = json.RawMessage(doc.Body)
	}
	next, err := fn(current, doc != nil)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	now := time.Now()
	db := s.db.WithContext(ctx)
	if doc == nil {
		created := Document{Key: key, Body: datatypes.JSON(next), Version: 1, UpdatedAt: now}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
		if res.Error != nil {
			return fmt.Errorf("create document %q: %w", key, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	}

	res := db.Model(&Document{}).
		Where("collection_key = ? AND version = ?", key, doc.Version).
		Updates(map[string]any{
			"body":       datatypes.JSON(next),
			"version":    doc.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("update document %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// Ping checks the database connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
