package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	Revision  int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// GormStore keeps entries in a single kv_entries table.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects with the given DSN (URL or key=value form) and migrates kv_entries.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (Entry, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{Value: e.Value, Revision: e.Revision}, nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	var rev int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e kvEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("entry_key = ?", key).Take(&e).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rev = 1
			return s.create(tx, key, value)
		case err != nil:
			return err
		}
		rev = e.Revision + 1
		return tx.Model(&kvEntry{}).Where("entry_key = ?", key).Updates(map[string]interface{}{
			"value":      value,
			"revision":   rev,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return rev, nil
}

func (s *GormStore) PutIf(ctx context.Context, key string, value []byte, revision int64) (int64, error) {
	db := s.db.WithContext(ctx)
	if revision == 0 {
		if err := s.create(db, key, value); err != nil {
			return 0, err
		}
		return 1, nil
	}

	res := db.Model(&kvEntry{}).
		Where("entry_key = ? AND revision = ?", key, revision).
		Updates(map[string]interface{}{
			"value":      value,
			"revision":   revision + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrConflict
	}
	return revision + 1, nil
}

// create inserts revision 1, reporting ErrConflict if another writer created the key first.
func (s *GormStore) create(db *gorm.DB, key string, value []byte) error {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&kvEntry{
		Key:       key,
		Value:     value,
		Revision:  1,
		UpdatedAt: time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
