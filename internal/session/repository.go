package session

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStorage struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewGormStorage persists sessions in the session_entries table, one row per
// field. Expired rows are ignored on load and replaced on save.
func NewGormStorage(db *gorm.DB, ttl time.Duration) Storage {
	return &gormStorage{db: db, ttl: ttl, now: time.Now}
}

func (g *gormStorage) Load(ctx context.Context, sessionID string) (Record, error) {
	var entries []SessionEntry
	err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("expires_at IS NULL OR expires_at > ?", g.now().UTC()).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrSessionNotFound
	}

	rec := make(Record, len(entries))
	for _, e := range entries {
		rec[e.Field] = e.Value
	}
	return rec, nil
}

func (g *gormStorage) Save(ctx context.Context, sessionID string, rec Record) error {
	var expiresAt *time.Time
	if g.ttl > 0 {
		t := g.now().UTC().Add(g.ttl)
		expiresAt = &t
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]string, 0, len(rec))
		for field, value := range rec {
			if value == "" {
				continue
			}
			keep = append(keep, field)

			entry := SessionEntry{SessionID: sessionID, Field: field, Value: value, ExpiresAt: expiresAt}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "session_id"}, {Name: "field"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
			}).Create(&entry).Error
			if err != nil {
				return fmt.Errorf("saving session field %s: %w", field, err)
			}
		}

		stale := tx.Where("session_id = ?", sessionID)
		if len(keep) > 0 {
			stale = stale.Where("field NOT IN ?", keep)
		}
		if err := stale.Delete(&SessionEntry{}).Error; err != nil {
			return fmt.Errorf("clearing stale session fields: %w", err)
		}
		return nil
	})
}

func (g *gormStorage) Clear(ctx context.Context, sessionID string) error {
	err := g.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&SessionEntry{}).Error
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed
func PurgeExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC()).Delete(&SessionEntry{})
	return res.RowsAffected, res.Error
}
