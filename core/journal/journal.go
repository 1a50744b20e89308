package journal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mapsync/core/coordinator"
)

// Entry is one journalled surface mutation. A render pass producing N
// actions writes N entries sharing the same pass id.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PassID    string    `gorm:"size:36;index" json:"pass_id"`
	Kind      string    `gorm:"size:32" json:"kind"`
	Action    string    `gorm:"size:16" json:"action"`
	GroupKey  string    `gorm:"size:128" json:"group_key"`
	Identity  string    `gorm:"size:128" json:"identity"`
	Failed    bool      `json:"failed"`
	Reason    string    `gorm:"size:512" json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the journal table name.
func (Entry) TableName() string {
	return "render_pass_entries"
}

// Recorder persists render-pass outcomes to the database. RetainEntries
// from the config caps how many entries a single listing may return.
type Recorder struct {
	db     *gorm.DB
	retain int
}

// NewRecorder creates a journal recorder over an open connection.
func NewRecorder(db *gorm.DB, cfg Config) *Recorder {
	retain := cfg.RetainEntries
	if retain <= 0 {
		retain = 500
	}
	return &Recorder{db: db, retain: retain}
}

// Migrate creates or updates the journal table.
func (r *Recorder) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate journal table: %w", err)
	}
	return nil
}

// RecordPass writes one entry per action of the pass. A pass with no
// actions writes nothing. Journalling happens after the pass committed,
// so a journal failure never disturbs reconciliation.
func (r *Recorder) RecordPass(ctx context.Context, summary *coordinator.PassSummary) error {
	if summary == nil || len(summary.Actions) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(summary.Actions))
	for _, a := range summary.Actions {
		entries = append(entries, Entry{
			PassID:   summary.PassID,
			Kind:     string(a.Kind),
			Action:   string(a.Type),
			GroupKey: a.Group,
			Identity: a.Identity,
			Failed:   a.Failed,
			Reason:   a.Reason,
		})
	}

	if err := r.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to journal pass %s: %w", summary.PassID, err)
	}
	return nil
}

// RecentEntries returns the newest journal entries, newest first. The
// limit is capped at the configured retention size.
func (r *Recorder) RecentEntries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > r.retain {
		limit = r.retain
	}

	var entries []Entry
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entries: %w", err)
	}
	return entries, nil
}

// PassEntries returns all entries of one render pass in write order.
func (r *Recorder) PassEntries(ctx context.Context, passID string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("pass_id = ?", passID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for pass %s: %w", passID, err)
	}
	return entries, nil
}
