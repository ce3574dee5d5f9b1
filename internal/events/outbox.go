package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOutboxUnavailable = errors.New("outbox_unavailable")
	ErrMissingTx         = errors.New("missing_transaction")
	ErrMissingType       = errors.New("missing_event_type")
	ErrMissingSubject    = errors.New("missing_event_subject")
	ErrMissingDedupeKey  = errors.New("missing_dedupe_key")
)

const (
	DefaultPendingLimit = 100
	MaxPendingLimit     = 1000
)

// Event is what services hand to the outbox. Subject is the user or charger
// the event is about.
type Event struct {
	Type      string
	Subject   string
	Payload   map[string]any
	DedupeKey string
}

// RewardEvent is one outbox row. Rows sharing a non-empty DedupeKey are
// stored once.
type RewardEvent struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	EventType string            `gorm:"type:text;not null;index" json:"type"`
	Subject   string            `gorm:"type:text;not null;index" json:"subject"`
	Payload   datatypes.JSONMap `gorm:"not null" json:"payload"`
	DedupeKey *string           `gorm:"type:text;uniqueIndex" json:"dedupe_key,omitempty"`
	Published bool              `gorm:"not null;default:false;index" json:"published"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

func (RewardEvent) TableName() string { return "reward_events" }

// Outbox persists engine events next to the state change that produced
// them. Relays drain it through Pending and MarkPublished.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

func (o *Outbox) Publish(ctx context.Context, event Event) error {
	if o == nil {
		return ErrOutboxUnavailable
	}
	_, err := o.insert(ctx, o.db, event)
	return err
}

// PublishTx joins the caller's transaction so the event commits or rolls
// back with it.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return ErrMissingTx
	}
	_, err := o.insert(ctx, tx, event)
	return err
}

// ClaimTx inserts a deduplicated event inside tx and reports whether this
// call stored it. False means another writer already holds the key.
func (o *Outbox) ClaimTx(ctx context.Context, tx *gorm.DB, event Event) (bool, error) {
	if tx == nil {
		return false, ErrMissingTx
	}
	if strings.TrimSpace(event.DedupeKey) == "" {
		return false, ErrMissingDedupeKey
	}
	inserted, err := o.insert(ctx, tx, event)
	return inserted > 0, err
}

func (o *Outbox) insert(ctx context.Context, db *gorm.DB, event Event) (int64, error) {
	if o == nil || db == nil || o.genID == nil {
		return 0, ErrOutboxUnavailable
	}
	row := RewardEvent{
		ID:        o.genID.Generate(),
		EventType: strings.TrimSpace(event.Type),
		Subject:   strings.TrimSpace(event.Subject),
		Payload:   datatypes.JSONMap{},
		CreatedAt: time.Now().UTC(),
	}
	switch {
	case row.EventType == "":
		return 0, ErrMissingType
	case row.Subject == "":
		return 0, ErrMissingSubject
	}
	for k, v := range event.Payload {
		if k != "" {
			row.Payload[k] = v
		}
	}
	if key := strings.TrimSpace(event.DedupeKey); key != "" {
		row.DedupeKey = &key
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedupe_key"}},
			DoNothing: true,
		}).
		Create(&row)
	return res.RowsAffected, res.Error
}

// LatestSubject returns the greatest subject recorded for eventType. Subjects
// of calendar events sort chronologically.
func (o *Outbox) LatestSubject(ctx context.Context, eventType string) (string, bool, error) {
	if o == nil || o.db == nil {
		return "", false, ErrOutboxUnavailable
	}
	var subjects []string
	err := o.db.WithContext(ctx).
		Model(&RewardEvent{}).
		Where("event_type = ?", strings.TrimSpace(eventType)).
		Order("subject DESC").
		Limit(1).
		Pluck("subject", &subjects).Error
	if err != nil || len(subjects) == 0 {
		return "", false, err
	}
	return subjects[0], true, nil
}

// Pending lists unpublished events oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]RewardEvent, error) {
	if o == nil || o.db == nil {
		return nil, ErrOutboxUnavailable
	}
	switch {
	case limit <= 0:
		limit = DefaultPendingLimit
	case limit > MaxPendingLimit:
		limit = MaxPendingLimit
	}
	var rows []RewardEvent
	err := o.db.WithContext(ctx).
		Where("published = ?", false).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkPublished flags ids as delivered and returns how many were pending.
func (o *Outbox) MarkPublished(ctx context.Context, ids ...snowflake.ID) (int64, error) {
	if o == nil || o.db == nil {
		return 0, ErrOutboxUnavailable
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := o.db.WithContext(ctx).
		Model(&RewardEvent{}).
		Where("id IN ? AND published = ?", ids, false).
		Update("published", true)
	return res.RowsAffected, res.Error
}
