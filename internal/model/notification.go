package model

import "time"

// Notification delivery status values.
const (
	NotificationSent      = "sent"
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
)

// NotificationLogEntry is an append-only record of one delivery attempt.
// Rows are never updated or deleted; the existence of a recent row is what
// suppresses duplicate reminders. TimeBucket is the dedup window bucket of
// SentAt; the unique index closes the check-then-insert race between
// overlapping scheduler ticks.
type NotificationLogEntry struct {
	ID                 string    `gorm:"primaryKey"`
	UserID             string    `gorm:"index:idx_notification_dedup,unique"`
	TaskID             string    `gorm:"index:idx_notification_dedup,unique"`
	NotificationType   string    `gorm:"index:idx_notification_dedup,unique"`
	TimeBucket         int64     `gorm:"index:idx_notification_dedup,unique"`
	SentAt             time.Time `gorm:"index"`
	Status             string
	TransportMessageID string
}
