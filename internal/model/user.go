package model

import "time"

// User stores a family member with their Telegram chat address.
type User struct {
	ID          string `gorm:"primaryKey"`
	FamilyID    string `gorm:"index"`
	TelegramID  int64  `gorm:"uniqueIndex"`
	ChatID      int64  // where reminders are delivered; 0 means unreachable
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reachable reports whether the user can receive chat reminders.
func (u User) Reachable() bool {
	return u.ChatID != 0
}
