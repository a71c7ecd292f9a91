package model

import "time"

// Family groups users, helpers, categories and tasks under one household.
type Family struct {
	ID         string `gorm:"primaryKey"`
	Name       string
	InviteCode string `gorm:"uniqueIndex"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
