package model

import "time"

// Helper is a non-account assignee (babysitter, cleaner). A task is assigned
// to either a user or a helper, never both.
type Helper struct {
	ID        string `gorm:"primaryKey"`
	FamilyID  string `gorm:"index"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
