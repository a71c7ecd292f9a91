package model

import "time"

// RecurrenceType describes how a task repeats after its anchor week.
type RecurrenceType string

const (
	RecurrenceNone     RecurrenceType = "none"
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceBiweekly RecurrenceType = "biweekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
)

// ValidRecurrence reports whether rt is one of the supported recurrence types.
func ValidRecurrence(rt RecurrenceType) bool {
	switch rt {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Task is the recurrence anchor: one persisted row per series or per one-off.
// The pair (WeekStart, DayOfWeek) identifies the anchor occurrence; WeekStart
// is always the ISO date of a Sunday.
type Task struct {
	ID           string         `gorm:"primaryKey"`
	FamilyID     string         `gorm:"index"`
	Title        string
	Notes        string
	AssignedTo   *string        `gorm:"index"`
	HelperID     *string        `gorm:"index"`
	CategoryID   *string        `gorm:"index"`
	DayOfWeek    int            // 0 = Sunday .. 6 = Saturday
	WeekStart    string         // "2006-01-02", Sunday of the anchor week
	TaskTime     *string        // "15:04", 24h
	Recurrence   RecurrenceType `gorm:"column:recurrence_type;default:none"`
	Completed    bool           `gorm:"default:false"`
	ParentTaskID *string        `gorm:"index"` // set only on one-off overrides of a series
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRecurring reports whether the task generates more than its anchor occurrence.
func (t Task) IsRecurring() bool {
	return t.Recurrence != "" && t.Recurrence != RecurrenceNone
}

// IsOverride reports whether the task is a materialized one-off exception of a series.
func (t Task) IsOverride() bool {
	return t.ParentTaskID != nil
}
