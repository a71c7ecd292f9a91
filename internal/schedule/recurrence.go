package schedule

import (
	"time"

	"family-planner/internal/model"
)

// OccursOn reports whether the task is due on the given calendar date.
//
// One-off tasks occur exactly once, on the (week_start, day_of_week) anchor.
// Recurring tasks never occur before their anchor date; past it, "daily"
// occurs every day, "weekly" on the anchor weekday, "biweekly" on the anchor
// weekday of the anchor week and every second week after it, and "monthly"
// on the anchor weekday in the same weekday-slot of the month as the anchor
// occurrence (first Wednesday, second Wednesday, ...).
//
// Week-start strings are validated when tasks are ingested; a malformed
// anchor evaluates to false rather than panicking.
func OccursOn(task model.Task, date time.Time) bool {
	d := Normalize(date)
	weekday := int(d.Weekday())

	if task.Recurrence == "" || task.Recurrence == model.RecurrenceNone {
		return task.WeekStart == WeekStartISO(d) && task.DayOfWeek == weekday
	}

	anchor, err := ParseDate(task.WeekStart)
	if err != nil {
		return false
	}
	if d.Before(anchor) {
		return false
	}

	switch task.Recurrence {
	case model.RecurrenceDaily:
		return true
	case model.RecurrenceWeekly:
		return task.DayOfWeek == weekday
	case model.RecurrenceBiweekly:
		if task.DayOfWeek != weekday {
			return false
		}
		days := int(WeekStart(d).Sub(WeekStart(anchor)).Hours() / 24)
		weeks := days / 7
		return weeks >= 0 && weeks%2 == 0
	case model.RecurrenceMonthly:
		if task.DayOfWeek != weekday {
			return false
		}
		anchorOcc := anchor.AddDate(0, 0, task.DayOfWeek)
		return weekOfMonth(anchorOcc) == weekOfMonth(d)
	}

	return false
}

// weekOfMonth is the zero-based weekday-slot index within the month:
// days 1-7 are slot 0, days 8-14 slot 1, and so on.
func weekOfMonth(t time.Time) int {
	return (t.Day() - 1) / 7
}
