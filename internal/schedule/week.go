package schedule

import "time"

const dateLayout = "2006-01-02"

// Date returns the given calendar day at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize strips the clock and zone from t, keeping only the calendar day.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// WeekStart returns the Sunday on or before t. Weeks start on Sunday,
// matching the anchor convention used when tasks are created.
func WeekStart(t time.Time) time.Time {
	d := Normalize(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeekStartISO returns WeekStart(t) formatted as "YYYY-MM-DD".
func WeekStartISO(t time.Time) string {
	return WeekStart(t).Format(dateLayout)
}

// ParseDate parses a "YYYY-MM-DD" string into a midnight-UTC day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate formats t as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return Normalize(t).Format(dateLayout)
}
