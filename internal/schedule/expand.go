package schedule

import (
	"sort"
	"time"

	"family-planner/internal/model"
)

// Occurrence is a virtual (task, date) pair meaning "this task is due on this
// date". Occurrences are never persisted and have no identity beyond
// (Task.ID, Date).
type Occurrence struct {
	Task model.Task
	Date time.Time
}

// DayOccurrences groups one day's occurrences for upcoming/overview displays.
type DayOccurrences struct {
	Date        time.Time
	Occurrences []Occurrence
}

type overrideKey struct {
	parentID string
	date     string
}

// Expand enumerates all occurrences of the given tasks over the inclusive
// range [from, to], ascending by date. Within a date, tasks with a time come
// first in ascending time order, then untimed tasks in input order; the
// ordering is deterministic and calendar rendering depends on it.
//
// A one-off override row (ParentTaskID set) replaces the parent series
// occurrence on its anchor date: the parent is suppressed there and the
// override rendered instead. An empty range (from after to) yields nil.
func Expand(tasks []model.Task, from, to time.Time) []Occurrence {
	start := Normalize(from)
	end := Normalize(to)
	if start.After(end) {
		return nil
	}

	overridden := make(map[overrideKey]bool)
	for _, t := range tasks {
		if t.ParentTaskID == nil {
			continue
		}
		anchor, err := ParseDate(t.WeekStart)
		if err != nil {
			continue
		}
		occDate := anchor.AddDate(0, 0, t.DayOfWeek)
		overridden[overrideKey{*t.ParentTaskID, FormatDate(occDate)}] = true
	}

	var out []Occurrence
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := make([]Occurrence, 0, len(tasks))
		for _, t := range tasks {
			if !OccursOn(t, d) {
				continue
			}
			if t.IsRecurring() && overridden[overrideKey{t.ID, FormatDate(d)}] {
				continue
			}
			day = append(day, Occurrence{Task: t, Date: d})
		}
		sortDay(day)
		out = append(out, day...)
	}
	return out
}

// ForDate is Expand restricted to a single date.
func ForDate(tasks []model.Task, date time.Time) []Occurrence {
	return Expand(tasks, date, date)
}

// Upcoming expands the `days` days starting the day after from, dropping
// occurrences of completed tasks and grouping the rest per date. Dates with
// nothing due are omitted.
func Upcoming(tasks []model.Task, from time.Time, days int) []DayOccurrences {
	start := Normalize(from).AddDate(0, 0, 1)
	var out []DayOccurrences
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		occs := ForDate(tasks, d)
		kept := occs[:0]
		for _, occ := range occs {
			if occ.Task.Completed {
				continue
			}
			kept = append(kept, occ)
		}
		if len(kept) > 0 {
			out = append(out, DayOccurrences{Date: d, Occurrences: kept})
		}
	}
	return out
}

func sortDay(day []Occurrence) {
	sort.SliceStable(day, func(i, j int) bool {
		ti, tj := day[i].Task.TaskTime, day[j].Task.TaskTime
		switch {
		case ti != nil && tj != nil:
			return *ti < *tj
		case ti != nil:
			return true
		default:
			return false
		}
	})
}
