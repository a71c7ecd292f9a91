package schedule

import (
	"time"

	"family-planner/internal/model"
)

// Fields carries the editable task attributes for either edit scope.
// DayOfWeek and Recurrence apply only to whole-series edits; an
// occurrence-only edit derives both from the occurrence date.
type Fields struct {
	Title      string
	Notes      string
	TaskTime   *string
	CategoryID *string
	AssignedTo *string
	HelperID   *string
	DayOfWeek  int
	Recurrence model.RecurrenceType
}

// ApplyToOccurrenceOnly materializes a one-off override row that replaces a
// single occurrence of a series on occurrenceDate. The returned task is a
// brand-new row (ID unset, assigned on insert) anchored to that date with
// ParentTaskID pointing at the series; the original row is not touched.
func ApplyToOccurrenceOnly(original model.Task, occurrenceDate time.Time, fields Fields) model.Task {
	d := Normalize(occurrenceDate)
	parentID := original.ID
	return model.Task{
		FamilyID:     original.FamilyID,
		Title:        fields.Title,
		Notes:        fields.Notes,
		AssignedTo:   fields.AssignedTo,
		HelperID:     fields.HelperID,
		CategoryID:   fields.CategoryID,
		DayOfWeek:    int(d.Weekday()),
		WeekStart:    WeekStartISO(d),
		TaskTime:     fields.TaskTime,
		Recurrence:   model.RecurrenceNone,
		ParentTaskID: &parentID,
	}
}

// ApplyToWholeSeries applies fields to the anchor row. Since there is only
// one persisted row per series, the change affects every past and future
// occurrence the evaluator computes. No new row is created: the returned
// task keeps the original's identity and anchor week.
func ApplyToWholeSeries(original model.Task, fields Fields) model.Task {
	updated := original
	updated.Title = fields.Title
	updated.Notes = fields.Notes
	updated.TaskTime = fields.TaskTime
	updated.CategoryID = fields.CategoryID
	updated.AssignedTo = fields.AssignedTo
	updated.HelperID = fields.HelperID
	updated.DayOfWeek = fields.DayOfWeek
	updated.Recurrence = fields.Recurrence
	return updated
}
