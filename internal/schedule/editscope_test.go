package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"family-planner/internal/model"
)

func seriesTask() model.Task {
	tt := "09:00"
	return model.Task{
		ID:         "series-id",
		FamilyID:   "family-id",
		Title:      "water the plants",
		Notes:      "balcony too",
		DayOfWeek:  3,
		WeekStart:  "2025-01-05",
		TaskTime:   &tt,
		Recurrence: model.RecurrenceWeekly,
	}
}

func TestApplyToOccurrenceOnly(t *testing.T) {
	original := seriesTask()
	before := original
	newTime := "17:00"

	override := ApplyToOccurrenceOnly(original, Date(2025, time.January, 15), Fields{
		Title:    "water the plants (evening)",
		TaskTime: &newTime,
	})

	// Brand-new one-off row anchored to the occurrence date.
	assert.Empty(t, override.ID)
	assert.Equal(t, model.RecurrenceNone, override.Recurrence)
	assert.Equal(t, "2025-01-12", override.WeekStart)
	assert.Equal(t, 3, override.DayOfWeek)
	require.NotNil(t, override.ParentTaskID)
	assert.Equal(t, original.ID, *override.ParentTaskID)
	assert.Equal(t, original.FamilyID, override.FamilyID)
	assert.Equal(t, "water the plants (evening)", override.Title)
	assert.Equal(t, "17:00", *override.TaskTime)
	assert.False(t, override.Completed)

	// The series row is untouched.
	assert.Equal(t, before, original)
}

func TestApplyToWholeSeries(t *testing.T) {
	original := seriesTask()
	newTime := "12:30"

	updated := ApplyToWholeSeries(original, Fields{
		Title:      "water all the plants",
		Notes:      "",
		TaskTime:   &newTime,
		DayOfWeek:  5,
		Recurrence: model.RecurrenceBiweekly,
	})

	// Same row identity and anchor week; no new row is created.
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, original.WeekStart, updated.WeekStart)
	assert.Nil(t, updated.ParentTaskID)

	assert.Equal(t, "water all the plants", updated.Title)
	assert.Equal(t, 5, updated.DayOfWeek)
	assert.Equal(t, model.RecurrenceBiweekly, updated.Recurrence)
	assert.Equal(t, "12:30", *updated.TaskTime)
}
