package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"family-planner/internal/model"
)

// anchored builds a task anchored to the week of 2025-01-05 (a Sunday) on
// Wednesday unless overridden.
func anchored(rt model.RecurrenceType) model.Task {
	return model.Task{
		ID:         "task-1",
		Title:      "take out trash",
		DayOfWeek:  3, // Wednesday
		WeekStart:  "2025-01-05",
		Recurrence: rt,
	}
}

func TestOccursOn_None_ExactlyOneDate(t *testing.T) {
	task := anchored(model.RecurrenceNone)
	anchorOcc := Date(2025, time.January, 8)

	assert.True(t, OccursOn(task, anchorOcc))

	// Every other date over a wide range is false, including same-weekday
	// dates in other weeks.
	hits := 0
	for d := Date(2024, time.December, 1); d.Before(Date(2025, time.March, 1)); d = d.AddDate(0, 0, 1) {
		if OccursOn(task, d) {
			hits++
			assert.Equal(t, anchorOcc, d)
		}
	}
	assert.Equal(t, 1, hits)
	assert.False(t, OccursOn(task, Date(2025, time.January, 15)), "same weekday, different week")
}

func TestOccursOn_EmptyRecurrenceTreatedAsNone(t *testing.T) {
	task := anchored("")
	assert.True(t, OccursOn(task, Date(2025, time.January, 8)))
	assert.False(t, OccursOn(task, Date(2025, time.January, 15)))
}

func TestOccursOn_Daily(t *testing.T) {
	task := anchored(model.RecurrenceDaily)
	anchor := Date(2025, time.January, 5)

	for i := 0; i < 30; i++ {
		assert.True(t, OccursOn(task, anchor.AddDate(0, 0, i)))
	}
	for i := 1; i <= 30; i++ {
		assert.False(t, OccursOn(task, anchor.AddDate(0, 0, -i)), "daily tasks never occur before the anchor")
	}
}

func TestOccursOn_Weekly_Period7(t *testing.T) {
	task := anchored(model.RecurrenceWeekly)
	first := Date(2025, time.January, 8)

	for i := 0; i < 10; i++ {
		assert.True(t, OccursOn(task, first.AddDate(0, 0, 7*i)))
	}
	assert.False(t, OccursOn(task, first.AddDate(0, 0, 1)))
	assert.False(t, OccursOn(task, first.AddDate(0, 0, -7)), "before anchor date")
}

func TestOccursOn_Biweekly_EveryOtherAnchorWeekday(t *testing.T) {
	task := anchored(model.RecurrenceBiweekly)

	// Anchor week itself and every second week after it.
	assert.True(t, OccursOn(task, Date(2025, time.January, 8)))
	assert.True(t, OccursOn(task, Date(2025, time.January, 22)))
	assert.True(t, OccursOn(task, Date(2025, time.February, 5)))

	assert.False(t, OccursOn(task, Date(2025, time.January, 15)))
	assert.False(t, OccursOn(task, Date(2025, time.January, 29)))

	// Non-matching weekday in an even week.
	assert.False(t, OccursOn(task, Date(2025, time.January, 9)))
	// Matching weekday before the anchor.
	assert.False(t, OccursOn(task, Date(2024, time.December, 25)))
}

func TestOccursOn_Biweekly_AlternatesOverLongRange(t *testing.T) {
	task := anchored(model.RecurrenceBiweekly)

	expect := true
	for d := Date(2025, time.January, 8); d.Before(Date(2025, time.July, 1)); d = d.AddDate(0, 0, 7) {
		assert.Equal(t, expect, OccursOn(task, d), "on %s", d.Format("2006-01-02"))
		expect = !expect
	}
}

func TestOccursOn_Monthly_SameWeekdaySlot(t *testing.T) {
	// Anchor occurrence 2025-01-08 is the second Wednesday of January
	// (weekday-slot index 1).
	task := anchored(model.RecurrenceMonthly)

	assert.True(t, OccursOn(task, Date(2025, time.January, 8)))
	assert.True(t, OccursOn(task, Date(2025, time.February, 12)), "second Wednesday of February")
	assert.True(t, OccursOn(task, Date(2025, time.March, 12)), "second Wednesday of March")

	assert.False(t, OccursOn(task, Date(2025, time.February, 5)), "first Wednesday")
	assert.False(t, OccursOn(task, Date(2025, time.February, 19)), "third Wednesday")
	assert.False(t, OccursOn(task, Date(2025, time.February, 13)), "not a Wednesday")
	assert.False(t, OccursOn(task, Date(2024, time.December, 11)), "before anchor")
}

func TestOccursOn_UnknownRecurrenceType(t *testing.T) {
	task := anchored("fortnightly-ish")
	assert.False(t, OccursOn(task, Date(2025, time.January, 8)))
}

func TestOccursOn_MalformedAnchorFailsClosed(t *testing.T) {
	task := anchored(model.RecurrenceWeekly)
	task.WeekStart = "garbage"
	assert.False(t, OccursOn(task, Date(2025, time.January, 8)))
}
