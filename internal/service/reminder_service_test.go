package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"family-planner/internal/model"
	"family-planner/internal/repository"
	"family-planner/internal/testutil"
)

type sentMessage struct {
	address string
	text    string
}

// fakeTransport records sends and can be told to fail for certain titles.
type fakeTransport struct {
	sent       []sentMessage
	failTitles map[string]bool
}

func (f *fakeTransport) Send(_ context.Context, address, text string) (string, error) {
	for title := range f.failTitles {
		if strings.Contains(text, title) {
			return "", fmt.Errorf("transport rejected %q", title)
		}
	}
	f.sent = append(f.sent, sentMessage{address: address, text: text})
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

type reminderFixture struct {
	db        *gorm.DB
	svc       *ReminderService
	transport *fakeTransport
	user      model.User
}

func newReminderFixture(t *testing.T) *reminderFixture {
	db := testutil.NewTestDB(t)
	transport := &fakeTransport{failTitles: map[string]bool{}}
	guard := NewNotificationGuard(repository.NewNotificationLogRepository(db), time.Hour)

	svc := NewReminderService(
		repository.NewUserRepository(db),
		repository.NewTaskRepository(db),
		repository.NewCategoryRepository(db),
		guard,
		transport,
		time.UTC,
		15*time.Minute,
	)

	user := model.User{ID: "user-1", FamilyID: "family-1", TelegramID: 100, ChatID: 100, DisplayName: "Dana"}
	require.NoError(t, db.Create(&user).Error)

	return &reminderFixture{db: db, svc: svc, transport: transport, user: user}
}

func (f *reminderFixture) addTask(t *testing.T, id, title, taskTime string, mutate ...func(*model.Task)) {
	t.Helper()
	task := model.Task{
		ID:         id,
		FamilyID:   "family-1",
		Title:      title,
		DayOfWeek:  0,
		WeekStart:  "2024-12-29",
		TaskTime:   &taskTime,
		Recurrence: model.RecurrenceDaily,
	}
	for _, m := range mutate {
		m(&task)
	}
	require.NoError(t, f.db.Create(&task).Error)
}

// tickTime is 2025-01-08 09:00 UTC; the window reaches 09:15 exclusive.
var tickTime = time.Date(2025, time.January, 8, 9, 0, 0, 0, time.UTC)

func TestRunTick_WindowFiltering(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "in-window", "walk the dog", "09:10")
	f.addTask(t, "too-late", "start dinner", "09:20")
	f.addTask(t, "already-past", "morning pills", "08:55")

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Sent)
	require.Len(t, f.transport.sent, 1)
	assert.Contains(t, f.transport.sent[0].text, "walk the dog")
	assert.Equal(t, "100", f.transport.sent[0].address)
}

func TestRunTick_WindowEndExclusive(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "boundary", "boundary task", "09:15")

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, f.transport.sent)
}

func TestRunTick_AssigneeFiltering(t *testing.T) {
	f := newReminderFixture(t)
	other := "user-2"
	helper := "helper-1"
	f.addTask(t, "mine", "my task", "09:05", func(task *model.Task) { task.AssignedTo = &f.user.ID })
	f.addTask(t, "unassigned", "family task", "09:05")
	f.addTask(t, "theirs", "their task", "09:05", func(task *model.Task) { task.AssignedTo = &other })
	f.addTask(t, "helpers", "helper task", "09:05", func(task *model.Task) { task.HelperID = &helper })

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sent)
	var titles []string
	for _, m := range f.transport.sent {
		titles = append(titles, m.text)
	}
	joined := strings.Join(titles, "\n")
	assert.Contains(t, joined, "my task")
	assert.Contains(t, joined, "family task")
	assert.NotContains(t, joined, "their task")
	assert.NotContains(t, joined, "helper task")
}

func TestRunTick_SecondTickDeduplicates(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "in-window", "walk the dog", "09:10")

	first, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	second, err := f.svc.RunTick(context.Background(), tickTime.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, second.Sent)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, f.transport.sent, 1)
}

func TestRunTick_FailureDoesNotAbortBatch(t *testing.T) {
	f := newReminderFixture(t)
	f.transport.failTitles["doomed task"] = true
	f.addTask(t, "doomed", "doomed task", "09:02")
	f.addTask(t, "fine", "fine task", "09:05")

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "doomed")

	// The failure is logged and suppresses a retry within the window.
	var entries []model.NotificationLogEntry
	require.NoError(t, f.db.Where("task_id = ?", "doomed").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, model.NotificationFailed, entries[0].Status)
	assert.Empty(t, entries[0].TransportMessageID)

	retry, err := f.svc.RunTick(context.Background(), tickTime.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, retry.Failed)
	assert.Equal(t, 2, retry.Skipped)
}

func TestRunTick_UntimedOverrideSuppressesSeries(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "series", "fold laundry", "09:10", func(task *model.Task) {
		task.Recurrence = model.RecurrenceWeekly
		task.DayOfWeek = 3
		task.WeekStart = "2025-01-05"
	})
	parent := "series"
	f.addTask(t, "override", "fold laundry", "", func(task *model.Task) {
		task.Recurrence = model.RecurrenceNone
		task.DayOfWeek = 3
		task.WeekStart = "2025-01-05"
		task.ParentTaskID = &parent
		task.TaskTime = nil
	})

	// The override has no time, so nothing is due; the series occurrence
	// it replaces must not leak through.
	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, f.transport.sent)
}

func TestRunTick_TimedOverrideRemindedInsteadOfSeries(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "series", "fold laundry", "09:10", func(task *model.Task) {
		task.Recurrence = model.RecurrenceWeekly
		task.DayOfWeek = 3
		task.WeekStart = "2025-01-05"
	})
	parent := "series"
	f.addTask(t, "override", "deep clean instead", "09:05", func(task *model.Task) {
		task.Recurrence = model.RecurrenceNone
		task.DayOfWeek = 3
		task.WeekStart = "2025-01-05"
		task.ParentTaskID = &parent
	})

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Sent)
	require.Len(t, f.transport.sent, 1)
	assert.Contains(t, f.transport.sent[0].text, "deep clean instead")
	assert.NotContains(t, f.transport.sent[0].text, "fold laundry")
}

func TestRunTick_CompletedOverrideStillSuppressesSeries(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "series", "fold laundry", "09:10", func(task *model.Task) {
		task.Recurrence = model.RecurrenceWeekly
		task.DayOfWeek = 3
		task.WeekStart = "2025-01-05"
	})
	parent := "series"
	f.addTask(t, "override", "deep clean instead", "09:05", func(task *model.Task) {
		task.Recurrence = model.RecurrenceNone
		task.DayOfWeek = 3
		task.WeekStart = "2025-01-05"
		task.ParentTaskID = &parent
		task.Completed = true
	})

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, f.transport.sent)
}

func TestRunTick_SkipsCompletedTasks(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "done", "finished task", "09:05", func(task *model.Task) { task.Completed = true })

	summary, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
}

func TestRunTick_RecordsTransportMessageID(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "in-window", "walk the dog", "09:10")

	_, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)

	var entry model.NotificationLogEntry
	require.NoError(t, f.db.Where("task_id = ?", "in-window").First(&entry).Error)
	assert.Equal(t, model.NotificationSent, entry.Status)
	assert.Equal(t, "msg-1", entry.TransportMessageID)
	assert.Equal(t, "reminder", entry.NotificationType)
}

func TestRunTick_LogEntryCarriesTickClock(t *testing.T) {
	f := newReminderFixture(t)
	f.addTask(t, "in-window", "walk the dog", "09:10")

	_, err := f.svc.RunTick(context.Background(), tickTime)
	require.NoError(t, err)

	var entry model.NotificationLogEntry
	require.NoError(t, f.db.Where("task_id = ?", "in-window").First(&entry).Error)
	assert.Equal(t, tickTime.Unix(), entry.SentAt.Unix())
	assert.Equal(t, tickTime.Unix()/3600, entry.TimeBucket)
}
