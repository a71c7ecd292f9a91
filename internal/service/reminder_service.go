package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"family-planner/internal/model"
	"family-planner/internal/repository"
	"family-planner/internal/schedule"
)

const reminderKind = "reminder"

// Transport delivers one chat message and returns the transport's message id.
type Transport interface {
	Send(ctx context.Context, address, text string) (string, error)
}

// TickSummary aggregates one reminder pass. Skipped counts occurrences
// suppressed by dedup; they are not failures.
type TickSummary struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ReminderService runs the periodic reminder tick: expand today's
// occurrences per family, filter by time window and assignee, dedup,
// dispatch, log the outcome.
type ReminderService struct {
	userRepo     *repository.UserRepository
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	guard        *NotificationGuard
	transport    Transport
	loc          *time.Location
	window       time.Duration
}

func NewReminderService(
	userRepo *repository.UserRepository,
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	guard *NotificationGuard,
	transport Transport,
	loc *time.Location,
	window time.Duration,
) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &ReminderService{
		userRepo:     userRepo,
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		guard:        guard,
		transport:    transport,
		loc:          loc,
		window:       window,
	}
}

// RunTick sends due reminders for the window [now, now+window). A failed
// dispatch is logged and counted but never aborts the remaining occurrences;
// the tick always comes back with a summary.
func (s *ReminderService) RunTick(ctx context.Context, now time.Time) (TickSummary, error) {
	var summary TickSummary

	local := now.In(s.loc)
	windowStart := local.Format("15:04")
	windowEnd := local.Add(s.window).Format("15:04")
	log.Printf("[info] reminder tick at %s, window until %s", windowStart, windowEnd)

	users, err := s.userRepo.ListReachable(ctx)
	if err != nil {
		return summary, fmt.Errorf("list reachable users: %w", err)
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			// Abandoned mid-loop: everything dispatched so far is
			// already logged and will not be retried in-window.
			return summary, err
		}
		if err := s.remindUser(ctx, user, local, windowStart, windowEnd, &summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("user %s: %v", user.ID, err))
		}
	}

	log.Printf("[info] reminder tick done: sent=%d skipped=%d failed=%d", summary.Sent, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *ReminderService) remindUser(ctx context.Context, user model.User, today time.Time, windowStart, windowEnd string, summary *TickSummary) error {
	// Expansion needs every row of the family, overrides included: an
	// override with no time (or already completed) still replaces its
	// parent's occurrence that day. Time and completion filters apply to
	// the expanded occurrences, never to the input set.
	tasks, err := s.taskRepo.ListByFamily(ctx, user.FamilyID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	icons, err := s.categoryIcons(ctx, user.FamilyID)
	if err != nil {
		return err
	}

	for _, occ := range schedule.ForDate(tasks, today) {
		task := occ.Task
		if task.Completed {
			continue
		}
		if task.TaskTime == nil || !inWindow(*task.TaskTime, windowStart, windowEnd) {
			continue
		}
		// Helper-assigned tasks have an assignee, just not one with a
		// chat address; reminders go to the user's own or unassigned tasks.
		if task.HelperID != nil {
			continue
		}
		if task.AssignedTo != nil && *task.AssignedTo != user.ID {
			continue
		}

		sent, err := s.guard.AlreadySent(ctx, user.ID, task.ID, reminderKind, today)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("task %s: dedup check: %v", task.ID, err))
			continue
		}
		if sent {
			log.Printf("[info] skipping duplicate reminder task=%s user=%s", task.ID, user.ID)
			summary.Skipped++
			continue
		}

		s.dispatch(ctx, user, task, icons[stringOrEmpty(task.CategoryID)], today, summary)
	}
	return nil
}

func (s *ReminderService) dispatch(ctx context.Context, user model.User, task model.Task, icon string, now time.Time, summary *TickSummary) {
	// The log entry carries the tick's clock so the recorded time and the
	// dedup bucket agree.
	entry := model.NotificationLogEntry{
		UserID:           user.ID,
		TaskID:           task.ID,
		NotificationType: reminderKind,
		SentAt:           now,
	}

	messageID, err := s.transport.Send(ctx, strconv.FormatInt(user.ChatID, 10), renderReminder(task, icon))
	if err != nil {
		summary.Failed++
		summary.Errors = append(summary.Errors, fmt.Sprintf("task %s: %v", task.ID, err))
		entry.Status = model.NotificationFailed
	} else {
		summary.Sent++
		entry.Status = model.NotificationSent
		entry.TransportMessageID = messageID
	}

	if err := s.guard.Record(ctx, &entry); err != nil {
		if err == ErrAlreadyLogged {
			// An overlapping tick won the bucket; ours was a duplicate.
			log.Printf("[info] concurrent tick already logged task=%s user=%s", task.ID, user.ID)
			return
		}
		summary.Errors = append(summary.Errors, fmt.Sprintf("task %s: record log: %v", task.ID, err))
	}
}

func (s *ReminderService) categoryIcons(ctx context.Context, familyID string) (map[string]string, error) {
	categories, err := s.categoryRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	icons := make(map[string]string, len(categories))
	for _, c := range categories {
		icons[c.ID] = c.Icon
	}
	return icons, nil
}

// inWindow checks start <= tt < end on "HH:MM" strings, handling a window
// that wraps past midnight.
func inWindow(tt, start, end string) bool {
	if start <= end {
		return tt >= start && tt < end
	}
	return tt >= start || tt < end
}

func renderReminder(task model.Task, icon string) string {
	if icon == "" {
		icon = "📌"
	}

	var sb strings.Builder
	sb.WriteString("⏰ <b>Task reminder</b>\n\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", icon, task.Title))
	if task.TaskTime != nil {
		sb.WriteString(fmt.Sprintf("🕐 %s\n", *task.TaskTime))
	}
	if task.Notes != "" {
		sb.WriteString(fmt.Sprintf("📝 %s\n", task.Notes))
	}
	title := task.Title
	if runes := []rune(title); len(runes) > 20 {
		title = string(runes[:20])
	}
	sb.WriteString(fmt.Sprintf("\nSend <code>done %s</code> to mark it complete.", title))
	return sb.String()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
