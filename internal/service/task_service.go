package service

import (
	"context"
	"fmt"
	"time"

	"family-planner/internal/model"
	"family-planner/internal/repository"
	"family-planner/internal/schedule"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title      string
	Notes      string
	Category   string // category name; created on first use
	AssignedTo *string
	HelperID   *string
	DayOfWeek  int
	WeekStart  string // "2006-01-02"; snapped to its week's Sunday
	TaskTime   *string
	Recurrence model.RecurrenceType
}

// TaskService wraps task-related business logic. Date and time strings are
// validated here, before anything reaches the occurrence engine.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, familyID string, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.Recurrence == "" {
		input.Recurrence = model.RecurrenceNone
	}
	if !model.ValidRecurrence(input.Recurrence) {
		return nil, fmt.Errorf("unknown recurrence type %q", input.Recurrence)
	}
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return nil, fmt.Errorf("day of week must be 0..6, got %d", input.DayOfWeek)
	}
	if input.AssignedTo != nil && input.HelperID != nil {
		return nil, fmt.Errorf("task cannot be assigned to both a user and a helper")
	}
	weekStart, err := normalizeWeekStart(input.WeekStart)
	if err != nil {
		return nil, err
	}
	if err := validateTaskTime(input.TaskTime); err != nil {
		return nil, err
	}

	var categoryID *string
	if input.Category != "" {
		category, err := s.categoryRepo.GetOrCreate(ctx, familyID, input.Category)
		if err != nil {
			return nil, err
		}
		if category != nil {
			categoryID = &category.ID
		}
	}

	task := model.Task{
		FamilyID:   familyID,
		Title:      input.Title,
		Notes:      input.Notes,
		AssignedTo: input.AssignedTo,
		HelperID:   input.HelperID,
		CategoryID: categoryID,
		DayOfWeek:  input.DayOfWeek,
		WeekStart:  weekStart,
		TaskTime:   input.TaskTime,
		Recurrence: input.Recurrence,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateSeries applies fields to the whole series (or to a plain one-off).
// The anchor row is mutated; no new row appears.
func (s *TaskService) UpdateSeries(ctx context.Context, familyID, taskID string, fields schedule.Fields) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, familyID, taskID)
	if err != nil {
		return nil, err
	}
	if err := validateFields(&fields); err != nil {
		return nil, err
	}

	updated := schedule.ApplyToWholeSeries(*task, fields)
	if err := s.taskRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateOccurrence edits a single occurrence of a recurring task by
// materializing an override row anchored on occurrenceDate. For
// non-recurring tasks there is nothing to fork, so the edit falls back to
// the whole-row update.
func (s *TaskService) UpdateOccurrence(ctx context.Context, familyID, taskID string, occurrenceDate time.Time, fields schedule.Fields) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, familyID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsRecurring() {
		return s.UpdateSeries(ctx, familyID, taskID, fields)
	}
	if err := validateFields(&fields); err != nil {
		return nil, err
	}

	override := schedule.ApplyToOccurrenceOnly(*task, occurrenceDate, fields)
	if err := s.taskRepo.Create(ctx, &override); err != nil {
		return nil, err
	}
	return &override, nil
}

func (s *TaskService) ListFamilyTasks(ctx context.Context, familyID string) ([]model.Task, error) {
	return s.taskRepo.ListByFamily(ctx, familyID)
}

// SetCompleted flips the shared completed flag. For a recurring series the
// flag is shared by every occurrence: marking one Wednesday done marks all
// Wednesdays done.
func (s *TaskService) SetCompleted(ctx context.Context, familyID, taskID string, completed bool) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, familyID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.SetCompleted(ctx, task, completed, time.Now()); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteByTitle finds a single open task matching the text and completes
// it. Multiple matches are returned to the caller to disambiguate.
func (s *TaskService) CompleteByTitle(ctx context.Context, familyID, text string) (*model.Task, []model.Task, error) {
	matches, err := s.taskRepo.SearchOpenByTitle(ctx, familyID, text)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, nil
	}
	if len(matches) > 1 {
		return nil, matches, nil
	}
	task, err := s.SetCompleted(ctx, familyID, matches[0].ID, true)
	if err != nil {
		return nil, nil, err
	}
	return task, nil, nil
}

// DeleteTask removes the row. Deleting an override restores the parent's
// occurrence on that date, since nothing suppresses it anymore.
func (s *TaskService) DeleteTask(ctx context.Context, familyID, taskID string) error {
	return s.taskRepo.Delete(ctx, familyID, taskID)
}

// DeleteByTitle finds a single open task matching the text and deletes it.
// Multiple matches are returned to the caller to disambiguate.
func (s *TaskService) DeleteByTitle(ctx context.Context, familyID, text string) (*model.Task, []model.Task, error) {
	matches, err := s.taskRepo.SearchOpenByTitle(ctx, familyID, text)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, nil
	}
	if len(matches) > 1 {
		return nil, matches, nil
	}
	if err := s.DeleteTask(ctx, familyID, matches[0].ID); err != nil {
		return nil, nil, err
	}
	return &matches[0], nil, nil
}

func validateFields(fields *schedule.Fields) error {
	if fields.Title == "" {
		return fmt.Errorf("title is required")
	}
	if fields.Recurrence == "" {
		fields.Recurrence = model.RecurrenceNone
	}
	if !model.ValidRecurrence(fields.Recurrence) {
		return fmt.Errorf("unknown recurrence type %q", fields.Recurrence)
	}
	if fields.DayOfWeek < 0 || fields.DayOfWeek > 6 {
		return fmt.Errorf("day of week must be 0..6, got %d", fields.DayOfWeek)
	}
	if fields.AssignedTo != nil && fields.HelperID != nil {
		return fmt.Errorf("task cannot be assigned to both a user and a helper")
	}
	return validateTaskTime(fields.TaskTime)
}

// normalizeWeekStart parses the date and snaps it to the Sunday of its week,
// so the stored anchor always satisfies the week-start invariant.
func normalizeWeekStart(raw string) (string, error) {
	d, err := schedule.ParseDate(raw)
	if err != nil {
		return "", fmt.Errorf("invalid week start %q: %w", raw, err)
	}
	return schedule.WeekStartISO(d), nil
}

func validateTaskTime(tt *string) error {
	if tt == nil {
		return nil
	}
	if _, err := time.Parse("15:04", *tt); err != nil {
		return fmt.Errorf("invalid task time %q, expected HH:MM: %w", *tt, err)
	}
	return nil
}
