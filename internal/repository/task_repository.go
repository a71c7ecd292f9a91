package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, familyID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("family_id = ? AND id = ?", familyID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByFamily returns every task row of the family in creation order. The
// occurrence expander's tie-breaking depends on that order being stable.
func (r *TaskRepository) ListByFamily(ctx context.Context, familyID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("family_id = ?", familyID).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SearchOpenByTitle finds non-completed tasks whose title contains the text.
func (r *TaskRepository) SearchOpenByTitle(ctx context.Context, familyID, text string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("family_id = ? AND completed = ? AND title LIKE ?", familyID, false, "%"+text+"%").
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) SetCompleted(ctx context.Context, task *model.Task, completed bool, at time.Time) error {
	task.Completed = completed
	task.UpdatedAt = at
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("set task completed: %w", err)
	}
	return nil
}

// Delete removes a task row. Deleting an override does not cascade to the
// series; the parent occurrence simply reappears once nothing suppresses it.
func (r *TaskRepository) Delete(ctx context.Context, familyID, taskID string) error {
	if err := r.db.WithContext(ctx).Where("family_id = ? AND id = ?", familyID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
