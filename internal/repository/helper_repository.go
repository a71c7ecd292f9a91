package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/model"
)

// HelperRepository manages non-account assignees.
type HelperRepository struct {
	db *gorm.DB
}

func NewHelperRepository(db *gorm.DB) *HelperRepository {
	return &HelperRepository{db: db}
}

func (r *HelperRepository) Create(ctx context.Context, familyID, name string) (*model.Helper, error) {
	helper := model.Helper{ID: uuid.NewString(), FamilyID: familyID, Name: name}
	if err := r.db.WithContext(ctx).Create(&helper).Error; err != nil {
		return nil, fmt.Errorf("create helper: %w", err)
	}
	return &helper, nil
}

func (r *HelperRepository) ListByFamily(ctx context.Context, familyID string) ([]model.Helper, error) {
	var helpers []model.Helper
	if err := r.db.WithContext(ctx).Where("family_id = ?", familyID).Order("name ASC").Find(&helpers).Error; err != nil {
		return nil, err
	}
	return helpers, nil
}

func (r *HelperRepository) Delete(ctx context.Context, familyID, helperID string) error {
	if err := r.db.WithContext(ctx).Where("family_id = ? AND id = ?", familyID, helperID).
		Delete(&model.Helper{}).Error; err != nil {
		return fmt.Errorf("delete helper: %w", err)
	}
	return nil
}
