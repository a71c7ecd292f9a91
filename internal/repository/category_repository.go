package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetOrCreate(ctx context.Context, familyID, name string) (*model.Category, error) {
	if name == "" {
		return nil, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where("family_id = ? AND name = ?", familyID, name).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case err == gorm.ErrRecordNotFound:
		category = model.Category{ID: uuid.NewString(), FamilyID: familyID, Name: name, Icon: "📌"}
		if err := db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return &category, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) ListByFamily(ctx context.Context, familyID string) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("family_id = ?", familyID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// SeedDefaults creates the default household categories for a fresh family.
// Existing names are left alone.
func (r *CategoryRepository) SeedDefaults(ctx context.Context, familyID string) error {
	for _, def := range model.DefaultCategories {
		if _, err := r.GetOrCreate(ctx, familyID, def.Name); err != nil {
			return err
		}
		if err := r.db.WithContext(ctx).Model(&model.Category{}).
			Where("family_id = ? AND name = ?", familyID, def.Name).
			Updates(map[string]interface{}{"color": def.Color, "icon": def.Icon}).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", def.Name, err)
		}
	}
	return nil
}
